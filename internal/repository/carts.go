package repository

import (
	"context"
	"time"

	"emporium_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{coll: db.Collection(CartsCollection)}
}

func (r *CartRepository) Create(ctx context.Context, item *models.CartItem) error {
	item.CreatedAt = time.Now().UTC()
	res, err := r.coll.InsertOne(ctx, item)
	if err != nil {
		return mapErr("insert cart item", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CartRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, mapErr("find cart item", err)
	}
	return &item, nil
}

// ListByUser joins each row with its product, oldest row first.
func (r *CartRepository) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.CartLine, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": user}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         ProductsCollection,
			"localField":   "product",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr("list cart", err)
	}
	lines := []models.CartLine{}
	if err := cur.All(ctx, &lines); err != nil {
		return nil, mapErr("decode cart", err)
	}
	return lines, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, id primitive.ObjectID, qty int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"quantity": qty}}, after()).Decode(&item)
	if err != nil {
		return nil, mapErr("update cart item", err)
	}
	return &item, nil
}

func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, mapErr("delete cart item", err)
	}
	return &item, nil
}

func (r *CartRepository) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"user": user})
	if err != nil {
		return 0, mapErr("clear cart", err)
	}
	return res.DeletedCount, nil
}
