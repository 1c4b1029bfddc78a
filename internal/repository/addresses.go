package repository

import (
	"context"

	"emporium_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AddressRepository struct {
	coll *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) *AddressRepository {
	return &AddressRepository{coll: db.Collection(AddressesCollection)}
}

func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	res, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		return mapErr("insert address", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var a models.Address
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, mapErr("find address", err)
	}
	return &a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Address, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user": user})
	if err != nil {
		return nil, mapErr("list addresses", err)
	}
	out := []models.Address{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr("decode addresses", err)
	}
	return out, nil
}

func (r *AddressRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Address, error) {
	var a models.Address
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after()).Decode(&a); err != nil {
		return nil, mapErr("update address", err)
	}
	return &a, nil
}

func (r *AddressRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var a models.Address
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, mapErr("delete address", err)
	}
	return &a, nil
}
