package repository

import (
	"context"
	"errors"
	"time"

	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrdersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	res, err := r.coll.InsertOne(ctx, o)
	if err != nil {
		return mapErr("insert order", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, mapErr("find order", err)
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, mapErr("list user orders", err)
	}
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr("decode orders", err)
	}
	return out, nil
}

func (r *OrderRepository) List(ctx context.Context, opts *options.FindOptions) ([]models.Order, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, mapErr("count orders", err)
	}
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, mapErr("list orders", err)
	}
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mapErr("decode orders", err)
	}
	return out, total, nil
}

// UpdateStatus moves the order from one status to another. The filter
// pins the current status so a concurrent change makes this a no-match.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to orders.Status) (*models.Order, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update, after()).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, mapErr("update order status", err)
	}
	return &o, nil
}
