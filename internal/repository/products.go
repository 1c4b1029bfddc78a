package repository

import (
	"context"
	"time"

	"emporium_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Images == nil {
		p.Images = []string{}
	}
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return mapErr("insert product", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr("find product", err)
	}
	return &p, nil
}

// List returns one page and the total number of matches.
func (r *ProductRepository) List(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, int64, error) {
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr("count products", err)
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mapErr("list products", err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, mapErr("decode products", err)
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": withUpdatedAt(set)}, after()).Decode(&p)
	if err != nil {
		return nil, mapErr("update product", err)
	}
	return &p, nil
}

func (r *ProductRepository) SetDeleted(ctx context.Context, id primitive.ObjectID, deleted bool) (*models.Product, error) {
	return r.Update(ctx, id, bson.M{"isDeleted": deleted})
}

// ReserveStock decrements stock only when enough is left.
func (r *ProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":           id,
		"isDeleted":     bson.M{"$ne": true},
		"stockQuantity": bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stockQuantity": -qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr("reserve stock", err)
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	update := bson.M{
		"$inc": bson.M{"stockQuantity": qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapErr("release stock", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImage appends url and fills the thumbnail when it is empty.
func (r *ProductRepository) AddImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Product, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"images": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$images", bson.A{}}},
				bson.A{url},
			}},
			"thumbnail": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{bson.M{"$strLenCP": bson.M{"$ifNull": bson.A{"$thumbnail", ""}}}, 0}},
				"$thumbnail",
				url,
			}},
			"updatedAt": time.Now().UTC(),
		}}},
	}
	var p models.Product
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, after()).Decode(&p); err != nil {
		return nil, mapErr("add product image", err)
	}
	return &p, nil
}
