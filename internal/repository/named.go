package repository

import (
	"context"
	"strings"

	"emporium_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NamedRepository backs the brands and categories collections, which
// share the {_id, name} shape.
type NamedRepository struct {
	coll *mongo.Collection
}

func NewBrandRepository(db *mongo.Database) *NamedRepository {
	return &NamedRepository{coll: db.Collection(BrandsCollection)}
}

func NewCategoryRepository(db *mongo.Database) *NamedRepository {
	return &NamedRepository{coll: db.Collection(CategoriesCollection)}
}

func (r *NamedRepository) List(ctx context.Context) ([]models.Named, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr("list "+r.coll.Name(), err)
	}
	out := []models.Named{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr("decode "+r.coll.Name(), err)
	}
	return out, nil
}

func (r *NamedRepository) Create(ctx context.Context, name string) (*models.Named, error) {
	doc := models.Named{Name: strings.TrimSpace(name)}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, mapErr("insert into "+r.coll.Name(), err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return &doc, nil
}

func (r *NamedRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, mapErr("count "+r.coll.Name(), err)
	}
	return n > 0, nil
}
