package repository

import (
	"context"
	"strings"
	"time"

	"emporium_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return mapErr("insert user", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapErr("find user", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&u)
	if err != nil {
		return nil, mapErr("find user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, excludeAdmins bool) ([]models.User, error) {
	filter := bson.M{}
	if excludeAdmins {
		filter["isAdmin"] = bson.M{"$ne": true}
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, mapErr("list users", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, mapErr("decode users", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	var u models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": withUpdatedAt(set)}, after()).Decode(&u)
	if err != nil {
		return nil, mapErr("update user", err)
	}
	return &u, nil
}

// ToggleEnabled flips isEnabled in a single pipeline update.
func (r *UserRepository) ToggleEnabled(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isEnabled": bson.M{"$not": bson.A{"$isEnabled"}},
			"updatedAt": time.Now().UTC(),
		}}},
	}
	var u models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, after()).Decode(&u); err != nil {
		return nil, mapErr("toggle user", err)
	}
	return &u, nil
}
