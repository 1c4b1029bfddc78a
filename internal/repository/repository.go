// Package repository persists the shop's documents in MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStatusChanged     = errors.New("order status changed concurrently")
)

const (
	UsersCollection      = "users"
	ProductsCollection   = "products"
	BrandsCollection     = "brands"
	CategoriesCollection = "categories"
	CartsCollection      = "carts"
	OrdersCollection     = "orders"
	AddressesCollection  = "addresses"
)

type IUserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, excludeAdmins bool) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	ToggleEnabled(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type IProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	SetDeleted(ctx context.Context, id primitive.ObjectID, deleted bool) (*models.Product, error)
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
	AddImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Product, error)
}

// INamedRepository stores brands or categories.
type INamedRepository interface {
	List(ctx context.Context) ([]models.Named, error)
	Create(ctx context.Context, name string) (*models.Named, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type ICartRepository interface {
	Create(ctx context.Context, item *models.CartItem) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error)
	ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.CartLine, error)
	UpdateQuantity(ctx context.Context, id primitive.ObjectID, qty int) (*models.CartItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error)
	DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error)
}

type IAddressRepository interface {
	Create(ctx context.Context, a *models.Address) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
	ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Address, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Address, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
}

type IOrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, opts *options.FindOptions) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to orders.Status) (*models.Order, error)
}

// mapErr turns driver errors into the package sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func after() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// withUpdatedAt stamps updatedAt on a $set document.
func withUpdatedAt(set bson.M) bson.M {
	out := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range set {
		out[k] = v
	}
	return out
}

// EnsureIndexes creates the indexes the queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, idx := range indexSpecs() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// indexSpecs lists the indexes per collection. Only users.email is
// unique; brand and category names may repeat.
func indexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "brand", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "isDeleted", Value: 1}}},
		},
		BrandsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		CartsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		AddressesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
		},
	}
}
