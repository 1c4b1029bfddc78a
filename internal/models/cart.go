package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one row of a user's cart. The same product may appear twice.
type CartItem struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Product   primitive.ObjectID `json:"product" bson:"product"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CartLine is a cart row with its product joined in.
type CartLine struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Product   *Product           `json:"product" bson:"product"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
