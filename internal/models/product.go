package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title              string             `json:"title" bson:"title"`
	Description        string             `json:"description" bson:"description"`
	Price              float64            `json:"price" bson:"price"`
	DiscountPercentage float64            `json:"discountPercentage" bson:"discountPercentage"`
	StockQuantity      int                `json:"stockQuantity" bson:"stockQuantity"`
	Brand              primitive.ObjectID `json:"brand" bson:"brand"`
	Category           primitive.ObjectID `json:"category" bson:"category"`
	Thumbnail          string             `json:"thumbnail" bson:"thumbnail"`
	Images             []string           `json:"images" bson:"images"`
	IsDeleted          bool               `json:"isDeleted" bson:"isDeleted"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductInput is the body of POST /products and PATCH|PUT /products/:id.
// Nil fields are left untouched on update.
type ProductInput struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Price              *float64  `json:"price"`
	DiscountPercentage *float64  `json:"discountPercentage"`
	StockQuantity      *int      `json:"stockQuantity"`
	Brand              *string   `json:"brand"`
	Category           *string   `json:"category"`
	Thumbnail          *string   `json:"thumbnail"`
	Images             *[]string `json:"images"`
}
