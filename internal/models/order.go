package models

import (
	"time"

	"emporium_back_end/internal/orders"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Title    string             `json:"title,omitempty" bson:"title,omitempty"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
}

type Order struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	Items       []OrderItem        `json:"item" bson:"item"`
	Address     []Address          `json:"address" bson:"address"`
	Total       float64            `json:"total" bson:"total"`
	PaymentMode orders.PaymentMode `json:"paymentMode" bson:"paymentMode"`
	Status      orders.Status      `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
