package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Named is the {_id, name} document shared by brands and categories.
type Named struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}

type (
	Brand    = Named
	Category = Named
)
