package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type AddressType string

const (
	AddressHome   AddressType = "home"
	AddressOffice AddressType = "office"
	AddressOther  AddressType = "other"
)

func (t AddressType) Valid() bool {
	switch t {
	case AddressHome, AddressOffice, AddressOther:
		return true
	}
	return false
}

type Address struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	Street      string             `json:"street" bson:"street"`
	City        string             `json:"city" bson:"city"`
	State       string             `json:"state" bson:"state"`
	Country     string             `json:"country" bson:"country"`
	PinCode     string             `json:"pinCode" bson:"pinCode"`
	PhoneNumber string             `json:"phoneNumber" bson:"phoneNumber"`
	Type        AddressType        `json:"type" bson:"type"`
}
