package services

import (
	"context"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AddressInput struct {
	User        string `json:"user" validate:"required,objectid"`
	Street      string `json:"street" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	Country     string `json:"country" validate:"required"`
	PinCode     string `json:"pinCode" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=home office other"`
}

// AddressPatch lists the fields PATCH /address/:id may change.
type AddressPatch struct {
	Street      *string `json:"street" validate:"omitempty,min=1"`
	City        *string `json:"city" validate:"omitempty,min=1"`
	State       *string `json:"state" validate:"omitempty,min=1"`
	Country     *string `json:"country" validate:"omitempty,min=1"`
	PinCode     *string `json:"pinCode" validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=1"`
	Type        *string `json:"type" validate:"omitempty,oneof=home office other"`
}

type IAddressService interface {
	Create(ctx context.Context, actor Actor, in AddressInput) (*models.Address, error)
	ListByUser(ctx context.Context, actor Actor, user primitive.ObjectID) ([]models.Address, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch AddressPatch) (*models.Address, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Address, error)
}

type AddressService struct {
	addresses repository.IAddressRepository
	timeout   time.Duration
}

func NewAddressService(addresses repository.IAddressRepository, timeout time.Duration) *AddressService {
	return &AddressService{addresses: addresses, timeout: timeout}
}

func (s *AddressService) Create(ctx context.Context, actor Actor, in AddressInput) (*models.Address, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, _ := primitive.ObjectIDFromHex(in.User)
	if err := ensureOwner(actor, user); err != nil {
		return nil, err
	}

	a := &models.Address{
		User:        user,
		Street:      in.Street,
		City:        in.City,
		State:       in.State,
		Country:     in.Country,
		PinCode:     in.PinCode,
		PhoneNumber: in.PhoneNumber,
		Type:        models.AddressType(in.Type),
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.addresses.Create(ctx, a); err != nil {
		return nil, storeErr(err, "Address not found")
	}
	return a, nil
}

func (s *AddressService) ListByUser(ctx context.Context, actor Actor, user primitive.ObjectID) ([]models.Address, error) {
	if err := ensureOwner(actor, user); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.addresses.ListByUser(ctx, user)
	if err != nil {
		return nil, storeErr(err, "Address not found")
	}
	return out, nil
}

func (s *AddressService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch AddressPatch) (*models.Address, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	set := bson.M{}
	for field, v := range map[string]*string{
		"street":      patch.Street,
		"city":        patch.City,
		"state":       patch.State,
		"country":     patch.Country,
		"pinCode":     patch.PinCode,
		"phoneNumber": patch.PhoneNumber,
		"type":        patch.Type,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if len(set) == 0 {
		return nil, apperr.Validation("Nothing to update")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	a, err := s.addresses.Update(ctx, id, set)
	if err != nil {
		return nil, storeErr(err, "Address not found")
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Address, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	a, err := s.addresses.Delete(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Address not found")
	}
	return a, nil
}

func (s *AddressService) owned(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	a, err := s.addresses.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "Address not found")
	}
	return ensureOwner(actor, a.User)
}
