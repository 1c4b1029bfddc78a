package services

import (
	"context"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCartQuantity caps the quantity of a single cart row.
const MaxCartQuantity = 100

type AddToCartInput struct {
	User     string `json:"user" validate:"required,objectid"`
	Product  string `json:"product" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=100"`
}

type ICartService interface {
	Add(ctx context.Context, actor Actor, in AddToCartInput) (*models.CartItem, error)
	ListByUser(ctx context.Context, actor Actor, user primitive.ObjectID) ([]models.CartLine, error)
	UpdateQuantity(ctx context.Context, actor Actor, id primitive.ObjectID, qty int) (*models.CartItem, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.CartItem, error)
	Clear(ctx context.Context, actor Actor, user primitive.ObjectID) error
}

type CartService struct {
	carts    repository.ICartRepository
	products repository.IProductRepository
	log      zerolog.Logger
	timeout  time.Duration
}

func NewCartService(carts repository.ICartRepository, products repository.IProductRepository, log zerolog.Logger, timeout time.Duration) *CartService {
	return &CartService{carts: carts, products: products, log: log, timeout: timeout}
}

// Add inserts a new row. Adding a product twice creates two rows.
func (s *CartService) Add(ctx context.Context, actor Actor, in AddToCartInput) (*models.CartItem, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, _ := primitive.ObjectIDFromHex(in.User)
	product, _ := primitive.ObjectIDFromHex(in.Product)
	if err := ensureOwner(actor, user); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.products.FindByID(ctx, product)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	if p.IsDeleted {
		return nil, apperr.NotFound("Product not found")
	}

	item := &models.CartItem{User: user, Product: product, Quantity: in.Quantity}
	if err := s.carts.Create(ctx, item); err != nil {
		return nil, storeErr(err, "Cart item not found")
	}
	return item, nil
}

func (s *CartService) ListByUser(ctx context.Context, actor Actor, user primitive.ObjectID) ([]models.CartLine, error) {
	if err := ensureOwner(actor, user); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	lines, err := s.carts.ListByUser(ctx, user)
	if err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return lines, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, actor Actor, id primitive.ObjectID, qty int) (*models.CartItem, error) {
	if qty < 1 || qty > MaxCartQuantity {
		return nil, apperr.Validation("quantity must be between 1 and %d", MaxCartQuantity)
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	item, err := s.carts.UpdateQuantity(ctx, id, qty)
	if err != nil {
		return nil, storeErr(err, "Cart item not found")
	}
	return item, nil
}

func (s *CartService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.CartItem, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	item, err := s.carts.Delete(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Cart item not found")
	}
	return item, nil
}

// Clear empties a user's cart. An already empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, actor Actor, user primitive.ObjectID) error {
	if err := ensureOwner(actor, user); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.carts.DeleteByUser(ctx, user)
	if err != nil {
		return storeErr(err, "Cart not found")
	}
	s.log.Debug().Str("user", user.Hex()).Int64("rows", n).Msg("cart cleared")
	return nil
}

func (s *CartService) owned(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.CartItem, error) {
	item, err := s.carts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Cart item not found")
	}
	if err := ensureOwner(actor, item.User); err != nil {
		return nil, err
	}
	return item, nil
}
