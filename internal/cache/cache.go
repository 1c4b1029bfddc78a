package cache

import (
	"context"
	"encoding/json"
	"time"

	"emporium_back_end/internal/models"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ProductCacheTTL = 10 * time.Minute
	ListCacheTTL    = 2 * time.Minute
)

// ProductPage is a cached product listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func (s *Store) GetProductPage(ctx context.Context, key string) (*ProductPage, bool) {
	data, ok := s.get(ctx, key)
	if !ok {
		return nil, false
	}
	var page ProductPage
	if json.Unmarshal(data, &page) != nil {
		return nil, false
	}
	return &page, true
}

func (s *Store) SetProductPage(ctx context.Context, key string, page ProductPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return s.set(ctx, key, data, ListCacheTTL)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	data, ok := s.get(ctx, "product:"+id)
	if !ok {
		return nil, false
	}
	var p models.Product
	if json.Unmarshal(data, &p) != nil {
		return nil, false
	}
	return &p, true
}

func (s *Store) SetProduct(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.set(ctx, "product:"+p.ID.Hex(), data, ProductCacheTTL)
}

// InvalidateProduct drops one product and every cached listing.
func (s *Store) InvalidateProduct(ctx context.Context, id string) error {
	if err := s.del(ctx, "product:"+id); err != nil {
		return err
	}
	return s.InvalidateProductLists(ctx)
}

func (s *Store) InvalidateProductLists(ctx context.Context) error {
	return s.deletePattern(ctx, "products:list:*")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, bool) {
	data, ok := s.get(ctx, "user:"+id)
	if !ok {
		return nil, false
	}
	var u models.User
	if json.Unmarshal(data, &u) != nil {
		return nil, false
	}
	return &u, true
}

// SetUser caches the public view of u. The password hash is never cached.
func (s *Store) SetUser(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.set(ctx, "user:"+u.ID.Hex(), data, UserCacheTTL)
}

func (s *Store) InvalidateUser(ctx context.Context, id string) error {
	return s.del(ctx, "user:"+id)
}
