package cache

import (
	"context"
	"testing"
	"time"

	"emporium_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDisabledStoreIsAlwaysEmpty(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	assert.False(t, s.Enabled())

	p := &models.Product{ID: primitive.NewObjectID(), Title: "Phone"}
	assert.NoError(t, s.SetProduct(ctx, p))
	_, ok := s.GetProduct(ctx, p.ID.Hex())
	assert.False(t, ok)

	assert.NoError(t, s.SetProductPage(ctx, "products:list:x", ProductPage{Total: 1}))
	_, ok = s.GetProductPage(ctx, "products:list:x")
	assert.False(t, ok)
	assert.NoError(t, s.InvalidateProduct(ctx, p.ID.Hex()))

	assert.NoError(t, s.BlacklistToken(ctx, "jti", time.Minute))
	revoked, err := s.IsTokenBlacklisted(ctx, "jti")
	assert.NoError(t, err)
	assert.False(t, revoked)

	_, _, err = s.IncrementRateLimit(ctx, "login:a@b.c", time.Minute)
	assert.Error(t, err)
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	assert.False(t, s.Enabled())
	_, ok := s.GetUser(context.Background(), "x")
	assert.False(t, ok)
}
