package services

import (
	"context"
	"io"
	"sync"
	"time"

	"emporium_back_end/internal/cache"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func syncRunner(f func()) { f() }

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	return m.Called(u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, excludeAdmins bool) ([]models.User, error) {
	args := m.Called(excludeAdmins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	args := m.Called(id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ToggleEnabled(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) error {
	return m.Called(p).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, int64, error) {
	args := m.Called(filter, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	args := m.Called(id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) SetDeleted(ctx context.Context, id primitive.ObjectID, deleted bool) (*models.Product, error) {
	args := m.Called(id, deleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	return m.Called(id, qty).Error(0)
}

func (m *MockProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	return m.Called(id, qty).Error(0)
}

func (m *MockProductRepository) AddImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Product, error) {
	args := m.Called(id, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type MockNamedRepository struct{ mock.Mock }

func (m *MockNamedRepository) List(ctx context.Context) ([]models.Named, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Named), args.Error(1)
}

func (m *MockNamedRepository) Create(ctx context.Context, name string) (*models.Named, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Named), args.Error(1)
}

func (m *MockNamedRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type MockCartRepository struct{ mock.Mock }

func (m *MockCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	return m.Called(item).Error(0)
}

func (m *MockCartRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.CartLine, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartLine), args.Error(1)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, id primitive.ObjectID, qty int) (*models.CartItem, error) {
	args := m.Called(id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	args := m.Called(user)
	return args.Get(0).(int64), args.Error(1)
}

type MockAddressRepository struct{ mock.Mock }

func (m *MockAddressRepository) Create(ctx context.Context, a *models.Address) error {
	return m.Called(a).Error(0)
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Address, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAddressRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Address, error) {
	args := m.Called(id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, o *models.Order) error {
	return m.Called(o).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, opts *options.FindOptions) ([]models.Order, int64, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to orders.Status) (*models.Order, error) {
	args := m.Called(id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishOrderEvent(ctx context.Context, event string, order *models.Order) error {
	return m.Called(event, order).Error(0)
}

type MockRevoker struct{ mock.Mock }

func (m *MockRevoker) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(tokenID, ttl).Error(0)
}

func (m *MockRevoker) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(tokenID)
	return args.Bool(0), args.Error(1)
}

// nopCache never hits and accepts every write.
type nopCache struct{}

func (nopCache) GetUser(context.Context, string) (*models.User, bool) { return nil, false }
func (nopCache) SetUser(context.Context, *models.User) error { return nil }
func (nopCache) InvalidateUser(context.Context, string) error { return nil }
func (nopCache) GetProductPage(context.Context, string) (*cache.ProductPage, bool) { return nil, false }
func (nopCache) SetProductPage(context.Context, string, cache.ProductPage) error { return nil }
func (nopCache) GetProduct(context.Context, string) (*models.Product, bool) { return nil, false }
func (nopCache) SetProduct(context.Context, *models.Product) error { return nil }
func (nopCache) InvalidateProduct(context.Context, string) error { return nil }

// productCacheSpy records product invalidations.
type productCacheSpy struct {
	nopCache
	mu          sync.Mutex
	invalidated []string
}

func (c *productCacheSpy) InvalidateProduct(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *productCacheSpy) Invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

type MockProductIndex struct{ mock.Mock }

func (m *MockProductIndex) Index(ctx context.Context, p models.Product) error {
	return m.Called(p.ID).Error(0)
}

func (m *MockProductIndex) Search(ctx context.Context, text string, size int) ([]string, error) {
	args := m.Called(text, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockImageStore struct{ mock.Mock }

func (m *MockImageStore) Upload(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(prefix, filename, size, contentType)
	return args.String(0), args.Error(1)
}
