package services

import (
	"context"
	"net/http"
	"testing"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"
	"emporium_back_end/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderFixture struct {
	orders   *MockOrderRepository
	products *MockProductRepository
	users    *MockUserRepository
	events   *MockEventPublisher
	mailer   *MockNotifier
	cache    *productCacheSpy
	svc      *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:   new(MockOrderRepository),
		products: new(MockProductRepository),
		users:    new(MockUserRepository),
		events:   new(MockEventPublisher),
		mailer:   new(MockNotifier),
		cache:    new(productCacheSpy),
	}
	f.svc = NewOrderService(f.orders, f.products, f.cache, f.users, f.events, f.mailer, zerolog.Nop(), 0)
	f.svc.async = syncRunner
	return f
}

func floatPtr(v float64) *float64 { return &v }

func orderInput(user primitive.ObjectID, items ...OrderItemInput) CreateOrderInput {
	return CreateOrderInput{
		User:    user.Hex(),
		Items:   items,
		Address: []models.Address{{Street: "1 Main St", City: "Pune", Country: "India"}},
	}
}

func TestOrderCreate_SnapshotsPricesAndReservesStock(t *testing.T) {
	f := newOrderFixture()
	user := primitive.NewObjectID()
	pid := primitive.NewObjectID()

	f.products.On("FindByID", pid).Return(&models.Product{ID: pid, Title: "Phone", Price: 100, DiscountPercentage: 10}, nil)
	f.products.On("ReserveStock", pid, 2).Return(nil)
	f.orders.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Order).ID = primitive.NewObjectID()
	}).Return(nil)
	f.events.On("PublishOrderEvent", EventOrderCreated, mock.Anything).Return(nil)

	in := orderInput(user, OrderItemInput{Product: pid.Hex(), Quantity: 2})
	in.Total = floatPtr(180.004)

	order, err := f.svc.Create(context.Background(), Actor{ID: user}, in)
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPending, order.Status)
	assert.Equal(t, orders.PaymentCOD, order.PaymentMode)
	assert.Equal(t, 180.0, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 90.0, order.Items[0].Price)
	assert.Equal(t, "Phone", order.Items[0].Title)
	assert.Equal(t, user, order.Address[0].User)

	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{pid.Hex()}, f.cache.Invalidated())
}

func TestOrderCreate_RejectsTotalMismatch(t *testing.T) {
	f := newOrderFixture()
	user := primitive.NewObjectID()
	pid := primitive.NewObjectID()

	f.products.On("FindByID", pid).Return(&models.Product{ID: pid, Price: 50}, nil)

	in := orderInput(user, OrderItemInput{Product: pid.Hex(), Quantity: 1})
	in.Total = floatPtr(49)

	_, err := f.svc.Create(context.Background(), Actor{ID: user}, in)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	f.products.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderCreate_RollsBackPartialReservations(t *testing.T) {
	f := newOrderFixture()
	user := primitive.NewObjectID()
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	f.products.On("FindByID", first).Return(&models.Product{ID: first, Title: "A", Price: 10}, nil)
	f.products.On("FindByID", second).Return(&models.Product{ID: second, Title: "B", Price: 20}, nil)
	f.products.On("ReserveStock", first, 1).Return(nil)
	f.products.On("ReserveStock", second, 3).Return(repository.ErrInsufficientStock)
	f.products.On("ReleaseStock", first, 1).Return(nil)

	in := orderInput(user,
		OrderItemInput{Product: first.Hex(), Quantity: 1},
		OrderItemInput{Product: second.Hex(), Quantity: 3},
	)

	_, err := f.svc.Create(context.Background(), Actor{ID: user}, in)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
	f.products.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "Create", mock.Anything)
	assert.Equal(t, []string{first.Hex()}, f.cache.Invalidated())
}

func TestOrderCreate_Validation(t *testing.T) {
	user := primitive.NewObjectID()
	pid := primitive.NewObjectID()

	t.Run("deleted product", func(t *testing.T) {
		f := newOrderFixture()
		f.products.On("FindByID", pid).Return(&models.Product{ID: pid, IsDeleted: true}, nil)
		_, err := f.svc.Create(context.Background(), Actor{ID: user}, orderInput(user, OrderItemInput{Product: pid.Hex(), Quantity: 1}))
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	})

	t.Run("missing product", func(t *testing.T) {
		f := newOrderFixture()
		f.products.On("FindByID", pid).Return(nil, repository.ErrNotFound)
		_, err := f.svc.Create(context.Background(), Actor{ID: user}, orderInput(user, OrderItemInput{Product: pid.Hex(), Quantity: 1}))
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	})

	t.Run("no items", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.Create(context.Background(), Actor{ID: user}, orderInput(user))
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	})

	t.Run("unknown payment mode", func(t *testing.T) {
		f := newOrderFixture()
		in := orderInput(user, OrderItemInput{Product: pid.Hex(), Quantity: 1})
		in.PaymentMode = "BITCOIN"
		_, err := f.svc.Create(context.Background(), Actor{ID: user}, in)
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	})

	t.Run("other user", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.Create(context.Background(), Actor{ID: primitive.NewObjectID()}, orderInput(user, OrderItemInput{Product: pid.Hex(), Quantity: 1}))
		assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	})
}

func TestOrderUpdateStatus(t *testing.T) {
	id := primitive.NewObjectID()
	user := primitive.NewObjectID()
	pid := primitive.NewObjectID()
	pending := func() *models.Order {
		return &models.Order{
			ID:     id,
			User:   user,
			Status: orders.StatusPending,
			Items:  []models.OrderItem{{Product: pid, Quantity: 2, Price: 5}},
		}
	}

	t.Run("legal move publishes and emails", func(t *testing.T) {
		f := newOrderFixture()
		moved := pending()
		moved.Status = orders.StatusDispatched

		f.orders.On("FindByID", id).Return(pending(), nil)
		f.orders.On("UpdateStatus", id, orders.StatusPending, orders.StatusDispatched).Return(moved, nil)
		f.events.On("PublishOrderEvent", EventOrderStatusChanged, mock.Anything).Return(nil)
		f.users.On("FindByID", user).Return(&models.User{ID: user, Name: "Asha", Email: "asha@example.com"}, nil)
		f.mailer.On("Send", "asha@example.com", mock.Anything, mock.Anything).Return(nil)

		got, err := f.svc.UpdateStatus(context.Background(), id, "Dispatched")
		require.NoError(t, err)
		assert.Equal(t, orders.StatusDispatched, got.Status)
		f.events.AssertExpectations(t)
		f.mailer.AssertExpectations(t)
		f.products.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", id).Return(pending(), nil)

		got, err := f.svc.UpdateStatus(context.Background(), id, "Pending")
		require.NoError(t, err)
		assert.Equal(t, orders.StatusPending, got.Status)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		f.events.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
	})

	t.Run("illegal move", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", id).Return(pending(), nil)
		_, err := f.svc.UpdateStatus(context.Background(), id, "Delivered")
		assert.Equal(t, http.StatusConflict, apperr.Status(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.UpdateStatus(context.Background(), id, "Shipped")
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", id).Return(nil, repository.ErrNotFound)
		_, err := f.svc.UpdateStatus(context.Background(), id, "Dispatched")
		assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	})

	t.Run("lost race", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("FindByID", id).Return(pending(), nil)
		f.orders.On("UpdateStatus", id, orders.StatusPending, orders.StatusCancelled).Return(nil, repository.ErrStatusChanged)
		_, err := f.svc.UpdateStatus(context.Background(), id, "Cancelled")
		assert.Equal(t, http.StatusConflict, apperr.Status(err))
	})

	t.Run("cancel restores stock", func(t *testing.T) {
		f := newOrderFixture()
		cancelled := pending()
		cancelled.Status = orders.StatusCancelled

		f.orders.On("FindByID", id).Return(pending(), nil)
		f.orders.On("UpdateStatus", id, orders.StatusPending, orders.StatusCancelled).Return(cancelled, nil)
		f.products.On("ReleaseStock", pid, 2).Return(nil)
		f.events.On("PublishOrderEvent", EventOrderStatusChanged, mock.Anything).Return(nil)
		f.users.On("FindByID", user).Return(nil, repository.ErrNotFound)

		_, err := f.svc.UpdateStatus(context.Background(), id, "Cancelled")
		require.NoError(t, err)
		f.products.AssertExpectations(t)
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []string{pid.Hex()}, f.cache.Invalidated())
	})
}

func TestOrderGet_OwnerOrAdmin(t *testing.T) {
	f := newOrderFixture()
	id := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	f.orders.On("FindByID", id).Return(&models.Order{ID: id, User: owner}, nil)

	_, err := f.svc.Get(context.Background(), Actor{ID: owner}, id)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), Actor{ID: primitive.NewObjectID(), IsAdmin: true}, id)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), Actor{ID: primitive.NewObjectID()}, id)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}
