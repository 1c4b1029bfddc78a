package services

import (
	"context"
	"errors"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/catalog"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"
	"emporium_back_end/internal/repository"
	"emporium_back_end/internal/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderItemInput struct {
	Product  string `json:"product" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// CreateOrderInput is the POST /orders body. Item prices sent by the
// client are ignored; total is only checked.
type CreateOrderInput struct {
	User        string           `json:"user" validate:"required,objectid"`
	Items       []OrderItemInput `json:"item" validate:"required,min=1,dive"`
	Address     []models.Address `json:"address" validate:"required,min=1"`
	Total       *float64         `json:"total"`
	PaymentMode string           `json:"paymentMode"`
}

type IOrderService interface {
	Create(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, actor Actor, user primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, params catalog.ListParams) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
}

type OrderService struct {
	orders   repository.IOrderRepository
	products repository.IProductRepository
	cache    ProductCache
	users    repository.IUserRepository
	events   IEventPublisher
	mailer   Notifier
	log      zerolog.Logger
	timeout  time.Duration
	async    runner
}

func NewOrderService(orderRepo repository.IOrderRepository, products repository.IProductRepository, productCache ProductCache,
	users repository.IUserRepository, events IEventPublisher, mailer Notifier, log zerolog.Logger, timeout time.Duration) *OrderService {
	return &OrderService{
		orders:   orderRepo,
		products: products,
		cache:    productCache,
		users:    users,
		events:   events,
		mailer:   mailer,
		log:      log,
		timeout:  timeout,
		async:    goRunner,
	}
}

type reservation struct {
	product  primitive.ObjectID
	quantity int
}

func (s *OrderService) Create(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, _ := primitive.ObjectIDFromHex(in.User)
	if err := ensureOwner(actor, user); err != nil {
		return nil, err
	}
	mode, err := orders.ParsePaymentMode(in.PaymentMode)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	items := make([]models.OrderItem, 0, len(in.Items))
	lines := make([]orders.Line, 0, len(in.Items))
	for _, it := range in.Items {
		pid, _ := primitive.ObjectIDFromHex(it.Product)
		p, err := s.products.FindByID(ctx, pid)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && p.IsDeleted) {
			return nil, apperr.Validation("Product %s is not available", it.Product)
		}
		if err != nil {
			return nil, storeErr(err, "Product not found")
		}
		unit := orders.UnitPrice(p.Price, p.DiscountPercentage)
		lines = append(lines, orders.Line{UnitPrice: unit, Quantity: it.Quantity})
		items = append(items, models.OrderItem{
			Product:  pid,
			Title:    p.Title,
			Quantity: it.Quantity,
			Price:    unit.InexactFloat64(),
		})
	}

	total := orders.Total(lines)
	if err := orders.CheckClientTotal(in.Total, total); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	reserved := make([]reservation, 0, len(items))
	for _, it := range items {
		if err := s.products.ReserveStock(ctx, it.Product, it.Quantity); err != nil {
			s.release(reserved)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, apperr.Conflict("Insufficient stock for %s", it.Title)
			}
			return nil, storeErr(err, "Product not found")
		}
		reserved = append(reserved, reservation{product: it.Product, quantity: it.Quantity})
	}
	s.invalidate(ctx, reserved)

	addresses := make([]models.Address, len(in.Address))
	for i, a := range in.Address {
		a.User = user
		addresses[i] = a
	}

	order := &models.Order{
		User:        user,
		Items:       items,
		Address:     addresses,
		Total:       total.InexactFloat64(),
		PaymentMode: mode,
		Status:      orders.StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(reserved)
		return nil, storeErr(err, "Order not found")
	}

	s.log.Info().Str("order", order.ID.Hex()).Str("user", user.Hex()).Float64("total", order.Total).Msg("order created")
	s.announce(EventOrderCreated, *order)
	return order, nil
}

// release gives back reserved stock on a fresh context; the request
// context may already be cancelled.
func (s *OrderService) release(reserved []reservation) {
	if len(reserved) == 0 {
		return
	}
	ctx, cancel := withTimeout(context.Background(), s.timeout)
	defer cancel()
	for _, r := range reserved {
		if err := s.products.ReleaseStock(ctx, r.product, r.quantity); err != nil {
			s.log.Error().Err(err).Str("product", r.product.Hex()).Int("quantity", r.quantity).Msg("failed to release stock")
		}
	}
	s.invalidate(ctx, reserved)
}

// invalidate drops the cached copies of every product whose stock moved.
func (s *OrderService) invalidate(ctx context.Context, touched []reservation) {
	if s.cache == nil {
		return
	}
	for _, r := range touched {
		if err := s.cache.InvalidateProduct(ctx, r.product.Hex()); err != nil {
			s.log.Warn().Err(err).Str("product", r.product.Hex()).Msg("product cache invalidation failed")
		}
	}
}

func (s *OrderService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if err := ensureOwner(actor, o.User); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) ListByUser(ctx context.Context, actor Actor, user primitive.ObjectID) ([]models.Order, error) {
	if err := ensureOwner(actor, user); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.orders.ListByUser(ctx, user)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return out, nil
}

func (s *OrderService) List(ctx context.Context, params catalog.ListParams) ([]models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	out, total, err := s.orders.List(ctx, params.FindOptions())
	if err != nil {
		return nil, 0, storeErr(err, "Order not found")
	}
	return out, total, nil
}

// UpdateStatus moves an order along its lifecycle. Re-sending the
// current status returns the order unchanged.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	to, err := orders.ParseStatus(status)
	if err != nil {
		return nil, apperr.Validation("Invalid status %q", status)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if current.Status == to {
		return current, nil
	}
	if err := orders.CheckTransition(current.Status, to); err != nil {
		return nil, apperr.Conflict("%s", err.Error())
	}

	updated, err := s.orders.UpdateStatus(ctx, id, current.Status, to)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, apperr.Conflict("Order status changed, reload and try again")
	}
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}

	if orders.RestoresStock(to) {
		restored := make([]reservation, 0, len(updated.Items))
		for _, it := range updated.Items {
			if err := s.products.ReleaseStock(ctx, it.Product, it.Quantity); err != nil {
				s.log.Error().Err(err).Str("order", id.Hex()).Str("product", it.Product.Hex()).Msg("failed to restore stock")
				continue
			}
			restored = append(restored, reservation{product: it.Product, quantity: it.Quantity})
		}
		s.invalidate(ctx, restored)
	}

	s.log.Info().Str("order", id.Hex()).Str("from", string(current.Status)).Str("to", string(to)).Msg("order status changed")
	s.announce(EventOrderStatusChanged, *updated)
	return updated, nil
}

// announce publishes the event and, for status changes, emails the
// customer. Failures are logged only.
func (s *OrderService) announce(event string, order models.Order) {
	s.async(func() {
		ctx, cancel := withTimeout(context.Background(), s.timeout)
		defer cancel()

		if s.events != nil {
			if err := s.events.PublishOrderEvent(ctx, event, &order); err != nil {
				s.log.Warn().Err(err).Str("order", order.ID.Hex()).Str("event", event).Msg("order event not published")
			}
		}
		if event != EventOrderStatusChanged || s.mailer == nil || s.users == nil {
			return
		}
		u, err := s.users.FindByID(ctx, order.User)
		if err != nil {
			s.log.Warn().Err(err).Str("order", order.ID.Hex()).Msg("order owner lookup failed")
			return
		}
		subject, body := utils.OrderStatusEmail(order, u.Name)
		if err := s.mailer.Send(ctx, u.Email, subject, body); err != nil {
			s.log.Warn().Err(err).Str("order", order.ID.Hex()).Msg("order status email failed")
		}
	})
}
