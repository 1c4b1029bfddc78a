package storefront

import (
	"context"
	"slices"
	"sync"
)

// AsyncStatus is the lifecycle of one tracked operation.
type AsyncStatus string

const (
	StatusIdle      AsyncStatus = "idle"
	StatusPending   AsyncStatus = "pending"
	StatusFulfilled AsyncStatus = "fulfilled"
	StatusRejected  AsyncStatus = "rejected"
)

// Operation names used by Status and Err.
const (
	OpAuth       = "auth"
	OpProducts   = "products"
	OpCart       = "cart"
	OpOrders     = "orders"
	OpUsers      = "users"
	OpToggleUser = "toggleUser"
)

// Store keeps the last known server state and the status of each
// operation. It is safe for concurrent use; accessors return copies.
type Store struct {
	client *Client

	mu           sync.RWMutex
	user         *User
	products     []Product
	productTotal int64
	cart         []CartLine
	orders       []Order
	users        []User
	status       map[string]AsyncStatus
	errs         map[string]error
}

func NewStore(client *Client) *Store {
	return &Store{
		client: client,
		status: make(map[string]AsyncStatus),
		errs:   make(map[string]error),
	}
}

// track runs call under op, recording pending and then the outcome.
// apply runs with the lock held and only on success.
func track[T any](s *Store, op string, call func() (T, error), apply func(T)) (T, error) {
	s.mu.Lock()
	s.status[op] = StatusPending
	delete(s.errs, op)
	s.mu.Unlock()

	out, err := call()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status[op] = StatusRejected
		s.errs[op] = err
		return out, err
	}
	s.status[op] = StatusFulfilled
	if apply != nil {
		apply(out)
	}
	return out, nil
}

func (s *Store) Status(op string) AsyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.status[op]; ok {
		return st
	}
	return StatusIdle
}

// Err is the error of the last rejected run of op.
func (s *Store) Err(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[op]
}

// --- Auth ---

func (s *Store) Signup(ctx context.Context, in SignupRequest) (*User, error) {
	return track(s, OpAuth, func() (*User, error) {
		return s.client.Signup(ctx, in)
	}, s.setUser)
}

func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	return track(s, OpAuth, func() (*User, error) {
		return s.client.Login(ctx, email, password)
	}, s.setUser)
}

// CheckAuth restores the session from the cookie jar.
func (s *Store) CheckAuth(ctx context.Context) (*User, error) {
	return track(s, OpAuth, func() (*User, error) {
		return s.client.CheckAuth(ctx)
	}, s.setUser)
}

// Logout drops every user-scoped resource.
func (s *Store) Logout(ctx context.Context) error {
	_, err := track(s, OpAuth, func() (struct{}, error) {
		return struct{}{}, s.client.Logout(ctx)
	}, func(struct{}) {
		s.user = nil
		s.cart = nil
		s.orders = nil
		s.users = nil
	})
	return err
}

func (s *Store) setUser(u *User) { s.user = u }

func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// --- Products ---

type productPage struct {
	items []Product
	total int64
}

func (s *Store) LoadProducts(ctx context.Context, q ProductQuery) ([]Product, int64, error) {
	page, err := track(s, OpProducts, func() (productPage, error) {
		items, total, err := s.client.ListProducts(ctx, q)
		return productPage{items: items, total: total}, err
	}, func(p productPage) {
		s.products = p.items
		s.productTotal = p.total
	})
	return page.items, page.total, err
}

// Products returns the loaded page and the filtered total.
func (s *Store) Products() ([]Product, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), s.productTotal
}

// --- Cart ---

func (s *Store) LoadCart(ctx context.Context, userID string) ([]CartLine, error) {
	return track(s, OpCart, func() ([]CartLine, error) {
		return s.client.Cart(ctx, userID)
	}, s.setCart)
}

// AddToCart adds the item and reloads the populated cart.
func (s *Store) AddToCart(ctx context.Context, in CartRequest) ([]CartLine, error) {
	return track(s, OpCart, func() ([]CartLine, error) {
		if _, err := s.client.AddToCart(ctx, in); err != nil {
			return nil, err
		}
		return s.client.Cart(ctx, in.User)
	}, s.setCart)
}

func (s *Store) UpdateCartQuantity(ctx context.Context, itemID string, quantity int) (*CartItem, error) {
	return track(s, OpCart, func() (*CartItem, error) {
		return s.client.UpdateCartItem(ctx, itemID, quantity)
	}, func(item *CartItem) {
		for i := range s.cart {
			if s.cart[i].ID == item.ID {
				s.cart[i].Quantity = item.Quantity
			}
		}
	})
}

func (s *Store) RemoveFromCart(ctx context.Context, itemID string) (*CartItem, error) {
	return track(s, OpCart, func() (*CartItem, error) {
		return s.client.DeleteCartItem(ctx, itemID)
	}, func(item *CartItem) {
		kept := make([]CartLine, 0, len(s.cart))
		for _, line := range s.cart {
			if line.ID != item.ID {
				kept = append(kept, line)
			}
		}
		s.cart = kept
	})
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := track(s, OpCart, func() (struct{}, error) {
		return struct{}{}, s.client.ClearCart(ctx, userID)
	}, func(struct{}) { s.cart = nil })
	return err
}

func (s *Store) setCart(lines []CartLine) { s.cart = lines }

func (s *Store) Cart() []CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cart)
}

// --- Orders ---

// PlaceOrder creates the order, then empties the server cart.
func (s *Store) PlaceOrder(ctx context.Context, in OrderRequest) (*Order, error) {
	return track(s, OpOrders, func() (*Order, error) {
		order, err := s.client.CreateOrder(ctx, in)
		if err != nil {
			return nil, err
		}
		if err := s.client.ClearCart(ctx, in.User); err != nil {
			return order, err
		}
		return order, nil
	}, func(order *Order) {
		s.orders = append([]Order{*order}, s.orders...)
		s.cart = nil
	})
}

func (s *Store) LoadOrders(ctx context.Context, userID string) ([]Order, error) {
	return track(s, OpOrders, func() ([]Order, error) {
		return s.client.UserOrders(ctx, userID)
	}, func(out []Order) { s.orders = out })
}

func (s *Store) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// --- Users ---

func (s *Store) LoadUsers(ctx context.Context, excludeAdmins bool) ([]User, error) {
	return track(s, OpUsers, func() ([]User, error) {
		return s.client.ListUsers(ctx, excludeAdmins)
	}, func(out []User) { s.users = out })
}

// ToggleUser flips a user's isEnabled and replaces it in the loaded list.
func (s *Store) ToggleUser(ctx context.Context, userID string) (*User, error) {
	return track(s, OpToggleUser, func() (*User, error) {
		return s.client.ToggleUserStatus(ctx, userID)
	}, func(u *User) {
		for i := range s.users {
			if s.users[i].ID == u.ID {
				s.users[i] = *u
			}
		}
	})
}

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}
