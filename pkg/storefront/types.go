package storefront

import "time"

// Identifiers are the 24-char hex ObjectIDs the API emits.

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsEnabled bool      `json:"isEnabled"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID                 string    `json:"_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	DiscountPercentage float64   `json:"discountPercentage"`
	StockQuantity      int       `json:"stockQuantity"`
	Brand              string    `json:"brand"`
	Category           string    `json:"category"`
	Thumbnail          string    `json:"thumbnail"`
	Images             []string  `json:"images"`
	IsDeleted          bool      `json:"isDeleted"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Named is a brand or a category.
type Named struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// CartItem is the bare cart row returned by writes.
type CartItem struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartLine is a cart row with its product populated.
type CartLine struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Product   *Product  `json:"product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

type Address struct {
	ID          string `json:"_id,omitempty"`
	User        string `json:"user,omitempty"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PinCode     string `json:"pinCode"`
	PhoneNumber string `json:"phoneNumber"`
	Type        string `json:"type"`
}

type OrderItem struct {
	Product  string  `json:"product"`
	Title    string  `json:"title,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	ID          string      `json:"_id"`
	User        string      `json:"user"`
	Items       []OrderItem `json:"item"`
	Address     []Address   `json:"address"`
	Total       float64     `json:"total"`
	PaymentMode string      `json:"paymentMode"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CartRequest struct {
	User     string `json:"user"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type OrderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the POST /orders body. Total, when set, must match the
// server's computed total.
type OrderRequest struct {
	User        string             `json:"user"`
	Items       []OrderItemRequest `json:"item"`
	Address     []Address          `json:"address"`
	Total       *float64           `json:"total,omitempty"`
	PaymentMode string             `json:"paymentMode,omitempty"`
}

type AddressRequest struct {
	User        string `json:"user"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PinCode     string `json:"pinCode"`
	PhoneNumber string `json:"phoneNumber"`
	Type        string `json:"type"`
}

// AddressPatch sends only the non-nil fields.
type AddressPatch struct {
	Street      *string `json:"street,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
	PinCode     *string `json:"pinCode,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// ProductRequest is the body of product create and update. Nil fields
// are left untouched on update.
type ProductRequest struct {
	Title              *string   `json:"title,omitempty"`
	Description        *string   `json:"description,omitempty"`
	Price              *float64  `json:"price,omitempty"`
	DiscountPercentage *float64  `json:"discountPercentage,omitempty"`
	StockQuantity      *int      `json:"stockQuantity,omitempty"`
	Brand              *string   `json:"brand,omitempty"`
	Category           *string   `json:"category,omitempty"`
	Thumbnail          *string   `json:"thumbnail,omitempty"`
	Images             *[]string `json:"images,omitempty"`
}

type UserPatch struct {
	Name    *string `json:"name,omitempty"`
	IsAdmin *bool   `json:"isAdmin,omitempty"`
}
