// Package storefront is a typed client for the shop API plus a small
// client-side store that tracks the state of each request.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const totalCountHeader = "X-Total-Count"

// APIError is a non-2xx response decoded from the {"message"} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client issues API calls. The token cookie set by login is kept in the
// cookie jar and replayed on later calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. A nil httpClient gets a fresh
// one with its own cookie jar.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar, Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

// ProductQuery mirrors the GET /products query string.
type ProductQuery struct {
	Page       int
	Limit      int
	Sort       string
	Order      string
	Brands     []string
	Categories []string
	Storefront bool
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	for _, b := range q.Brands {
		v.Add("brand", b)
	}
	for _, c := range q.Categories {
		v.Add("category", c)
	}
	if q.Storefront {
		v.Set("user", "true")
	}
	return v
}

// --- Auth ---

func (c *Client) Signup(ctx context.Context, in SignupRequest) (*User, error) {
	var out User
	if _, err := c.do(ctx, http.MethodPost, "/auth/signup", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out User
	in := loginRequest{Email: email, Password: password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/auth/logout", nil, nil, nil)
	return err
}

func (c *Client) CheckAuth(ctx context.Context) (*User, error) {
	var out User
	if _, err := c.do(ctx, http.MethodGet, "/auth/check-auth", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Products ---

// ListProducts returns one page and the total number of matches.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, int64, error) {
	var out []Product
	h, err := c.do(ctx, http.MethodGet, "/products", q.values(), nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, totalCount(h, len(out)), nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	if _, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	var out []Product
	if _, err := c.do(ctx, http.MethodGet, "/products/search", url.Values{"q": {query}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductRequest) (*Product, error) {
	return c.product(ctx, http.MethodPost, "/products", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductRequest) (*Product, error) {
	return c.product(ctx, http.MethodPatch, "/products/"+url.PathEscape(id), in)
}

// DeleteProduct soft-deletes; UndeleteProduct reverses it.
func (c *Client) DeleteProduct(ctx context.Context, id string) (*Product, error) {
	return c.product(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil)
}

func (c *Client) UndeleteProduct(ctx context.Context, id string) (*Product, error) {
	return c.product(ctx, http.MethodPatch, "/products/undelete/"+url.PathEscape(id), nil)
}

func (c *Client) product(ctx context.Context, method, path string, body any) (*Product, error) {
	var out Product
	if _, err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadProductImage posts r as the multipart "image" field.
func (c *Client) UploadProductImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*Product, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/"+url.PathEscape(id)+"/images", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Product
	if _, err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Brands and categories ---

func (c *Client) ListBrands(ctx context.Context) ([]Named, error) {
	return c.listNamed(ctx, "/brands")
}

func (c *Client) CreateBrand(ctx context.Context, name string) (*Named, error) {
	return c.createNamed(ctx, "/brands", name)
}

func (c *Client) ListCategories(ctx context.Context) ([]Named, error) {
	return c.listNamed(ctx, "/categories")
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*Named, error) {
	return c.createNamed(ctx, "/categories", name)
}

func (c *Client) listNamed(ctx context.Context, path string) ([]Named, error) {
	var out []Named
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) createNamed(ctx context.Context, path, name string) (*Named, error) {
	var out Named
	if _, err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Cart ---

func (c *Client) AddToCart(ctx context.Context, in CartRequest) (*CartItem, error) {
	var out CartItem
	if _, err := c.do(ctx, http.MethodPost, "/cart", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cart(ctx context.Context, userID string) ([]CartLine, error) {
	var out []CartLine
	if _, err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, id string, quantity int) (*CartItem, error) {
	var out CartItem
	body := map[string]int{"quantity": quantity}
	if _, err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCartItem(ctx context.Context, id string) (*CartItem, error) {
	var out CartItem
	if _, err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart/user/"+url.PathEscape(userID), nil, nil, nil)
	return err
}

// --- Orders ---

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (*Order, error) {
	return c.order(ctx, http.MethodPost, "/orders", in)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	return c.order(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	return c.order(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), map[string]string{"status": status})
}

func (c *Client) order(ctx context.Context, method, path string, body any) (*Order, error) {
	var out Order
	if _, err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserOrders(ctx context.Context, userID string) ([]Order, error) {
	var out []Order
	if _, err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrders is the admin listing; q uses Page, Limit, Sort and Order.
func (c *Client) ListOrders(ctx context.Context, q ProductQuery) ([]Order, int64, error) {
	var out []Order
	h, err := c.do(ctx, http.MethodGet, "/orders", q.values(), nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, totalCount(h, len(out)), nil
}

// --- Addresses ---

func (c *Client) CreateAddress(ctx context.Context, in AddressRequest) (*Address, error) {
	return c.address(ctx, http.MethodPost, "/address", in)
}

func (c *Client) UpdateAddress(ctx context.Context, id string, patch AddressPatch) (*Address, error) {
	return c.address(ctx, http.MethodPatch, "/address/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteAddress(ctx context.Context, id string) (*Address, error) {
	return c.address(ctx, http.MethodDelete, "/address/"+url.PathEscape(id), nil)
}

func (c *Client) address(ctx context.Context, method, path string, body any) (*Address, error) {
	var out Address
	if _, err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserAddresses(ctx context.Context, userID string) ([]Address, error) {
	var out []Address
	if _, err := c.do(ctx, http.MethodGet, "/address/user/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Users ---

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return c.user(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil)
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	return c.user(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), patch)
}

func (c *Client) ToggleUserStatus(ctx context.Context, id string) (*User, error) {
	return c.user(ctx, http.MethodPatch, "/users/"+url.PathEscape(id)+"/toggle-status", nil)
}

func (c *Client) user(ctx context.Context, method, path string, body any) (*User, error) {
	var out User
	if _, err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, excludeAdmins bool) ([]User, error) {
	var q url.Values
	if excludeAdmins {
		q = url.Values{"excludeAdmins": {"true"}}
	}
	var out []User
	if _, err := c.do(ctx, http.MethodGet, "/users", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- transport ---

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (http.Header, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.Header, decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp.Header, nil
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &envelope) != nil || envelope.Message == "" {
		envelope.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: envelope.Message}
}

func totalCount(h http.Header, fallback int) int64 {
	n, err := strconv.ParseInt(h.Get(totalCountHeader), 10, 64)
	if err != nil {
		return int64(fallback)
	}
	return n
}
