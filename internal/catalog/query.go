// Package catalog turns list query strings into validated Mongo queries.
package catalog

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"emporium_back_end/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ProductSorts is the sort whitelist for GET /products.
var ProductSorts = []string{"price", "title", "discountPercentage", "stockQuantity", "createdAt"}

// OrderSorts is the sort whitelist for GET /orders.
var OrderSorts = []string{"createdAt", "total", "status"}

type ListParams struct {
	Page     int
	Limit    int
	Paginate bool

	SortField string
	Desc      bool

	Brands     []primitive.ObjectID
	Categories []primitive.ObjectID

	// Storefront hides deleted products from admins too (user=true).
	Storefront bool
}

// ParseProducts validates the GET /products query string.
func ParseProducts(q url.Values) (ListParams, error) {
	p, err := parsePaging(q, ProductSorts)
	if err != nil {
		return p, err
	}
	if p.Brands, err = objectIDs("brand", q["brand"]); err != nil {
		return p, err
	}
	if p.Categories, err = objectIDs("category", q["category"]); err != nil {
		return p, err
	}
	if v := q.Get("user"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, apperr.Validation("Invalid user flag %q", v)
		}
		p.Storefront = b
	}
	return p, nil
}

// ParseOrders validates the GET /orders query string.
func ParseOrders(q url.Values) (ListParams, error) {
	return parsePaging(q, OrderSorts)
}

func parsePaging(q url.Values, sortable []string) (ListParams, error) {
	p := ListParams{Page: 1}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, apperr.Validation("Invalid limit %q", v)
		}
		p.Limit = min(n, MaxLimit)
		p.Paginate = true
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, apperr.Validation("Invalid page %q", v)
		}
		p.Page = n
		if !p.Paginate {
			p.Limit = DefaultLimit
			p.Paginate = true
		}
	}

	if v := q.Get("sort"); v != "" {
		if !contains(sortable, v) {
			return p, apperr.Validation("Unsupported sort field %q", v)
		}
		p.SortField = v
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		p.Desc = true
	default:
		return p, apperr.Validation("Invalid order %q", q.Get("order"))
	}
	return p, nil
}

func objectIDs(name string, raw []string) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, item := range raw {
		for _, v := range strings.Split(item, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			id, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				return nil, apperr.Validation("Invalid %s id %q", name, v)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ProductFilter renders the Mongo filter for a product listing.
func (p ListParams) ProductFilter(isAdmin bool) bson.M {
	filter := bson.M{}
	if len(p.Brands) > 0 {
		filter["brand"] = bson.M{"$in": p.Brands}
	}
	if len(p.Categories) > 0 {
		filter["category"] = bson.M{"$in": p.Categories}
	}
	if !isAdmin || p.Storefront {
		filter["isDeleted"] = bson.M{"$ne": true}
	}
	return filter
}

// FindOptions renders sort, skip and limit. Every sort ends on _id so
// pages never overlap between requests.
func (p ListParams) FindOptions() *options.FindOptions {
	opts := options.Find()
	if p.SortField != "" {
		dir := 1
		if p.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: p.SortField, Value: dir}, {Key: "_id", Value: dir}})
	}
	if p.Paginate {
		opts.SetSkip(p.Skip())
		opts.SetLimit(int64(p.Limit))
	}
	return opts
}

// Skip is the number of documents before the page. A page too far out to
// count saturates at MaxInt64, which Mongo answers with an empty page.
func (p ListParams) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	pages, limit := int64(p.Page-1), int64(p.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// CacheKey is stable for equal params and visibility.
func (p ListParams) CacheKey(isAdmin bool) string {
	brands := hexes(p.Brands)
	categories := hexes(p.Categories)
	return fmt.Sprintf("products:list:p=%d:l=%d:s=%s:d=%t:b=%s:c=%s:v=%t",
		p.Page, p.Limit, p.SortField, p.Desc,
		strings.Join(brands, ","), strings.Join(categories, ","),
		isAdmin && !p.Storefront)
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
