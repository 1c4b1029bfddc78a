package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/cache"
	"emporium_back_end/internal/catalog"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductCache is the read-through cache in front of the catalog.
type ProductCache interface {
	GetProductPage(ctx context.Context, key string) (*cache.ProductPage, bool)
	SetProductPage(ctx context.Context, key string, page cache.ProductPage) error
	GetProduct(ctx context.Context, id string) (*models.Product, bool)
	SetProduct(ctx context.Context, p *models.Product) error
	InvalidateProduct(ctx context.Context, id string) error
}

// ImageUpload is one file from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

const MaxImageSize = 5 << 20

type IProductService interface {
	List(ctx context.Context, actor Actor, params catalog.ListParams) ([]models.Product, int64, error)
	Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Product, error)
	Search(ctx context.Context, text string) ([]models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Undelete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	AddImage(ctx context.Context, id primitive.ObjectID, img ImageUpload) (*models.Product, error)
}

type ProductService struct {
	products   repository.IProductRepository
	brands     repository.INamedRepository
	categories repository.INamedRepository
	cache      ProductCache
	index      ProductIndex
	images     ImageStore
	log        zerolog.Logger
	timeout    time.Duration
}

func NewProductService(products repository.IProductRepository, brands, categories repository.INamedRepository,
	cache ProductCache, index ProductIndex, images ImageStore, log zerolog.Logger, timeout time.Duration) *ProductService {
	return &ProductService{
		products:   products,
		brands:     brands,
		categories: categories,
		cache:      cache,
		index:      index,
		images:     images,
		log:        log,
		timeout:    timeout,
	}
}

func (s *ProductService) List(ctx context.Context, actor Actor, params catalog.ListParams) ([]models.Product, int64, error) {
	key := params.CacheKey(actor.IsAdmin)
	if page, ok := s.cache.GetProductPage(ctx, key); ok {
		return page.Products, page.Total, nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	products, total, err := s.products.List(ctx, params.ProductFilter(actor.IsAdmin), params.FindOptions())
	if err != nil {
		return nil, 0, storeErr(err, "Product not found")
	}
	if err := s.cache.SetProductPage(ctx, key, cache.ProductPage{Products: products, Total: total}); err != nil {
		s.log.Debug().Err(err).Msg("product page cache write failed")
	}
	return products, total, nil
}

// Get hides deleted products from everyone but admins.
func (s *ProductService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Product, error) {
	p, ok := s.cache.GetProduct(ctx, id.Hex())
	if !ok {
		c, cancel := withTimeout(ctx, s.timeout)
		defer cancel()
		var err error
		p, err = s.products.FindByID(c, id)
		if err != nil {
			return nil, storeErr(err, "Product not found")
		}
		if err := s.cache.SetProduct(c, p); err != nil {
			s.log.Debug().Err(err).Msg("product cache write failed")
		}
	}
	if p.IsDeleted && !actor.IsAdmin {
		return nil, apperr.NotFound("Product not found")
	}
	return p, nil
}

// Search asks the full-text index first and falls back to a title regex.
func (s *ProductService) Search(ctx context.Context, text string) ([]models.Product, error) {
	text, err := catalog.NormalizeSearch(text)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.index.Search(ctx, text, catalog.MaxSearchResults)
	if err == nil {
		return s.byRankedIDs(ctx, ids)
	}
	if !errors.Is(err, ErrSearchDisabled) {
		s.log.Warn().Err(err).Msg("search index failed, falling back to mongo")
	}

	page := catalog.ListParams{Page: 1, Limit: catalog.MaxSearchResults, Paginate: true, SortField: "title"}
	products, _, err := s.products.List(ctx, catalog.SearchFallbackFilter(text), page.FindOptions())
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return products, nil
}

func (s *ProductService) byRankedIDs(ctx context.Context, hexIDs []string) ([]models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	rank := make(map[primitive.ObjectID]int, len(hexIDs))
	for i, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		rank[id] = i
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	found, _, err := s.products.List(ctx, bson.M{"_id": bson.M{"$in": ids}, "isDeleted": bson.M{"$ne": true}}, nil)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	sort.SliceStable(found, func(i, j int) bool {
		return rank[found[i].ID] < rank[found[j].ID]
	})
	return found, nil
}

func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	switch {
	case in.Title == nil || strings.TrimSpace(*in.Title) == "":
		return nil, apperr.Validation("title is required")
	case in.Price == nil:
		return nil, apperr.Validation("price is required")
	case in.StockQuantity == nil:
		return nil, apperr.Validation("stockQuantity is required")
	case in.Brand == nil:
		return nil, apperr.Validation("brand is required")
	case in.Category == nil:
		return nil, apperr.Validation("category is required")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	set, err := s.productFields(ctx, in)
	if err != nil {
		return nil, err
	}

	p := &models.Product{Images: []string{}}
	applyProductFields(p, set)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeErr(err, "Product not found")
	}
	s.afterWrite(ctx, p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in models.ProductInput) (*models.Product, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	set, err := s.productFields(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, apperr.Validation("Nothing to update")
	}

	p, err := s.products.Update(ctx, id, set)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	s.afterWrite(ctx, p)
	return p, nil
}

// Delete is soft: the document stays with isDeleted set.
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.setDeleted(ctx, id, true)
}

func (s *ProductService) Undelete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.setDeleted(ctx, id, false)
}

func (s *ProductService) setDeleted(ctx context.Context, id primitive.ObjectID, deleted bool) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	p, err := s.products.SetDeleted(ctx, id, deleted)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	s.afterWrite(ctx, p)
	return p, nil
}

func (s *ProductService) AddImage(ctx context.Context, id primitive.ObjectID, img ImageUpload) (*models.Product, error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, apperr.Validation("Only image uploads are accepted")
	}
	if img.Size <= 0 || img.Size > MaxImageSize {
		return nil, apperr.Validation("Image must be between 1 byte and 5 MB")
	}

	ctx, cancel := withTimeout(ctx, 4*s.timeout)
	defer cancel()

	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "Product not found")
	}

	url, err := s.images.Upload(ctx, "products/"+id.Hex(), img.Filename, img.Body, img.Size, img.ContentType)
	if errors.Is(err, ErrStorageDisabled) {
		return nil, apperr.Unavailable("Image storage is not configured")
	}
	if err != nil {
		return nil, apperr.Internal("Error uploading image, please try again later", err)
	}

	p, err := s.products.AddImage(ctx, id, url)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	s.afterWrite(ctx, p)
	return p, nil
}

// productFields validates the non-nil fields of in and returns them as
// a $set document.
func (s *ProductService) productFields(ctx context.Context, in models.ProductInput) (bson.M, error) {
	set := bson.M{}
	if in.Title != nil {
		set["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperr.Validation("price must be greater than or equal to 0")
		}
		set["price"] = *in.Price
	}
	if in.DiscountPercentage != nil {
		if *in.DiscountPercentage < 0 || *in.DiscountPercentage > 100 {
			return nil, apperr.Validation("discountPercentage must be between 0 and 100")
		}
		set["discountPercentage"] = *in.DiscountPercentage
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return nil, apperr.Validation("stockQuantity must be greater than or equal to 0")
		}
		set["stockQuantity"] = *in.StockQuantity
	}
	if in.Thumbnail != nil {
		set["thumbnail"] = *in.Thumbnail
	}
	if in.Images != nil {
		images := *in.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}
	if in.Brand != nil {
		id, err := s.existing(ctx, s.brands, *in.Brand, "brand")
		if err != nil {
			return nil, err
		}
		set["brand"] = id
	}
	if in.Category != nil {
		id, err := s.existing(ctx, s.categories, *in.Category, "category")
		if err != nil {
			return nil, err
		}
		set["category"] = id
	}
	return set, nil
}

func (s *ProductService) existing(ctx context.Context, repo repository.INamedRepository, raw, what string) (primitive.ObjectID, error) {
	id, err := ParseID(raw, what)
	if err != nil {
		return id, err
	}
	ok, err := repo.Exists(ctx, id)
	if err != nil {
		return id, storeErr(err, what+" not found")
	}
	if !ok {
		return id, apperr.Validation("Unknown %s %s", what, raw)
	}
	return id, nil
}

func applyProductFields(p *models.Product, set bson.M) {
	if v, ok := set["title"].(string); ok {
		p.Title = v
	}
	if v, ok := set["description"].(string); ok {
		p.Description = v
	}
	if v, ok := set["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := set["discountPercentage"].(float64); ok {
		p.DiscountPercentage = v
	}
	if v, ok := set["stockQuantity"].(int); ok {
		p.StockQuantity = v
	}
	if v, ok := set["thumbnail"].(string); ok {
		p.Thumbnail = v
	}
	if v, ok := set["images"].([]string); ok {
		p.Images = v
	}
	if v, ok := set["brand"].(primitive.ObjectID); ok {
		p.Brand = v
	}
	if v, ok := set["category"].(primitive.ObjectID); ok {
		p.Category = v
	}
}

// afterWrite drops cached copies and refreshes the search index.
func (s *ProductService) afterWrite(ctx context.Context, p *models.Product) {
	if err := s.cache.InvalidateProduct(ctx, p.ID.Hex()); err != nil {
		s.log.Warn().Err(err).Str("product", p.ID.Hex()).Msg("product cache invalidation failed")
	}
	if err := s.index.Index(ctx, *p); err != nil && !errors.Is(err, ErrSearchDisabled) {
		s.log.Warn().Err(err).Str("product", p.ID.Hex()).Msg("product not indexed")
	}
}
