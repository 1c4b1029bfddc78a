package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"emporium_back_end/internal/catalog"
	"emporium_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog"
)

// ErrSearchDisabled means no search backend is configured.
var ErrSearchDisabled = errors.New("search index not configured")

// ProductIndex is the full-text side of the catalog.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Search(ctx context.Context, text string, size int) ([]string, error)
}

// searchDoc is the indexed shape. Elasticsearch reserves _id.
type searchDoc struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Brand              string  `json:"brand"`
	Category           string  `json:"category"`
	IsDeleted          bool    `json:"isDeleted"`
}

type ElasticProductIndex struct {
	client *elasticsearch.Client
	index  string
	log    zerolog.Logger
}

func NewElasticProductIndex(client *elasticsearch.Client, index string, log zerolog.Logger) *ElasticProductIndex {
	return &ElasticProductIndex{client: client, index: index, log: log}
}

// Index upserts p. Deleted products stay indexed with isDeleted set so
// an undelete only needs another Index call.
func (e *ElasticProductIndex) Index(ctx context.Context, p models.Product) error {
	if e == nil || e.client == nil {
		return ErrSearchDisabled
	}
	data, err := json.Marshal(searchDoc{
		ID:                 p.ID.Hex(),
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Brand:              p.Brand.Hex(),
		Category:           p.Category.Hex(),
		IsDeleted:          p.IsDeleted,
	})
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID.Hex(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product %s: %s", p.ID.Hex(), res.String())
	}
	e.log.Debug().Str("product", p.ID.Hex()).Msg("product indexed")
	return nil
}

// Search returns matching product ids ordered by relevance.
func (e *ElasticProductIndex) Search(ctx context.Context, text string, size int) ([]string, error) {
	if e == nil || e.client == nil {
		return nil, ErrSearchDisabled
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(catalog.SearchQuery(text, size)); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source searchDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return ids, nil
}
