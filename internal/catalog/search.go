package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"emporium_back_end/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxSearchResults = 50
	MaxSearchRunes   = 200
)

// SearchQuery builds the Elasticsearch body for a full-text product search.
func SearchQuery(text string, size int) map[string]any {
	if size <= 0 || size > MaxSearchResults {
		size = MaxSearchResults
	}
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     text,
						"fields":    []string{"title^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"isDeleted": false}},
				},
			},
		},
	}
}

// SearchFallbackFilter matches titles case-insensitively in Mongo.
func SearchFallbackFilter(text string) bson.M {
	return bson.M{
		"title":     primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"},
		"isDeleted": bson.M{"$ne": true},
	}
}

// NormalizeSearch trims the q parameter and rejects empty input.
func NormalizeSearch(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", apperr.Validation("Search query is required")
	}
	if !utf8.ValidString(q) {
		return "", apperr.Validation("Search query must be valid UTF-8")
	}
	if utf8.RuneCountInString(q) > MaxSearchRunes {
		q = string([]rune(q)[:MaxSearchRunes])
	}
	return q, nil
}
