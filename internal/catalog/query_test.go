package catalog

import (
	"math"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"emporium_back_end/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	brandA    = "64b7f0c2a1b2c3d4e5f60718"
	brandB    = "64b7f0c2a1b2c3d4e5f60719"
	categoryA = "64b7f0c2a1b2c3d4e5f6071a"
)

func mustParse(t *testing.T, raw string) ListParams {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	p, err := ParseProducts(q)
	require.NoError(t, err)
	return p
}

func TestParseProducts_Rejects(t *testing.T) {
	cases := map[string]string{
		"non numeric limit": "limit=ten",
		"zero limit":        "limit=0",
		"negative page":     "page=-1&limit=5",
		"unknown sort":      "sort=password",
		"bad order":         "sort=price&order=sideways",
		"bad brand":         "brand=nike",
		"bad category":      "category=" + brandA + "&category=xyz",
		"bad user flag":     "user=maybe",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			q, _ := url.ParseQuery(raw)
			_, err := ParseProducts(q)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestParseProducts_Paging(t *testing.T) {
	p := mustParse(t, "")
	assert.False(t, p.Paginate)

	p = mustParse(t, "page=3")
	assert.True(t, p.Paginate)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = mustParse(t, "limit=500")
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 1, p.Page)

	opts := mustParse(t, "page=2&limit=10").FindOptions()
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.EqualValues(t, 10, *opts.Skip)
	assert.EqualValues(t, 10, *opts.Limit)

	skips := []struct {
		query string
		want  int64
	}{
		{"page=1&limit=100", 0},
		{"page=4&limit=25", 75},
		{"page=100000000000000000&limit=100", math.MaxInt64},
		{"page=9223372036854775807&limit=2", math.MaxInt64},
		{"page=9223372036854775807", math.MaxInt64},
	}
	for _, tc := range skips {
		opts := mustParse(t, tc.query).FindOptions()
		require.NotNil(t, opts.Skip, tc.query)
		assert.Equal(t, tc.want, *opts.Skip, tc.query)
		assert.GreaterOrEqual(t, *opts.Skip, int64(0), tc.query)
	}
}

func TestFindOptions_SortHasTiebreaker(t *testing.T) {
	opts := mustParse(t, "sort=price&order=desc").FindOptions()
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)

	opts = mustParse(t, "sort=title").FindOptions()
	assert.Equal(t, bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}, opts.Sort)

	opts = mustParse(t, "").FindOptions()
	assert.Nil(t, opts.Sort)
	assert.Nil(t, opts.Limit)
}

func TestProductFilter(t *testing.T) {
	a, _ := primitive.ObjectIDFromHex(brandA)
	b, _ := primitive.ObjectIDFromHex(brandB)
	c, _ := primitive.ObjectIDFromHex(categoryA)

	p := mustParse(t, "brand="+brandA+"&brand="+brandB+"&category="+categoryA)
	filter := p.ProductFilter(false)
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{a, b}}, filter["brand"])
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{c}}, filter["category"])
	assert.Equal(t, bson.M{"$ne": true}, filter["isDeleted"])

	p = mustParse(t, "brand="+brandA+","+brandB)
	assert.Len(t, p.Brands, 2)
}

func TestProductFilter_DeletedVisibility(t *testing.T) {
	p := mustParse(t, "")
	assert.Contains(t, p.ProductFilter(false), "isDeleted")
	assert.NotContains(t, p.ProductFilter(true), "isDeleted")

	p = mustParse(t, "user=true")
	assert.Contains(t, p.ProductFilter(true), "isDeleted")
}

func TestCacheKey(t *testing.T) {
	x := mustParse(t, "brand="+brandA+"&brand="+brandB+"&sort=price")
	y := mustParse(t, "brand="+brandB+"&brand="+brandA+"&sort=price")
	assert.Equal(t, x.CacheKey(false), y.CacheKey(false))
	assert.NotEqual(t, x.CacheKey(false), x.CacheKey(true))
}

func TestParseOrders(t *testing.T) {
	q, _ := url.ParseQuery("sort=total&order=desc&page=2&limit=5")
	p, err := ParseOrders(q)
	require.NoError(t, err)
	assert.Equal(t, "total", p.SortField)
	assert.True(t, p.Desc)

	q, _ = url.ParseQuery("sort=price")
	_, err = ParseOrders(q)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	q, err := NormalizeSearch("  phone ")
	require.NoError(t, err)
	assert.Equal(t, "phone", q)

	_, err = NormalizeSearch("   ")
	assert.Error(t, err)

	long, err := NormalizeSearch(strings.Repeat("€", 150) + strings.Repeat("é", 100))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, MaxSearchRunes, utf8.RuneCountInString(long))
	assert.Equal(t, strings.Repeat("€", 150)+strings.Repeat("é", 50), long)

	_, err = NormalizeSearch("bad\xff")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	body := SearchQuery("phone", 0)
	assert.Equal(t, MaxSearchResults, body["size"])

	filter := SearchFallbackFilter("a.b")
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, filter["title"])
}
