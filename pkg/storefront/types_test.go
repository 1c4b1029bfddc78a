package storefront

import (
	"encoding/json"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The package is imported from outside this module, so its non-test
// files may not reach into internal/.
func TestNoInternalImports(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotContains(t, path, "/internal", "%s imports %s", name, path)
		}
	}
}

func TestOrderDecodesServerJSON(t *testing.T) {
	user, product := primitive.NewObjectID(), primitive.NewObjectID()
	server := models.Order{
		ID:          primitive.NewObjectID(),
		User:        user,
		Items:       []models.OrderItem{{Product: product, Title: "Lamp", Quantity: 2, Price: 90}},
		Address:     []models.Address{{User: user, City: "Pune", Type: models.AddressHome}},
		Total:       180,
		PaymentMode: orders.PaymentCOD,
		Status:      orders.StatusPending,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	data, err := json.Marshal(server)
	require.NoError(t, err)

	var got Order
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, server.ID.Hex(), got.ID)
	assert.Equal(t, user.Hex(), got.User)
	require.Len(t, got.Items, 1)
	assert.Equal(t, product.Hex(), got.Items[0].Product)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "Pune", got.Address[0].City)
	assert.Equal(t, string(orders.PaymentCOD), got.PaymentMode)
	assert.Equal(t, string(orders.StatusPending), got.Status)
	assert.True(t, server.CreatedAt.Equal(got.CreatedAt))
}

func TestOrderRequestShape(t *testing.T) {
	data, err := json.Marshal(OrderRequest{
		User:    "u1",
		Items:   []OrderItemRequest{{Product: "p1", Quantity: 2}},
		Address: []Address{{City: "Pune", Type: "home"}},
	})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Contains(t, body, "item")
	assert.NotContains(t, body, "total")
	assert.NotContains(t, body, "paymentMode")
	addr := body["address"].([]any)[0].(map[string]any)
	assert.NotContains(t, addr, "_id")
	assert.NotContains(t, addr, "user")
}
