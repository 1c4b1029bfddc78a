package utils

import (
	"testing"

	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrderStatusEmail(t *testing.T) {
	order := models.Order{
		ID:     primitive.NewObjectID(),
		Status: orders.StatusDispatched,
		Total:  340,
		Items: []models.OrderItem{
			{Product: primitive.NewObjectID(), Title: "<b>Phone</b>", Quantity: 2, Price: 170},
		},
	}

	subject, body := OrderStatusEmail(order, "Ada")

	assert.Equal(t, "Your order has been dispatched", subject)
	assert.Contains(t, body, order.ID.Hex())
	assert.Contains(t, body, "&lt;b&gt;Phone&lt;/b&gt;")
	assert.Contains(t, body, "Total: 340.00")
	assert.NotContains(t, body, "<b>Phone</b>")
}

func TestWelcomeEmailEscapesName(t *testing.T) {
	_, body := WelcomeEmail("<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
