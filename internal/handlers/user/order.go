package user

import (
	"net/http"

	"emporium_back_end/internal/catalog"
	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc services.IOrderService
}

func NewOrderHandler(svc services.IOrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	var in services.CreateOrderInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	order, err := h.svc.Create(c.Request.Context(), actor, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListByUser handles GET /orders/user/:id, newest first.
func (h *OrderHandler) ListByUser(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	user, ok := handlers.PathID(c, "id", "user")
	if !ok {
		return
	}
	out, err := h.svc.ListByUser(c.Request.Context(), actor, user)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// List handles the admin GET /orders with paging and sorting.
func (h *OrderHandler) List(c *gin.Context) {
	params, err := catalog.ParseOrders(c.Request.URL.Query())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	out, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	handlers.SetTotalCount(c, total)
	c.JSON(http.StatusOK, out)
}

// UpdateStatus handles PUT|PATCH /orders/:id with {"status": ...}.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "order")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !handlers.BindJSON(c, &body) {
		return
	}
	order, err := h.svc.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
