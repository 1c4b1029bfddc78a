package user

import (
	"net/http"

	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	svc services.ICartService
}

func NewCartHandler(svc services.ICartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// Add handles POST /cart. Adding a product twice creates two rows.
func (h *CartHandler) Add(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	var in services.AddToCartInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	item, err := h.svc.Add(c.Request.Context(), actor, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListByUser handles GET /cart/:id where id is the user.
func (h *CartHandler) ListByUser(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	user, ok := handlers.PathID(c, "id", "user")
	if !ok {
		return
	}
	lines, err := h.svc.ListByUser(c.Request.Context(), actor, user)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *CartHandler) Update(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "cart item")
	if !ok {
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !handlers.BindJSON(c, &body) {
		return
	}
	item, err := h.svc.UpdateQuantity(c.Request.Context(), actor, id, body.Quantity)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Delete(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "cart item")
	if !ok {
		return
	}
	item, err := h.svc.Delete(c.Request.Context(), actor, id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Clear handles DELETE /cart/user/:id.
func (h *CartHandler) Clear(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	user, ok := handlers.PathID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.svc.Clear(c.Request.Context(), actor, user); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
