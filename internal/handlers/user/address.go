package user

import (
	"net/http"

	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type AddressHandler struct {
	svc services.IAddressService
}

func NewAddressHandler(svc services.IAddressService) *AddressHandler {
	return &AddressHandler{svc: svc}
}

func (h *AddressHandler) Create(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	var in services.AddressInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	a, err := h.svc.Create(c.Request.Context(), actor, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListByUser handles GET /address/user/:id.
func (h *AddressHandler) ListByUser(c *gin.Context) {
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

func (h *AddressHandler) Update(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "address")
	if !ok {
		return
	}
	var patch services.AddressPatch
	if !handlers.BindJSON(c, &patch) {
		return
	}
	a, err := h.svc.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AddressHandler) Delete(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "address")
	if !ok {
		return
	}
	a, err := h.svc.Delete(c.Request.Context(), actor, id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
