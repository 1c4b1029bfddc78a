package product

import (
	"net/http"

	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// NamedHandler serves /brands and /categories.
type NamedHandler struct {
	svc services.INamedService
}

func NewNamedHandler(svc services.INamedService) *NamedHandler {
	return &NamedHandler{svc: svc}
}

func (h *NamedHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if out == nil {
		out = []models.Named{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *NamedHandler) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if !handlers.BindJSON(c, &body) {
		return
	}
	out, err := h.svc.Create(c.Request.Context(), body.Name)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
