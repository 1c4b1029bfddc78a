package user

import (
	"net/http"
	"strconv"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc services.IUserService
}

func NewUserHandler(svc services.IUserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /users?excludeAdmins=true.
func (h *UserHandler) List(c *gin.Context) {
	exclude := false
	if v := c.Query("excludeAdmins"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			handlers.RespondError(c, apperr.Validation("Invalid excludeAdmins flag %q", v))
			return
		}
		exclude = b
	}
	users, err := h.svc.List(c.Request.Context(), exclude)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	id, ok := handlers.PathID(c, "id", "user")
	if !ok {
		return
	}
	var patch models.UserPatch
	if !handlers.BindJSON(c, &patch) {
		return
	}
	user, err := h.svc.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ToggleStatus handles PATCH /users/:id/toggle-status.
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.svc.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
