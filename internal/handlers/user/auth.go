package user

import (
	"net/http"
	"time"

	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/middleware"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc          services.IAuthService
	cookieSecure bool
}

func NewAuthHandler(svc services.IAuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookieSecure: cookieSecure}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var in services.SignupInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	user, session, err := h.svc.Signup(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	h.setCookie(c, session)
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	user, session, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	h.setCookie(c, session)
	c.JSON(http.StatusOK, user)
}

// Logout clears the cookie even when the token is already invalid.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) CheckAuth(c *gin.Context) {
	actor, ok := handlers.Actor(c)
	if !ok {
		return
	}
	user, err := h.svc.CheckAuth(c.Request.Context(), actor)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setCookie(c *gin.Context, session *services.Session) {
	maxAge := 0
	if session.Claims != nil && session.Claims.ExpiresAt != nil {
		maxAge = int(time.Until(session.Claims.ExpiresAt.Time).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, session.Token, maxAge, "/", "", h.cookieSecure, true)
}
