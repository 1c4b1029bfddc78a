package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after AuthRequired.
func RequireAdmin(c *gin.Context) {
	if !c.GetBool(ContextIsAdmin) {
		abort(c, http.StatusForbidden, "Admin access required")
		return
	}
	c.Next()
}
