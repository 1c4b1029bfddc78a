package middleware

import (
	"emporium_back_end/internal/services"
	"emporium_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Keys set on the gin context by the middleware in this package.
const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextIsAdmin   = "is_admin"
	ContextClaims    = "claims"
	ContextRequestID = "request_id"
)

// CurrentActor returns the authenticated caller set by AuthRequired.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(ContextUserID))
	if err != nil {
		return services.Actor{}, false
	}
	return services.Actor{
		ID:      id,
		Email:   c.GetString(ContextEmail),
		IsAdmin: c.GetBool(ContextIsAdmin),
	}, true
}

// CurrentClaims returns the verified token claims, if any.
func CurrentClaims(c *gin.Context) *utils.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
