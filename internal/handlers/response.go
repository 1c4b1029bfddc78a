// Package handlers holds the helpers shared by the HTTP handlers in its
// sub-packages.
package handlers

import (
	"strconv"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/middleware"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const TotalCountHeader = "X-Total-Count"

// RespondError writes {"message": ...} with the status matching err.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.Status(err), gin.H{"message": apperr.PublicMessage(err)})
}

// BindJSON decodes the body into dst or answers 400.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

// Actor returns the authenticated caller or answers 401.
func Actor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		RespondError(c, apperr.Unauthorized("Token missing, please login again"))
		return services.Actor{}, false
	}
	return actor, true
}

// PathID parses the named path parameter as an ObjectID or answers 400.
func PathID(c *gin.Context, param, what string) (primitive.ObjectID, bool) {
	id, err := services.ParseID(c.Param(param), what)
	if err != nil {
		RespondError(c, err)
		return id, false
	}
	return id, true
}

func SetTotalCount(c *gin.Context, total int64) {
	c.Header(TotalCountHeader, strconv.FormatInt(total, 10))
}
