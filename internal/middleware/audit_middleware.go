package middleware

import (
	"net/http"

	"emporium_back_end/internal/models"
	"emporium_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuditCriticalActions records the outcome of an admin or auth action
// once the handler has run.
func AuditCriticalActions(auditor *utils.Auditor, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		entry := models.AuditLog{
			UserID:     c.GetString(ContextUserID),
			UserEmail:  c.GetString(ContextEmail),
			Action:     action,
			Resource:   resource,
			ResourceID: c.Param("id"),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Success:    status < http.StatusBadRequest,
			RequestID:  c.GetString(ContextRequestID),
		}
		if !entry.Success {
			if last := c.Errors.Last(); last != nil {
				entry.ErrorMsg = last.Error()
			} else {
				entry.ErrorMsg = http.StatusText(status)
			}
		}
		auditor.Record(entry)
	}
}
