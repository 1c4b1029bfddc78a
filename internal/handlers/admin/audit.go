package admin

import (
	"context"
	"net/http"
	"strconv"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultAuditLimit    = 100
	maxAuditLimit        = 500
	defaultResourceLimit = 50
	maxResourceLimit     = 200
)

type AuditReader interface {
	List(ctx context.Context, f utils.AuditFilter) ([]models.AuditLog, error)
}

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	reader AuditReader
}

func NewAuditHandler(reader AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

// List handles GET /admin/audit-logs?user_id=&action=&resource=&success=&limit=.
func (h *AuditHandler) List(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"), defaultAuditLimit, maxAuditLimit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	f := utils.AuditFilter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Limit:    limit,
	}
	if v := c.Query("success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			handlers.RespondError(c, apperr.Validation("Invalid success flag %q", v))
			return
		}
		f.Success = &b
	}

	logs, err := h.reader.List(c.Request.Context(), f)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
		"filters": gin.H{
			"user_id":  f.UserID,
			"action":   f.Action,
			"resource": f.Resource,
			"success":  c.Query("success"),
			"limit":    limit,
		},
	})
}

// ByResource handles GET /admin/audit-logs/:resource/:resource_id.
func (h *AuditHandler) ByResource(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"), defaultResourceLimit, maxResourceLimit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	resource, resourceID := c.Param("resource"), c.Param("resource_id")

	logs, err := h.reader.List(c.Request.Context(), utils.AuditFilter{
		Resource:   resource,
		ResourceID: resourceID,
		Limit:      limit,
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resource":    resource,
		"resource_id": resourceID,
		"logs":        logs,
		"total":       len(logs),
	})
}

func parseLimit(raw string, def, ceiling int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Validation("Invalid limit %q", raw)
	}
	return min(n, ceiling), nil
}
