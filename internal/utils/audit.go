package utils

import (
	"context"
	"strings"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog"
)

// Audit actions.
const (
	ActionProductCreate   = "product.create"
	ActionProductUpdate   = "product.update"
	ActionProductDelete   = "product.delete"
	ActionProductUndelete = "product.undelete"
	ActionProductImage    = "product.image"

	ActionOrderCreate = "order.create"
	ActionOrderStatus = "order.status"

	ActionUserUpdate = "user.update"
	ActionUserToggle = "user.toggle_status"

	ActionBrandCreate    = "brand.create"
	ActionCategoryCreate = "category.create"

	ActionSignup = "auth.signup"
	ActionLogin  = "auth.login"
	ActionLogout = "auth.logout"
)

// Audit resources.
const (
	ResourceProduct  = "product"
	ResourceOrder    = "order"
	ResourceUser     = "user"
	ResourceBrand    = "brand"
	ResourceCategory = "category"
	ResourceAuth     = "auth"
)

const insertAuditLog = `
	INSERT INTO audit_logs (
		id, user_id, user_email, action, resource, resource_id,
		new_value, ip_address, user_agent, success, error_msg,
		request_id, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectAuditLogs = `
	SELECT id, user_id, user_email, action, resource, resource_id,
	       new_value, ip_address, user_agent, success, error_msg,
	       request_id, timestamp
	FROM audit_logs`

// AuditFilter narrows List. Empty fields match everything.
type AuditFilter struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Success    *bool
	Limit      int
}

// Auditor writes audit rows to Scylla in the background. Without a
// session entries only go to the logger.
type Auditor struct {
	session *gocql.Session
	log     zerolog.Logger
	timeout time.Duration
}

func NewAuditor(session *gocql.Session, log zerolog.Logger) *Auditor {
	return &Auditor{session: session, log: log, timeout: 5 * time.Second}
}

// Record stores entry asynchronously. It never blocks the request.
func (a *Auditor) Record(entry models.AuditLog) {
	if a == nil {
		return
	}
	if entry.ID == (gocql.UUID{}) {
		entry.ID = gocql.TimeUUID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	a.log.Info().
		Str("action", entry.Action).
		Str("resource", entry.Resource).
		Str("resource_id", entry.ResourceID).
		Str("user_id", entry.UserID).
		Bool("success", entry.Success).
		Msg("audit")

	if a.session == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.write(ctx, entry); err != nil {
			a.log.Error().Err(err).Str("action", entry.Action).Msg("audit log not stored")
		}
	}()
}

func (a *Auditor) write(ctx context.Context, e models.AuditLog) error {
	return a.session.Query(insertAuditLog,
		e.ID, e.UserID, e.UserEmail, e.Action, e.Resource, e.ResourceID,
		e.NewValue, e.IPAddress, e.UserAgent, e.Success, e.ErrorMsg,
		e.RequestID, e.Timestamp,
	).WithContext(ctx).Exec()
}

// List reads audit rows matching f, at most f.Limit of them.
func (a *Auditor) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	if a == nil || a.session == nil {
		return nil, apperr.Unavailable("Audit log storage is not configured")
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}

	var conds []string
	var args []any
	add := func(cond string, v any) {
		conds = append(conds, cond)
		args = append(args, v)
	}
	if f.UserID != "" {
		add("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		add("action = ?", f.Action)
	}
	if f.Resource != "" {
		add("resource = ?", f.Resource)
	}
	if f.ResourceID != "" {
		add("resource_id = ?", f.ResourceID)
	}
	if f.Success != nil {
		add("success = ?", *f.Success)
	}

	query := selectAuditLogs
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " LIMIT ?"
	args = append(args, f.Limit)
	if len(conds) > 0 {
		query += " ALLOW FILTERING"
	}

	iter := a.session.Query(query, args...).WithContext(ctx).Iter()
	logs := make([]models.AuditLog, 0, f.Limit)
	var e models.AuditLog
	for iter.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.Resource, &e.ResourceID,
		&e.NewValue, &e.IPAddress, &e.UserAgent, &e.Success, &e.ErrorMsg,
		&e.RequestID, &e.Timestamp) {
		logs = append(logs, e)
	}
	if err := iter.Close(); err != nil {
		return nil, apperr.Internal("Failed to read audit logs", err)
	}
	return logs, nil
}
