package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := "INSERT INTO audit_logs (" + columns("", auditCols) + ") VALUES (" + placeholders(len(auditCols)) + ")"
	_, err := r.exec(ctx, query,
		log.ID, log.UserID, log.Action, log.EntityType, log.EntityID, changesArg(log.Changes),
		log.IPAddress, log.UserAgent, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, f model.AuditFilters, page model.Page) ([]*model.AuditLog, int, error) {
	var w where
	if f.UserID != nil {
		w.add("user_id = ?", *f.UserID)
	}
	if f.EntityType != "" {
		w.add("entity_type = ?", f.EntityType)
	}
	if f.Action != "" {
		w.add("action = ?", f.Action)
	}
	if !f.Range.From.IsZero() {
		w.add("created_at >= ?", f.Range.From)
	}
	if !f.Range.To.IsZero() {
		w.add("created_at < ?", f.Range.To)
	}

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM audit_logs"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []*model.AuditLog
	query := "SELECT " + columns("", auditCols) + " FROM audit_logs" + w.String() + " ORDER BY created_at DESC" + limit(page)
	if err := r.selectAll(ctx, &logs, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// Cleanup removes entries older than before and returns how many were deleted.
func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.exec(ctx, "DELETE FROM audit_logs WHERE created_at < ?", before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return result.RowsAffected()
}

// changesArg sends the JSON document as text; lib/pq would encode raw bytes as bytea.
func changesArg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
