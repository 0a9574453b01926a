package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

// Recorder is what the domain services write audit entries through. Failures
// are logged and never surface to the caller.
type Recorder interface {
	Log(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, changes interface{})
}

type clientKey struct{}

type client struct {
	ip        string
	userAgent string
}

// WithClient stores the caller's address and user agent for later entries.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, client{ip: ip, userAgent: userAgent})
}

type Service struct {
	repo   repository.AuditRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.AuditRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log, now: time.Now}
}

var _ Recorder = (*Service)(nil)

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, changes interface{}) {
	if err := s.write(ctx, actorID, action, entityType, entityID, changes); err != nil {
		s.logger.Error(err, "failed to write audit log",
			"action", action, "entity_type", entityType, "entity_id", entityID.String())
	}
}

func (s *Service) write(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, changes interface{}) error {
	var raw json.RawMessage
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
		raw = b
	}

	c, _ := ctx.Value(clientKey{}).(client)
	entry := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    raw,
		IPAddress:  c.ip,
		UserAgent:  c.userAgent,
		CreatedAt:  s.now(),
	}
	return s.repo.Create(ctx, entry)
}

func (s *Service) List(ctx context.Context, filters model.AuditFilters, page model.Page) ([]*model.AuditLog, int, error) {
	logs, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// Cleanup removes entries created before the cutoff.
func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.Cleanup(ctx, before)
}

// Nop discards entries. Useful in tests.
type Nop struct{}

func (Nop) Log(context.Context, uuid.UUID, string, string, uuid.UUID, interface{}) {}
