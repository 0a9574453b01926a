package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// AuditCleanupWorker removes audit rows older than the retention window.
type AuditCleanupWorker struct {
	repo            repository.AuditRepository
	retention       time.Duration
	cleanupInterval time.Duration
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
}

func NewAuditCleanupWorker(repo repository.AuditRepository, retention, cleanupInterval time.Duration, m *metrics.Metrics, logger *zap.Logger) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		repo:            repo,
		retention:       retention,
		cleanupInterval: cleanupInterval,
		metrics:         m,
		logger:          logger.Named("audit_cleanup"),
		now:             time.Now,
	}
}

// Start runs one pass immediately, then one per interval until ctx is done.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		if _, err := w.Cleanup(ctx); err != nil {
			w.logger.Error("audit cleanup failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *AuditCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)

	rows, err := w.repo.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	if w.metrics != nil {
		w.metrics.AuditLogsCleaned.Add(float64(rows))
	}

	w.logger.Info("cleaned up audit logs", zap.Int64("rows", rows), zap.Time("cutoff", cutoff))
	return rows, nil
}
