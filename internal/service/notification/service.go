package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// Notifier publishes domain events for out-of-band delivery. Publishing is
// best effort: failures are logged and counted, never returned.
type Notifier interface {
	Notify(ctx context.Context, event model.NotificationEvent)
}

type Service struct {
	broker  messaging.Broker
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(broker messaging.Broker, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{broker: broker, logger: log, metrics: m, now: time.Now}
}

var _ Notifier = (*Service)(nil)

func (s *Service) Notify(ctx context.Context, event model.NotificationEvent) {
	err := s.publish(ctx, &event)
	s.metrics.NotificationsPublished.WithLabelValues(event.Type, metrics.Status(err)).Inc()
	if err != nil {
		s.logger.Error(err, "failed to publish notification",
			"type", event.Type, "entity_id", event.EntityID.String())
	}
}

func (s *Service) publish(ctx context.Context, event *model.NotificationEvent) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if len(event.Recipients) == 0 {
		return nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	return s.broker.Publish(ctx, model.NotificationChannel, event)
}

// RecipientOf addresses a notification to user.
func RecipientOf(user *model.User) model.Recipient {
	return model.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email}
}

// Recorder collects events in memory. Useful in tests.
type Recorder struct {
	Events []model.NotificationEvent
}

func (r *Recorder) Notify(_ context.Context, event model.NotificationEvent) {
	r.Events = append(r.Events, event)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Type
	}
	return types
}
