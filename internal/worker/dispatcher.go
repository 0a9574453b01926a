package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// Dispatcher turns notification events from the broker into emails.
type Dispatcher struct {
	broker  messaging.Broker
	sender  email.Sender
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewDispatcher(broker messaging.Broker, sender email.Sender, breaker *circuitbreaker.CircuitBreaker, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		broker:  broker,
		sender:  sender,
		breaker: breaker,
		metrics: m,
		logger:  logger.Named("dispatcher"),
	}
}

// Run consumes the notification channel until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	msgs, err := d.broker.Subscribe(ctx, model.NotificationChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.NotificationChannel, err)
	}

	d.logger.Info("dispatcher started", zap.String("channel", model.NotificationChannel))
	for payload := range msgs {
		if err := d.Deliver(ctx, payload); err != nil {
			d.logger.Error("notification delivery failed", zap.Error(err))
		}
	}
	d.logger.Info("dispatcher stopped")
	return nil
}

// Deliver sends one email per recipient of the encoded event. Recipients
// without an address are skipped; a failed send does not stop the rest.
func (d *Dispatcher) Deliver(ctx context.Context, payload []byte) error {
	var evt model.NotificationEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}

	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.NotificationLatency.Observe(time.Since(start).Seconds())
		}
	}()

	body := Render(evt)
	var failed int
	for _, to := range evt.Recipients {
		if to.Email == "" {
			continue
		}
		err := d.breaker.Execute(func() error {
			return d.sender.Send(ctx, to.Email, evt.Subject, body)
		})
		if d.metrics != nil {
			d.metrics.NotificationsSent.WithLabelValues(evt.Type, metrics.Status(err)).Inc()
		}
		if err != nil {
			failed++
			d.logger.Warn("email not sent",
				zap.Error(err),
				zap.String("type", evt.Type),
				zap.Stringer("event_id", evt.ID),
				zap.Stringer("user_id", to.UserID),
				zap.String("breaker", d.breaker.State()),
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to deliver %s to %d of %d recipients", evt.Type, failed, len(evt.Recipients))
	}
	return nil
}

// Render builds the plain-text email body. Data keys are listed sorted.
func Render(evt model.NotificationEvent) string {
	var b strings.Builder
	b.WriteString(evt.Subject)
	b.WriteString("\n\n")

	keys := make([]string, 0, len(evt.Data))
	for k := range evt.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", strings.ReplaceAll(k, "_", " "), evt.Data[k])
	}

	fmt.Fprintf(&b, "\nReference: %s\nSent: %s\n", evt.EntityID, evt.OccurredAt.Format(time.RFC1123))
	return b.String()
}
