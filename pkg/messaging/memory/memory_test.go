package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := b.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "notifications", map[string]string{"type": "appointment.booked"}))
	require.NoError(t, b.Publish(ctx, "other", map[string]string{"type": "ignored"}))

	select {
	case payload := <-msgs:
		assert.JSONEq(t, `{"type":"appointment.booked"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case payload := <-msgs:
		t.Fatalf("unexpected message %s", payload)
	default:
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := b.Subscribe(ctx, "notifications")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestClosedBrokerRejectsPublish(t *testing.T) {
	b := NewBroker()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), "notifications", "x"))
}
