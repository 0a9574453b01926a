package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	// Publish JSON-encodes message onto channel.
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe streams raw payloads until ctx is done; the channel is then closed.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
