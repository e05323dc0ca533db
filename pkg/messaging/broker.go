package messaging

import (
	"context"
)

// Broker is the outbound event transport. The outbox processor is its
// only producer; consumers subscribe per event type.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
