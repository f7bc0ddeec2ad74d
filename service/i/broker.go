package i

import "context"

// MessageHandler is called for every message delivered on a subscribed topic.
// Implementations must return quickly; heavy work belongs on another goroutine.
type MessageHandler func(topic string, payload []byte)

// Broker is a publish/subscribe transport.
type Broker interface {
	// Publish sends payload on topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers h for messages on topic.
	Subscribe(ctx context.Context, topic string, h MessageHandler) error

	// Close releases the connection and stops every subscription.
	Close() error
}
