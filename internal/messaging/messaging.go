package messaging

import "context"

// Publisher defines an interface for publishing domain events to a
// message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber defines an interface for subscribing to a message topic.
type Subscriber interface {
	// Consume blocks until ctx is cancelled, calling handler for each
	// message. Handler errors are logged and the message is skipped.
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
}
