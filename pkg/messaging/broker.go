package messaging

import "context"

// Broker is the pub/sub transport abstraction the pipeline is built on.
// The ingestor consumes device events from a subscription channel and the
// command publisher fans device commands back out through Publish. The
// implementation is expected to provide reliable delivery; redelivery of
// messages that failed with a store error is the broker's concern.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
