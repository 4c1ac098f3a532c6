package publisher

import "context"

// Publisher represents a service for publishing exported records
type Publisher interface {
	// Publish appends one message under key
	Publish(ctx context.Context, key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}

// Nop discards every message
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, string, []byte) error { return nil }

// Close implements Publisher
func (Nop) Close() error { return nil }
