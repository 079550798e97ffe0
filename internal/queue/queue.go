package queue

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Acknowledge when the message no longer exists,
// either because it was already acknowledged or because its visibility window
// expired and it was removed elsewhere. Callers treat it as a no-op.
var ErrNotFound = errors.New("message not found")

// Message is one at-least-once delivery of an enqueued payload.
// DeliveryCount starts at 1 and increments on every redelivery, so callers
// can layer a dead-letter policy on top of the queue.
type Message struct {
	ID            string
	Body          []byte
	DeliveryCount int
}

// Queue is a durable, at-least-once buffer with visibility-timeout
// redelivery. Messages may arrive out of publish order and more than once;
// consumers must not assume FIFO or exactly-once delivery.
type Queue interface {
	Name() string

	// Enqueue durably stores the payload before returning and makes it
	// visible to consumers. The returned ID is assigned once and stays
	// stable across redeliveries.
	Enqueue(ctx context.Context, body []byte) (string, error)

	// Poll claims up to max visible messages, hiding each for the queue's
	// visibility timeout. It long-polls up to wait when nothing is visible.
	Poll(ctx context.Context, max int, wait time.Duration) ([]Message, error)

	// Acknowledge permanently removes a processed message. Acknowledging a
	// message that is already gone returns ErrNotFound, never a fatal error.
	Acknowledge(ctx context.Context, messageID string) error
}
