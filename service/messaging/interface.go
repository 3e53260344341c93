package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by Consume once the queue is closed
var ErrClosed = errors.New("queue closed")

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available, ctx is done or the queue is closed
	Consume(ctx context.Context) (Message[T], error)

	// Close releases consumers and stops pending redeliveries
	Close() error
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message id
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message; the queue redelivers it
	// until its retry limit is reached
	Nack(err error) error
}
