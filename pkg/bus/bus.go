package bus

import (
	"context"
	"errors"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// Predefined errors for bus adapters.
var (
	// ErrBusClosed is returned when publishing or subscribing on a closed bus.
	ErrBusClosed = errors.New("change bus closed")

	// ErrBusUnavailable wraps infrastructure failures from the transport.
	ErrBusUnavailable = errors.New("change bus unavailable")
)

// Handler receives change events. Handlers run on the bus's delivery
// goroutine and must return quickly; they must not assume ordering relative
// to other subscribers.
type Handler func(event flag.Event)

// Bus carries flag change notifications between processes. Delivery is
// best-effort and at-most-once: the bus is a latency optimization layered
// over the periodic reload, never the consistency mechanism. Malformed
// payloads are dropped with a logged warning and never crash a subscriber.
type Bus interface {
	// Publish sends an event to all subscribers on the logical channel.
	Publish(ctx context.Context, event flag.Event) error

	// Subscribe registers a handler and returns a function that removes it.
	// The subscription also ends when ctx is cancelled.
	Subscribe(ctx context.Context, handler Handler) (func(), error)

	// Close tears down all subscriptions and releases transport resources.
	Close() error
}
