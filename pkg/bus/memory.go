package bus

import (
	"context"
	"sync"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// MemoryBus is an in-process Bus for tests and single-process deployments.
// Each subscriber drains a buffered channel on its own goroutine; when a
// buffer is full the event is dropped for that subscriber rather than
// blocking the publisher, matching the at-most-once contract.
type MemoryBus struct {
	subscribers map[*memorySubscriber]struct{}
	bufferSize  int
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

type memorySubscriber struct {
	events  chan flag.Event
	handler Handler
	once    sync.Once
}

func (s *memorySubscriber) close() {
	s.once.Do(func() { close(s.events) })
}

// NewMemoryBus creates an in-process bus. bufferSize sets each subscriber's
// channel buffer; a minimum of 1 is enforced so sends stay non-blocking.
func NewMemoryBus(bufferSize int) *MemoryBus {
	return &MemoryBus{
		subscribers: make(map[*memorySubscriber]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

func (b *MemoryBus) Publish(_ context.Context, event flag.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	for sub := range b.subscribers {
		select {
		case sub.events <- event:
		default:
			// Slow consumer: drop rather than block the publisher.
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	sub := &memorySubscriber{
		events:  make(chan flag.Event, b.bufferSize),
		handler: handler,
	}
	b.subscribers[sub] = struct{}{}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for event := range sub.events {
			sub.handler(event)
		}
	}()

	if ctx.Done() != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-b.done:
			}
		}()
	}

	return func() { b.unsubscribe(sub) }, nil
}

// Close tears down every subscription and waits for in-flight deliveries.
// It is safe to call multiple times.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	for sub := range b.subscribers {
		sub.close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *MemoryBus) unsubscribe(sub *memorySubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	sub.close()
}
