package engine

import (
	"sync"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// ChangeHandler receives flag change events applied by this engine, both
// local mutations and notifications from other processes. Handlers run
// synchronously on the applying goroutine and must not assume ordering
// relative to other handlers.
type ChangeHandler func(event flag.Event)

// notifier is an explicit in-process subscription registry, keyed by event
// kind. It replaces ad-hoc emitter callbacks with subscribe/unsubscribe
// pairs and deterministic synchronous delivery.
type notifier struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[flag.EventType]map[int]ChangeHandler
}

// OnChange registers a handler for one event kind and returns the function
// that removes it. Unsubscribing is idempotent.
func (e *Engine) OnChange(kind flag.EventType, handler ChangeHandler) func() {
	return e.notify.subscribe(kind, handler)
}

func (n *notifier) subscribe(kind flag.EventType, handler ChangeHandler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.handlers == nil {
		n.handlers = make(map[flag.EventType]map[int]ChangeHandler)
	}
	if n.handlers[kind] == nil {
		n.handlers[kind] = make(map[int]ChangeHandler)
	}
	id := n.nextID
	n.nextID++
	n.handlers[kind][id] = handler

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.handlers[kind], id)
	}
}

func (n *notifier) dispatch(event flag.Event) {
	n.mu.RLock()
	registered := n.handlers[event.Type]
	handlers := make([]ChangeHandler, 0, len(registered))
	for _, h := range registered {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
