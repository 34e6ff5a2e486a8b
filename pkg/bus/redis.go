package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// DefaultRedisChannel is the pub/sub channel change events travel on unless
// overridden.
const DefaultRedisChannel = "flagkit:changes"

// RedisBus carries change events over a single Redis pub/sub channel as
// JSON. go-redis reconnects dropped subscriptions transparently; events
// published while a subscriber is down are lost, which the engine's
// periodic reload backstops.
type RedisBus struct {
	client  redis.UniversalClient
	channel string
	log     *slog.Logger

	mu     sync.Mutex
	subs   map[*redisSubscription]struct{}
	closed bool
}

type redisSubscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
}

// RedisBusOption configures a RedisBus.
type RedisBusOption func(*RedisBus)

// WithRedisChannel overrides the pub/sub channel name.
func WithRedisChannel(name string) RedisBusOption {
	return func(b *RedisBus) {
		if name != "" {
			b.channel = name
		}
	}
}

// WithLogger sets the logger used for dropped-payload warnings.
func WithLogger(log *slog.Logger) RedisBusOption {
	return func(b *RedisBus) {
		if log != nil {
			b.log = log
		}
	}
}

// NewRedisBus creates a Redis-backed change bus. The bus takes ownership of
// the client; Close closes it.
func NewRedisBus(client redis.UniversalClient, opts ...RedisBusOption) *RedisBus {
	b := &RedisBus{
		client:  client,
		channel: DefaultRedisChannel,
		log:     slog.Default(),
		subs:    make(map[*redisSubscription]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBus) Publish(ctx context.Context, event flag.Event) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Join(ErrBusUnavailable, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return errors.Join(ErrBusUnavailable, err)
	}
	return nil
}

// Subscribe starts a background listener delivering decoded events to the
// handler. Malformed payloads are dropped with a warning; the listener loop
// never terminates on bad input, only on unsubscribe, Close, or context
// cancellation.
func (b *RedisBus) Subscribe(ctx context.Context, handler Handler) (func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}

	sub := &redisSubscription{
		pubsub: b.client.Subscribe(ctx, b.channel),
		done:   make(chan struct{}),
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer close(sub.done)
		ch := sub.pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event flag.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn("dropping malformed change event",
						slog.String("channel", b.channel),
						slog.Any("error", err))
					continue
				}
				if !event.Valid() {
					b.log.Warn("dropping invalid change event",
						slog.String("channel", b.channel),
						slog.String("type", string(event.Type)))
					continue
				}
				handler(event)
			case <-ctx.Done():
				b.drop(sub)
				return
			}
		}
	}()

	return func() { b.remove(sub) }, nil
}

// Close tears down every subscription and closes the Redis client.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSubscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	clear(b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.pubsub.Close()
		<-sub.done
	}
	return b.client.Close()
}

func (b *RedisBus) remove(sub *redisSubscription) {
	if !b.drop(sub) {
		return
	}
	<-sub.done
}

// drop deregisters the subscription and closes its PubSub without waiting
// for the listener goroutine, so the goroutine's own cancellation path can
// use it too. Reports whether the subscription was still registered.
func (b *RedisBus) drop(sub *redisSubscription) bool {
	b.mu.Lock()
	if _, ok := b.subs[sub]; !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.subs, sub)
	b.mu.Unlock()

	_ = sub.pubsub.Close()
	return true
}
