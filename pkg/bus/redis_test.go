package bus_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/bus"
	"github.com/dmitrymomot/flagkit/pkg/flag"
)

func newRedisBus(t *testing.T, opts ...bus.RedisBusOption) (*bus.RedisBus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := bus.NewRedisBus(client, opts...)
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

func TestRedisBus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("PublishReachesSubscriber", func(t *testing.T) {
		t.Parallel()
		b, _ := newRedisBus(t)

		received := make(chan flag.Event, 1)
		unsubscribe, err := b.Subscribe(ctx, func(e flag.Event) { received <- e })
		require.NoError(t, err)
		defer unsubscribe()

		event := flag.Event{
			ID:     "evt-1",
			Type:   flag.EventCreated,
			Record: &flag.Flag{Key: "dark-mode", Enabled: true},
			Origin: "origin-a",
		}
		// The subscriber attaches asynchronously; retry until delivery.
		require.Eventually(t, func() bool {
			require.NoError(t, b.Publish(ctx, event))
			select {
			case got := <-received:
				assert.Equal(t, "evt-1", got.ID)
				assert.Equal(t, flag.EventCreated, got.Type)
				require.NotNil(t, got.Record)
				assert.Equal(t, "dark-mode", got.Record.Key)
				assert.Equal(t, "origin-a", got.Origin)
				return true
			default:
				return false
			}
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("MalformedPayloadIsDropped", func(t *testing.T) {
		t.Parallel()
		b, mr := newRedisBus(t)

		var count atomic.Int32
		unsubscribe, err := b.Subscribe(ctx, func(flag.Event) { count.Add(1) })
		require.NoError(t, err)
		defer unsubscribe()

		// Garbage and structurally invalid events must not reach the handler
		// or terminate the listener.
		require.Eventually(t, func() bool {
			mr.Publish(bus.DefaultRedisChannel, "{not json")
			mr.Publish(bus.DefaultRedisChannel, `{"type":"bogus"}`)
			require.NoError(t, b.Publish(ctx, flag.Event{
				ID:     "evt-2",
				Type:   flag.EventUpdated,
				Record: &flag.Flag{Key: "dark-mode"},
			}))
			return count.Load() > 0
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("CustomChannel", func(t *testing.T) {
		t.Parallel()
		b, _ := newRedisBus(t, bus.WithRedisChannel("custom:changes"))

		received := make(chan struct{}, 8)
		unsubscribe, err := b.Subscribe(ctx, func(flag.Event) { received <- struct{}{} })
		require.NoError(t, err)
		defer unsubscribe()

		require.Eventually(t, func() bool {
			require.NoError(t, b.Publish(ctx, flag.Event{
				ID:     "evt-3",
				Type:   flag.EventDeleted,
				Record: &flag.Flag{Key: "dark-mode"},
			}))
			select {
			case <-received:
				return true
			default:
				return false
			}
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("ContextCancellationEndsSubscription", func(t *testing.T) {
		t.Parallel()
		b, _ := newRedisBus(t)

		subCtx, cancel := context.WithCancel(ctx)
		var count atomic.Int32
		unsubscribe, err := b.Subscribe(subCtx, func(flag.Event) { count.Add(1) })
		require.NoError(t, err)

		// Confirm delivery before cancelling so the listener is attached.
		require.Eventually(t, func() bool {
			require.NoError(t, b.Publish(ctx, flag.Event{
				ID:     "evt-4",
				Type:   flag.EventUpdated,
				Record: &flag.Flag{Key: "dark-mode"},
			}))
			return count.Load() > 0
		}, 2*time.Second, 20*time.Millisecond)

		cancel()
		time.Sleep(100 * time.Millisecond)
		delivered := count.Load()

		require.NoError(t, b.Publish(ctx, flag.Event{
			ID:     "evt-5",
			Type:   flag.EventUpdated,
			Record: &flag.Flag{Key: "dark-mode"},
		}))
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, delivered, count.Load())

		// The cancelled subscription already deregistered itself; a late
		// unsubscribe and Close must both be clean no-ops over it.
		unsubscribe()
		require.NoError(t, b.Close())
	})

	t.Run("PublishAfterCloseFails", func(t *testing.T) {
		t.Parallel()
		b, _ := newRedisBus(t)
		require.NoError(t, b.Close())

		assert.ErrorIs(t, b.Publish(ctx, flag.Event{
			Type:   flag.EventUpdated,
			Record: &flag.Flag{Key: "dark-mode"},
		}), bus.ErrBusClosed)
		_, err := b.Subscribe(ctx, func(flag.Event) {})
		assert.ErrorIs(t, err, bus.ErrBusClosed)
	})
}
