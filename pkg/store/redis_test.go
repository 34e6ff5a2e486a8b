package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/flag"
	"github.com/dmitrymomot/flagkit/pkg/store"
)

func newRedisStore(t *testing.T) *store.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.NewRedisStore(client)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("GetMissingReturnsNotFound", func(t *testing.T) {
		t.Parallel()
		s := newRedisStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("SetAndGetRoundTrip", func(t *testing.T) {
		t.Parallel()
		s := newRedisStore(t)

		record := &flag.Flag{
			Key:               "checkout",
			Enabled:           true,
			RolloutPercentage: flag.Percentage(25),
			TargetingRules: []flag.TargetingRule{
				{Attribute: "role", Operator: flag.OpIn, Value: []any{"admin"}},
			},
			Variants: []flag.Variant{
				{Key: "A", Value: "layout-a", Weight: 1},
			},
			Tags: []string{"beta"},
		}
		require.NoError(t, s.Set(ctx, record))

		got, err := s.Get(ctx, "checkout")
		require.NoError(t, err)
		assert.Equal(t, record.Key, got.Key)
		assert.Equal(t, 25, *got.RolloutPercentage)
		assert.Equal(t, record.TargetingRules, got.TargetingRules)
		assert.Equal(t, record.Variants, got.Variants)
		assert.Equal(t, record.Tags, got.Tags)
	})

	t.Run("SetRejectsInvalidRecords", func(t *testing.T) {
		t.Parallel()
		s := newRedisStore(t)
		assert.ErrorIs(t, s.Set(ctx, &flag.Flag{Key: "x", RolloutPercentage: flag.Percentage(200)}), flag.ErrInvalidFlag)
	})

	t.Run("Delete", func(t *testing.T) {
		t.Parallel()
		s := newRedisStore(t)
		require.NoError(t, s.Set(ctx, &flag.Flag{Key: "k"}))

		existed, err := s.Delete(ctx, "k")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = s.Delete(ctx, "k")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("ListAll", func(t *testing.T) {
		t.Parallel()
		s := newRedisStore(t)
		require.NoError(t, s.Set(ctx, &flag.Flag{Key: "a"}))
		require.NoError(t, s.Set(ctx, &flag.Flag{Key: "b"}))

		records, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("ListAllSkipsCorruptFields", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		s := store.NewRedisStore(client)

		require.NoError(t, s.Set(ctx, &flag.Flag{Key: "good"}))
		mr.HSet(store.DefaultRedisKey, "bad", "{not json")

		records, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "good", records[0].Key)
	})

	t.Run("CustomHashKey", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		s := store.NewRedisStore(client, store.WithRedisKey("custom:flags"))

		require.NoError(t, s.Set(ctx, &flag.Flag{Key: "k"}))
		assert.True(t, mr.Exists("custom:flags"))
	})
}
