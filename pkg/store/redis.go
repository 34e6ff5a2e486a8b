package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// DefaultRedisKey is the Redis hash all flag records live under unless
// overridden.
const DefaultRedisKey = "flagkit:flags"

// RedisStore persists flag records as JSON fields of a single Redis hash.
// One hash keeps ListAll a single HGETALL round-trip, which the periodic
// reload depends on.
type RedisStore struct {
	client  redis.UniversalClient
	hashKey string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKey overrides the hash key records are stored under.
func WithRedisKey(key string) RedisStoreOption {
	return func(s *RedisStore) {
		if key != "" {
			s.hashKey = key
		}
	}
}

// NewRedisStore creates a Redis-backed store. The store takes ownership of
// the client; Close closes it.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, hashKey: DefaultRedisKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (*flag.Flag, error) {
	payload, err := s.client.HGet(ctx, s.hashKey, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}

	var record flag.Flag
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, unavailable(err)
	}
	return &record, nil
}

func (s *RedisStore) Set(ctx context.Context, record *flag.Flag) error {
	if err := record.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return unavailable(err)
	}
	if err := s.client.HSet(ctx, s.hashKey, record.Key, payload).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := s.client.HDel(ctx, s.hashKey, key).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return removed > 0, nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]*flag.Flag, error) {
	fields, err := s.client.HGetAll(ctx, s.hashKey).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	records := make([]*flag.Flag, 0, len(fields))
	for _, payload := range fields {
		var record flag.Flag
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			// One corrupt field must not take down the reload.
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
