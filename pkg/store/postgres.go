package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// DefaultPostgresTable is the table flag records live in unless overridden.
const DefaultPostgresTable = "feature_flags"

// PostgresStore persists flag records as jsonb rows keyed by the flag key.
// Keeping the record as a single jsonb column avoids a schema migration
// surface: new record fields round-trip without DDL.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// WithPostgresTable overrides the table name.
func WithPostgresTable(name string) PostgresStoreOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = name
		}
	}
}

// NewPostgresStore creates a Postgres-backed store. The store takes
// ownership of the pool; Close closes it. Call EnsureSchema once before
// first use.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{pool: pool, table: DefaultPostgresTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the flags table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key text PRIMARY KEY,
		record jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*flag.Flag, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT record FROM %s WHERE key = $1", s.table), key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (s *PostgresStore) Set(ctx context.Context, record *flag.Flag) error {
	if err := record.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return unavailable(err)
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, record, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET record = EXCLUDED.record, updated_at = now()`,
		s.table), record.Key, payload)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE key = $1", s.table), key)
	if err != nil {
		return false, unavailable(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*flag.Flag, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT record FROM %s", s.table))
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var records []*flag.Flag
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, unavailable(err)
		}
		var record flag.Flag
		if err := json.Unmarshal(payload, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
