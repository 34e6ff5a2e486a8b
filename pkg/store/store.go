package store

import (
	"context"
	"errors"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// Predefined errors for store adapters.
var (
	// ErrNotFound indicates no record exists under the requested key.
	ErrNotFound = errors.New("flag record not found")

	// ErrStoreUnavailable wraps infrastructure failures from the backing
	// store. Callers on the read path degrade to cached state; callers on
	// the write path surface it.
	ErrStoreUnavailable = errors.New("flag store unavailable")
)

// Store is the durable source of truth for flag records, keyed by flag key
// with last-write-wins semantics. Implementations must be safe for
// concurrent callers from multiple processes.
//
// Close releases the connections the adapter holds; the adapter owns its
// underlying client once constructed.
type Store interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (*flag.Flag, error)

	// Set persists the record, replacing any existing one with the same key.
	Set(ctx context.Context, record *flag.Flag) error

	// Delete removes the record, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// ListAll returns every stored record.
	ListAll(ctx context.Context) ([]*flag.Flag, error)

	// Close releases held connections.
	Close() error
}

func unavailable(err error) error {
	return errors.Join(ErrStoreUnavailable, err)
}
