package engine

import "errors"

// Predefined errors for the engine package.
var (
	// ErrStoreNil indicates the engine was constructed without a store.
	ErrStoreNil = errors.New("engine requires a store")

	// ErrFlagNotFound indicates no flag exists under the requested key.
	// Evaluation never returns it; management reads and updates do.
	ErrFlagNotFound = errors.New("feature flag not found")

	// ErrFlagExists indicates a create collided with an existing key.
	ErrFlagExists = errors.New("feature flag already exists")

	// ErrEngineClosed is returned by mutations after Close.
	ErrEngineClosed = errors.New("engine is closed")
)
