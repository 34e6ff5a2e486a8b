package engine

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// Option configures engine construction.
type Option func(*config)

type config struct {
	log            *slog.Logger
	reloadInterval time.Duration
	loadTimeout    time.Duration
	evalCacheTTL   time.Duration
	evalCacheSize  int
	seed           []*flag.Flag
}

func defaultConfig() *config {
	return &config{
		log:            slog.Default(),
		reloadInterval: 30 * time.Second,
		loadTimeout:    10 * time.Second,
		evalCacheTTL:   5 * time.Second,
		evalCacheSize:  10_000,
	}
}

// WithLogger sets the logger for reload and event-handling diagnostics.
// Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReloadInterval sets how often the local cache is rebuilt from the
// store. The reload is the consistency backstop for lost bus events, so the
// interval bounds worst-case convergence. Non-positive values are ignored.
func WithReloadInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.reloadInterval = d
		}
	}
}

// WithLoadTimeout bounds each bulk load round-trip to the store.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// WithEvalCacheTTL sets how long evaluation results stay memoized. Keep it
// in single-digit seconds: staleness must be tolerable relative to change
// propagation latency.
func WithEvalCacheTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.evalCacheTTL = d
		}
	}
}

// WithEvalCacheSize caps the number of memoized evaluation results.
func WithEvalCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.evalCacheSize = n
		}
	}
}

// WithSeed registers flag records created at startup when absent from the
// store. Existing records are never overwritten.
func WithSeed(flags ...*flag.Flag) Option {
	return func(c *config) {
		c.seed = append(c.seed, flags...)
	}
}
