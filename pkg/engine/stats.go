package engine

import "sync/atomic"

type counters struct {
	evalCacheHits   atomic.Uint64
	evalCacheMisses atomic.Uint64
	reloads         atomic.Uint64
	reloadFailures  atomic.Uint64
	eventsApplied   atomic.Uint64
	eventsDropped   atomic.Uint64
}

// Stats is a point-in-time snapshot of the engine's operational counters.
type Stats struct {
	EvalCacheHits   uint64 `json:"eval_cache_hits"`
	EvalCacheMisses uint64 `json:"eval_cache_misses"`
	Reloads         uint64 `json:"reloads"`
	ReloadFailures  uint64 `json:"reload_failures"`
	EventsApplied   uint64 `json:"events_applied"`
	EventsDropped   uint64 `json:"events_dropped"`
	CachedFlags     int    `json:"cached_flags"`
}

// Stats returns the current counter values.
func (e *Engine) Stats() Stats {
	return Stats{
		EvalCacheHits:   e.stats.evalCacheHits.Load(),
		EvalCacheMisses: e.stats.evalCacheMisses.Load(),
		Reloads:         e.stats.reloads.Load(),
		ReloadFailures:  e.stats.reloadFailures.Load(),
		EventsApplied:   e.stats.eventsApplied.Load(),
		EventsDropped:   e.stats.eventsDropped.Load(),
		CachedFlags:     len(e.snapshot()),
	}
}
