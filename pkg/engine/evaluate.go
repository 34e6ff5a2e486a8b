package engine

import (
	"github.com/dmitrymomot/flagkit/pkg/cache"
	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// Evaluate runs the decision procedure for one flag against one context.
// It never fails: an unknown key yields a disabled result with the
// "not found" reason, and no step performs network I/O. Results are
// memoized for the evaluation-cache TTL keyed by flag key plus a stable
// context serialization.
func (e *Engine) Evaluate(key string, ctx flag.Context) flag.Result {
	cacheKey := key + "\x00" + ctx.CacheKey()

	hit := true
	result := cache.Remember(e.evalCache, cacheKey, func() flag.Result {
		hit = false
		return e.snapshot()[key].Evaluate(ctx, e.clock())
	})
	if hit {
		e.stats.evalCacheHits.Add(1)
	} else {
		e.stats.evalCacheMisses.Add(1)
	}
	return result
}

// IsEnabled reports whether the flag resolves enabled for the context.
func (e *Engine) IsEnabled(key string, ctx flag.Context) bool {
	return e.Evaluate(key, ctx).Enabled
}

// GetVariant returns the variant name the context resolves to, or the empty
// string when evaluation did not reach variant selection.
func (e *Engine) GetVariant(key string, ctx flag.Context) string {
	return e.Evaluate(key, ctx).Variant
}

// GetValue returns the variant value the context resolves to, or def when
// evaluation produced no value.
func (e *Engine) GetValue(key string, ctx flag.Context, def any) any {
	if result := e.Evaluate(key, ctx); result.Value != nil {
		return result.Value
	}
	return def
}

// BulkEvaluate evaluates every currently cached flag against the context.
// Individual results share the evaluation cache with Evaluate.
func (e *Engine) BulkEvaluate(ctx flag.Context) map[string]flag.Result {
	snapshot := e.snapshot()
	results := make(map[string]flag.Result, len(snapshot))
	for key := range snapshot {
		results[key] = e.Evaluate(key, ctx)
	}
	return results
}
