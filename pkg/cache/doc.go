// Package cache provides the short-TTL memoization layer used for hot
// evaluation results.
//
// TTLCache combines per-entry expiry with LRU capacity eviction behind a
// single mutex. Expiry is enforced lazily on access, which keeps the cache
// free of background goroutines while still guaranteeing that no entry is
// ever served past its TTL.
//
// Remember wraps the common get/compute/set sequence:
//
//	result := cache.Remember(evalCache, key, func() flag.Result {
//		return f.Evaluate(ctx, time.Now())
//	})
//
// The engine clears the whole cache on any flag mutation. Invalidation is
// deliberately coarse: evaluation keys embed a serialized context, so
// per-flag invalidation would have to scan every entry anyway, and the
// short TTL already bounds how stale a hit can be.
package cache
