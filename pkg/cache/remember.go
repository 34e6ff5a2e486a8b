package cache

// Remember performs the get/compute/set sequence against the cache: a hit
// returns the memoized value, a miss invokes the supplier and stores its
// result under the key. It replaces ad-hoc cache wrapping at call sites
// with one explicit helper.
//
// The supplier may run more than once for the same key under concurrent
// misses; suppliers must therefore be side-effect free.
func Remember[K comparable, V any](c *TTLCache[K, V], key K, supplier func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := supplier()
	c.Put(key, v)
	return v
}
