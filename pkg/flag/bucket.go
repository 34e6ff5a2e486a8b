package flag

import "hash/fnv"

// Bucket maps a (flag key, identifier) pair to a stable integer in [1,100].
// The hash is fixed FNV-1a and never salted, so the same pair lands in the
// same bucket on every process and across time; percentage rollouts depend
// on that reproducibility.
func Bucket(flagKey, identifier string) int {
	h := fnv.New32a()
	h.Write([]byte(flagKey))
	h.Write([]byte{':'})
	h.Write([]byte(identifier))
	return int(h.Sum32()%100) + 1
}

// InRollout reports whether the identifier's bucket falls inside the given
// rollout percentage.
func InRollout(flagKey, identifier string, percentage int) bool {
	return Bucket(flagKey, identifier) <= percentage
}
