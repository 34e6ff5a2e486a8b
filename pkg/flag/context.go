package flag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnonymousIdentifier is the bucketing sentinel used when an evaluation
// context carries no identifier.
const AnonymousIdentifier = "anonymous"

// Context is the request-scoped attribute bag targeting rules and bucketing
// are computed against. It has no fixed schema beyond the identifier; the
// free-form Attributes map holds everything else and supports dotted lookup
// into nested maps.
type Context struct {
	Identifier  string         `json:"identifier,omitempty"`
	Role        string         `json:"role,omitempty"`
	Tenant      string         `json:"tenant,omitempty"`
	Environment string         `json:"environment,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// BucketIdentifier returns the identifier used for deterministic bucketing
// and override lookup, falling back to the anonymous sentinel.
func (c Context) BucketIdentifier() string {
	if c.Identifier == "" {
		return AnonymousIdentifier
	}
	return c.Identifier
}

// Anonymous reports whether the context carries no identifier.
func (c Context) Anonymous() bool {
	return c.Identifier == ""
}

// Attribute resolves a dotted path against the context. The well-known
// fields shadow same-named attribute-map keys; deeper segments descend into
// nested maps. An unresolved path returns false and never panics.
func (c Context) Attribute(path string) (any, bool) {
	switch path {
	case "identifier":
		return c.Identifier, c.Identifier != ""
	case "role":
		return c.Role, c.Role != ""
	case "tenant":
		return c.Tenant, c.Tenant != ""
	case "environment":
		return c.Environment, c.Environment != ""
	}

	segments := strings.Split(path, ".")
	var current any = c.Attributes
	for _, segment := range segments {
		switch m := current.(type) {
		case map[string]any:
			v, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]string:
			v, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// CacheKey returns a stable serialization of the context suitable for
// memoizing evaluation results. JSON keeps the key injective (delimiter
// characters inside attribute values cannot collide with the structure)
// and encoding/json emits map keys in sorted order, so equal contexts
// always produce equal keys and distinct contexts never share one.
func (c Context) CacheKey() string {
	normalized := c
	normalized.Identifier = c.BucketIdentifier()
	payload, err := json.Marshal(normalized)
	if err != nil {
		// Unmarshalable attribute values cannot be memoized stably; a
		// per-call key degrades them to cache misses, never wrong hits.
		return fmt.Sprintf("%#v", c)
	}
	return string(payload)
}
