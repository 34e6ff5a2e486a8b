package flag

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Matches evaluates the rule's predicate against the context. An unresolved
// attribute, an unknown operator, or a value that cannot be coerced for the
// operator all evaluate to "no match"; rule evaluation never fails. Negate
// is intentionally not applied here: it inverts the decision a match
// produces, not the match itself.
func (r TargetingRule) Matches(ctx Context) bool {
	attr, ok := ctx.Attribute(r.Attribute)
	if !ok {
		return false
	}

	switch r.Operator {
	case OpEquals:
		return coerceString(attr) == coerceString(r.Value)
	case OpContains:
		return strings.Contains(coerceString(attr), coerceString(r.Value))
	case OpIn:
		return containsValue(r.Value, coerceString(attr))
	case OpGt:
		a, aok := coerceNumber(attr)
		b, bok := coerceNumber(r.Value)
		return aok && bok && a > b
	case OpLt:
		a, aok := coerceNumber(attr)
		b, bok := coerceNumber(r.Value)
		return aok && bok && a < b
	case OpRegex:
		re, err := regexp.Compile(coerceString(r.Value))
		if err != nil {
			// Configuration error: treat the rule as non-matching.
			return false
		}
		return re.MatchString(coerceString(attr))
	default:
		return false
	}
}

// containsValue reports whether the candidate equals any member of the rule
// value, which may arrive as a typed slice, a JSON-decoded []any, or a
// comma-separated string.
func containsValue(ruleValue any, candidate string) bool {
	switch v := ruleValue.(type) {
	case []string:
		for _, s := range v {
			if s == candidate {
				return true
			}
		}
	case []any:
		for _, e := range v {
			if coerceString(e) == candidate {
				return true
			}
		}
	case string:
		for s := range strings.SplitSeq(v, ",") {
			if strings.TrimSpace(s) == candidate {
				return true
			}
		}
	default:
		rv := reflect.ValueOf(ruleValue)
		if rv.Kind() != reflect.Slice {
			return false
		}
		for i := range rv.Len() {
			if coerceString(rv.Index(i).Interface()) == candidate {
				return true
			}
		}
	}
	return false
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		// JSON numbers decode to float64; render integral values without a
		// fractional part so they compare equal to their string form.
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
