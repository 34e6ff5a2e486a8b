package flag

import (
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Evaluate runs the full decision procedure for the flag against the given
// context. Steps apply in order and the first applicable one returns:
// expiry, master switch, targeting rules (first match wins), percentage
// rollout, variant selection, default enabled. Evaluation is pure and never
// fails; configuration problems degrade to non-matching rules.
func (f *Flag) Evaluate(ctx Context, now time.Time) Result {
	if f == nil {
		return Result{Enabled: false, Reason: ReasonNotFound}
	}
	if f.Expired(now) {
		return Result{Enabled: false, Reason: ReasonExpired}
	}
	if !f.Enabled {
		return Result{Enabled: false, Reason: ReasonDisabled}
	}

	for _, rule := range f.TargetingRules {
		if rule.Matches(ctx) {
			return Result{Enabled: !rule.Negate, Reason: ReasonTargetingMatched}
		}
	}

	if p := f.RolloutPercentage; p != nil && *p < 100 {
		if InRollout(f.Key, ctx.BucketIdentifier(), *p) {
			return Result{Enabled: true, Reason: ReasonInRollout}
		}
		return Result{Enabled: false, Reason: ReasonNotInRollout}
	}

	if len(f.Variants) > 0 {
		if r, ok := f.selectVariant(ctx); ok {
			return r
		}
	}

	return Result{Enabled: true, Reason: ReasonDefaultEnabled}
}

// selectVariant resolves the variant branch: a per-identifier override wins
// deterministically over weights, otherwise an inverse-CDF draw over the
// cumulative weights picks a variant. Identified contexts use a stable
// hash-seeded draw so assignment is sticky; only anonymous contexts fall
// back to a uniform random draw. Returns false when no variant is
// selectable (all weights zero and no override).
func (f *Flag) selectVariant(ctx Context) (Result, bool) {
	identifier := ctx.BucketIdentifier()
	for _, v := range f.Variants {
		for _, o := range v.Overrides {
			if o.Identifier == identifier {
				return Result{
					Enabled: true,
					Variant: v.Key,
					Value:   o.Value,
					Reason:  ReasonVariantSelected,
				}, true
			}
		}
	}

	total := 0
	for _, v := range f.Variants {
		total += v.Weight
	}
	if total <= 0 {
		return Result{}, false
	}

	draw := f.variantDraw(ctx, total)
	cumulative := 0
	for _, v := range f.Variants {
		cumulative += v.Weight
		if draw < cumulative {
			return Result{
				Enabled: true,
				Variant: v.Key,
				Value:   v.Value,
				Reason:  ReasonVariantSelected,
			}, true
		}
	}
	return Result{}, false
}

// variantDraw produces a value in [0,total). The variant hash is salted
// relative to the rollout bucket hash so rollout membership and variant
// assignment are independent for a given identifier.
func (f *Flag) variantDraw(ctx Context, total int) int {
	if ctx.Anonymous() {
		return rand.IntN(total)
	}
	h := fnv.New32a()
	h.Write([]byte(f.Key))
	h.Write([]byte(":variant:"))
	h.Write([]byte(ctx.Identifier))
	return int(h.Sum32() % uint32(total))
}
