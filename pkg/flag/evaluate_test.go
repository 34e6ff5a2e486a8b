package flag_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

func TestEvaluateDecisionOrder(t *testing.T) {
	t.Parallel()
	now := time.Now()

	t.Run("NilFlagIsNotFound", func(t *testing.T) {
		t.Parallel()
		var f *flag.Flag
		res := f.Evaluate(flag.Context{}, now)
		assert.False(t, res.Enabled)
		assert.Equal(t, flag.ReasonNotFound, res.Reason)
	})

	t.Run("ExpiredBeatsEverything", func(t *testing.T) {
		t.Parallel()
		past := now.Add(-time.Hour)
		f := &flag.Flag{
			Key:     "sunset-feature",
			Enabled: true,
			TargetingRules: []flag.TargetingRule{
				{Attribute: "role", Operator: flag.OpEquals, Value: "admin"},
			},
			ExpiresAt: &past,
		}
		res := f.Evaluate(flag.Context{Role: "admin"}, now)
		assert.False(t, res.Enabled)
		assert.Equal(t, flag.ReasonExpired, res.Reason)
	})

	t.Run("MasterSwitchOff", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{Key: "dark-mode", Enabled: false, RolloutPercentage: flag.Percentage(100)}
		res := f.Evaluate(flag.Context{Identifier: "u1"}, now)
		assert.False(t, res.Enabled)
		assert.Equal(t, flag.ReasonDisabled, res.Reason)
	})

	t.Run("FullRolloutEnabledForAnyContext", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{Key: "new-dashboard", Enabled: true, RolloutPercentage: flag.Percentage(100)}
		for _, ctx := range []flag.Context{{}, {Identifier: "u1"}, {Role: "viewer"}} {
			res := f.Evaluate(ctx, now)
			assert.True(t, res.Enabled)
			assert.Equal(t, flag.ReasonDefaultEnabled, res.Reason)
		}
	})

	t.Run("TargetingBeatsRollout", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{
			Key:               "advanced-analytics",
			Enabled:           true,
			RolloutPercentage: flag.Percentage(50),
			TargetingRules: []flag.TargetingRule{
				{Attribute: "role", Operator: flag.OpIn, Value: []string{"admin", "analyst"}},
			},
		}
		res := f.Evaluate(flag.Context{Role: "admin"}, now)
		assert.True(t, res.Enabled)
		assert.Equal(t, flag.ReasonTargetingMatched, res.Reason)
	})

	t.Run("FirstMatchingRuleWins", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{
			Key:     "ordered-rules",
			Enabled: true,
			TargetingRules: []flag.TargetingRule{
				{Attribute: "role", Operator: flag.OpEquals, Value: "viewer", Negate: true},
				{Attribute: "role", Operator: flag.OpEquals, Value: "viewer"},
			},
		}
		// Both rules match; the first one decides, and its negate disables.
		res := f.Evaluate(flag.Context{Role: "viewer"}, now)
		assert.False(t, res.Enabled)
		assert.Equal(t, flag.ReasonTargetingMatched, res.Reason)
	})

	t.Run("NoRuleMatchFallsThroughToRollout", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{
			Key:               "advanced-analytics",
			Enabled:           true,
			RolloutPercentage: flag.Percentage(50),
			TargetingRules: []flag.TargetingRule{
				{Attribute: "role", Operator: flag.OpIn, Value: []string{"admin", "analyst"}},
			},
		}
		ctx := flag.Context{Role: "viewer", Identifier: "u123"}
		res := f.Evaluate(ctx, now)
		wantEnabled := flag.Bucket("advanced-analytics", "u123") <= 50
		assert.Equal(t, wantEnabled, res.Enabled)
		if wantEnabled {
			assert.Equal(t, flag.ReasonInRollout, res.Reason)
		} else {
			assert.Equal(t, flag.ReasonNotInRollout, res.Reason)
		}

		// Reproducible on every call.
		for range 50 {
			assert.Equal(t, res, f.Evaluate(ctx, now))
		}
	})

	t.Run("ZeroRolloutDisablesEveryone", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{Key: "killswitched", Enabled: true, RolloutPercentage: flag.Percentage(0)}
		res := f.Evaluate(flag.Context{Identifier: "u1"}, now)
		assert.False(t, res.Enabled)
		assert.Equal(t, flag.ReasonNotInRollout, res.Reason)
	})

	t.Run("DefaultEnabled", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{Key: "plain-toggle", Enabled: true}
		res := f.Evaluate(flag.Context{}, now)
		assert.True(t, res.Enabled)
		assert.Equal(t, flag.ReasonDefaultEnabled, res.Reason)
	})
}

func TestEvaluateVariants(t *testing.T) {
	t.Parallel()
	now := time.Now()

	variantFlag := func() *flag.Flag {
		return &flag.Flag{
			Key:     "pricing-experiment",
			Enabled: true,
			Variants: []flag.Variant{
				{Key: "A", Value: "layout-a", Weight: 50},
				{Key: "B", Value: "layout-b", Weight: 50, Overrides: []flag.Override{
					{Identifier: "u1", Value: "forced-B"},
				}},
			},
		}
	}

	t.Run("OverrideWinsDeterministically", func(t *testing.T) {
		t.Parallel()
		f := variantFlag()
		for range 20 {
			res := f.Evaluate(flag.Context{Identifier: "u1"}, now)
			require.True(t, res.Enabled)
			assert.Equal(t, "B", res.Variant)
			assert.Equal(t, "forced-B", res.Value)
			assert.Equal(t, flag.ReasonVariantSelected, res.Reason)
		}
	})

	t.Run("StickyAssignmentForIdentifiedContexts", func(t *testing.T) {
		t.Parallel()
		f := variantFlag()
		first := f.Evaluate(flag.Context{Identifier: "u42"}, now)
		require.Equal(t, flag.ReasonVariantSelected, first.Reason)
		require.NotEmpty(t, first.Variant)
		for range 50 {
			assert.Equal(t, first, f.Evaluate(flag.Context{Identifier: "u42"}, now))
		}
	})

	t.Run("WeightsRespected", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{
			Key:     "lopsided",
			Enabled: true,
			Variants: []flag.Variant{
				{Key: "rare", Value: 1, Weight: 1},
				{Key: "common", Value: 2, Weight: 99},
			},
		}
		common := 0
		for i := range 1000 {
			res := f.Evaluate(flag.Context{Identifier: "user-" + strconv.Itoa(i)}, now)
			require.Equal(t, flag.ReasonVariantSelected, res.Reason)
			if res.Variant == "common" {
				common++
			}
		}
		assert.Greater(t, common, 900)
	})

	t.Run("ZeroWeightsFallThroughToDefault", func(t *testing.T) {
		t.Parallel()
		f := &flag.Flag{
			Key:     "all-zero",
			Enabled: true,
			Variants: []flag.Variant{
				{Key: "A", Weight: 0},
				{Key: "B", Weight: 0},
			},
		}
		res := f.Evaluate(flag.Context{Identifier: "u1"}, now)
		assert.True(t, res.Enabled)
		assert.Equal(t, flag.ReasonDefaultEnabled, res.Reason)
	})

	t.Run("AnonymousContextStillGetsAVariant", func(t *testing.T) {
		t.Parallel()
		f := variantFlag()
		res := f.Evaluate(flag.Context{}, now)
		assert.True(t, res.Enabled)
		assert.Equal(t, flag.ReasonVariantSelected, res.Reason)
		assert.Contains(t, []string{"A", "B"}, res.Variant)
	})

	t.Run("RolloutGateRunsBeforeVariants", func(t *testing.T) {
		t.Parallel()
		f := variantFlag()
		f.RolloutPercentage = flag.Percentage(0)
		res := f.Evaluate(flag.Context{Identifier: "u1"}, now)
		assert.False(t, res.Enabled)
		assert.Equal(t, flag.ReasonNotInRollout, res.Reason)
	})
}
