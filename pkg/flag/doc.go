// Package flag defines the feature-flag data model and the pure evaluation
// logic shared by every flagkit component.
//
// A Flag record describes one feature: a master switch, an optional
// percentage rollout, ordered targeting rules, and weighted variants with
// per-identifier overrides. Evaluation runs a fixed decision procedure
// against a request-scoped Context and always produces a Result with a
// diagnostic reason; it never returns an error.
//
//	f := &flag.Flag{
//		Key:               "advanced-analytics",
//		Enabled:           true,
//		RolloutPercentage: flag.Percentage(50),
//		TargetingRules: []flag.TargetingRule{
//			{Attribute: "role", Operator: flag.OpIn, Value: []string{"admin", "analyst"}},
//		},
//	}
//	res := f.Evaluate(flag.Context{Identifier: "u123", Role: "admin"}, time.Now())
//	// res.Enabled == true, res.Reason == flag.ReasonTargetingMatched
//
// Percentage rollouts bucket identifiers with an unsalted FNV-1a hash, so
// the same (flag, identifier) pair resolves identically on every process
// and on every call. Variant assignment for identified contexts is sticky
// through the same mechanism; anonymous contexts draw uniformly at random.
//
// Everything in this package is pure and safe for concurrent use. The
// engine package layers caching, persistence, and change propagation on
// top of it.
package flag
