package flag

// Reason identifies which branch of the decision procedure produced a
// result. Downstream tooling and tests assert on these values, so they are
// part of the package contract.
const (
	ReasonNotFound         = "not found"
	ReasonExpired          = "expired"
	ReasonDisabled         = "disabled"
	ReasonTargetingMatched = "targeting matched"
	ReasonInRollout        = "in rollout"
	ReasonNotInRollout     = "not in rollout"
	ReasonVariantSelected  = "variant selected"
	ReasonDefaultEnabled   = "default enabled"
)

// Result is the outcome of evaluating one flag against one context.
type Result struct {
	Enabled bool   `json:"enabled"`
	Variant string `json:"variant,omitempty"`
	Value   any    `json:"value,omitempty"`
	Reason  string `json:"reason"`
}
