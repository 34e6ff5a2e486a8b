package flag

import "time"

// Flag is the canonical description of one feature. Records are persisted by
// a store adapter, replicated into every process through the change bus, and
// consumed read-only by the evaluator.
type Flag struct {
	Key               string          `json:"key" bson:"key" yaml:"key"`
	Description       string          `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Enabled           bool            `json:"enabled" bson:"enabled" yaml:"enabled"`
	RolloutPercentage *int            `json:"rollout_percentage,omitempty" bson:"rollout_percentage,omitempty" yaml:"rollout_percentage,omitempty"`
	TargetingRules    []TargetingRule `json:"targeting_rules,omitempty" bson:"targeting_rules,omitempty" yaml:"targeting_rules,omitempty"`
	Variants          []Variant       `json:"variants,omitempty" bson:"variants,omitempty" yaml:"variants,omitempty"`
	Tags              []string        `json:"tags,omitempty" bson:"tags,omitempty" yaml:"tags,omitempty"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty" bson:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at,omitzero" bson:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at,omitzero" bson:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Operator identifies how a targeting rule compares the resolved context
// attribute against the rule value.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpRegex    Operator = "regex"
)

// TargetingRule is a predicate over evaluation-context attributes. Rules are
// evaluated in declared order; the first rule whose predicate matches
// decides enablement. Negate inverts the decision, not the match.
type TargetingRule struct {
	Attribute string   `json:"attribute" bson:"attribute" yaml:"attribute"`
	Operator  Operator `json:"operator" bson:"operator" yaml:"operator"`
	Value     any      `json:"value" bson:"value" yaml:"value"`
	Negate    bool     `json:"negate,omitempty" bson:"negate,omitempty" yaml:"negate,omitempty"`
}

// Variant is a named value bucket a flag can resolve to, chosen by relative
// weight or forced for specific identifiers through overrides.
type Variant struct {
	Key       string     `json:"key" bson:"key" yaml:"key"`
	Value     any        `json:"value,omitempty" bson:"value,omitempty" yaml:"value,omitempty"`
	Weight    int        `json:"weight" bson:"weight" yaml:"weight"`
	Overrides []Override `json:"overrides,omitempty" bson:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Override pins a variant value for a single identifier.
type Override struct {
	Identifier string `json:"identifier" bson:"identifier" yaml:"identifier"`
	Value      any    `json:"value,omitempty" bson:"value,omitempty" yaml:"value,omitempty"`
}

// Percentage returns a pointer to p, convenient when building records with
// an optional rollout percentage inline.
func Percentage(p int) *int { return &p }

// Expired reports whether the flag's expiry timestamp has passed at the
// given instant. Expiry disables a flag without mutating the record.
func (f *Flag) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && now.After(*f.ExpiresAt)
}

// Clone returns a deep copy so callers can hand records across goroutines
// without sharing backing slices.
func (f *Flag) Clone() *Flag {
	if f == nil {
		return nil
	}
	c := *f
	if f.RolloutPercentage != nil {
		p := *f.RolloutPercentage
		c.RolloutPercentage = &p
	}
	if f.ExpiresAt != nil {
		t := *f.ExpiresAt
		c.ExpiresAt = &t
	}
	if f.TargetingRules != nil {
		c.TargetingRules = make([]TargetingRule, len(f.TargetingRules))
		copy(c.TargetingRules, f.TargetingRules)
	}
	if f.Variants != nil {
		c.Variants = make([]Variant, len(f.Variants))
		for i, v := range f.Variants {
			if v.Overrides != nil {
				overrides := make([]Override, len(v.Overrides))
				copy(overrides, v.Overrides)
				v.Overrides = overrides
			}
			c.Variants[i] = v
		}
	}
	if f.Tags != nil {
		c.Tags = make([]string, len(f.Tags))
		copy(c.Tags, f.Tags)
	}
	return &c
}

// Validate checks the structural invariants a record must satisfy before it
// is persisted. Violations are reported as ErrInvalidFlag joined with detail.
func (f *Flag) Validate() error {
	if f == nil {
		return errInvalid("flag cannot be nil")
	}
	if f.Key == "" {
		return errInvalid("flag key cannot be empty")
	}
	if p := f.RolloutPercentage; p != nil && (*p < 0 || *p > 100) {
		return errInvalid("rollout percentage must be between 0 and 100")
	}
	for _, r := range f.TargetingRules {
		if r.Attribute == "" {
			return errInvalid("targeting rule attribute cannot be empty")
		}
		switch r.Operator {
		case OpEquals, OpContains, OpIn, OpGt, OpLt, OpRegex:
		default:
			return errInvalid("unknown targeting rule operator " + string(r.Operator))
		}
	}
	for _, v := range f.Variants {
		if v.Key == "" {
			return errInvalid("variant key cannot be empty")
		}
		if v.Weight < 0 {
			return errInvalid("variant weight cannot be negative")
		}
	}
	return nil
}
