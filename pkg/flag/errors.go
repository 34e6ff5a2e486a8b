package flag

import "errors"

// Predefined errors for the flag package.
var (
	// ErrInvalidFlag indicates the record violates a structural invariant.
	ErrInvalidFlag = errors.New("invalid feature flag record")

	// ErrInvalidSeed indicates the seed document could not be parsed.
	ErrInvalidSeed = errors.New("invalid flag seed document")
)

func errInvalid(detail string) error {
	return errors.Join(ErrInvalidFlag, errors.New(detail))
}
