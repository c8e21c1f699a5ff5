package axis

import "errors"

// Error taxonomy shared by every partition/reconstruction operation.
// All failures are deterministic and surfaced at the call that first
// detects them; nothing is recovered by guessing.
var (
	// ErrInvalidParameter: malformed extent/unit/overlap at plan time.
	ErrInvalidParameter = errors.New("invalid partition parameter")

	// ErrInconsistentScale: units or axes imply different scale factors.
	ErrInconsistentScale = errors.New("inconsistent scale factor")

	// ErrAmbiguousAxis: metadata missing and no manual override given.
	ErrAmbiguousAxis = errors.New("axis parameters ambiguous")

	// ErrMissingParameter: auto-detection impossible for a required field.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrShapeMismatch: unit geometry cannot be reconciled with the plan.
	ErrShapeMismatch = errors.New("unit geometry mismatch")
)
