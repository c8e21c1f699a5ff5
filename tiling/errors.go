package tiling

import (
	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"
)

// Sentinel errors of the partition engine, re-exported so callers can
// match with errors.Is without importing the internal geometry package.
var (
	// ErrInvalidParameter reports malformed extent, unit or overlap
	// values at plan time.
	ErrInvalidParameter = axis.ErrInvalidParameter

	// ErrInconsistentScale reports units that disagree on the uniform
	// resize factor applied by the external transform.
	ErrInconsistentScale = axis.ErrInconsistentScale

	// ErrAmbiguousAxis reports an axis with neither metadata nor a
	// manual override to resolve it from.
	ErrAmbiguousAxis = axis.ErrAmbiguousAxis

	// ErrMissingParameter reports a partially specified axis.
	ErrMissingParameter = axis.ErrMissingParameter

	// ErrShapeMismatch reports unit geometry that cannot be reconciled
	// with the resolved plan.
	ErrShapeMismatch = axis.ErrShapeMismatch

	// ErrUnsupportedMode reports an unknown fill or policy name.
	ErrUnsupportedMode = fill.ErrUnsupportedMode

	// ErrInvalidTag reports a unit tag that is present but unreadable.
	ErrInvalidTag = meta.ErrInvalidTag
)
