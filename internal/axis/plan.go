// Package axis computes overlapped partition geometry along a single axis.
//
// Everything here is pure integer arithmetic: an axis of extent E is cut
// into units of size U every stride S = U - O samples, and the shortfall
// of the last unit (the deficit) is resolved by a boundary policy. The
// same plan drives spatial tiling (width, height) and temporal windowing
// (time); pixel content never enters this package.
package axis

import "fmt"

// Policy resolves a short final unit.
type Policy int

const (
	// Pad materializes the last unit at full size by extending the
	// source content with a fill strategy.
	Pad Policy = iota

	// Discard drops the final partial unit entirely.
	Discard

	// None leaves the final unit at its natural short size.
	// Temporal-only: spatial grids need uniform tiles.
	None
)

func (p Policy) String() string {
	switch p {
	case Pad:
		return "pad"
	case Discard:
		return "discard"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps the wire name of a policy back to its value.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "pad":
		return Pad, nil
	case "discard":
		return Discard, nil
	case "none":
		return None, nil
	default:
		return 0, fmt.Errorf("axis: %w: unknown policy %q", ErrInvalidParameter, s)
	}
}

// Plan is the derived placement of units along one axis. Immutable.
type Plan struct {
	// Extent is the original size of the axis (pixels or frames).
	Extent int

	// Unit is the size of a full unit.
	Unit int

	// Overlap is the shared region between consecutive units, 0 <= Overlap < Unit.
	Overlap int

	// Stride is Unit - Overlap, the distance between unit origins.
	Stride int

	// Count is the number of units after the boundary policy resolved.
	Count int

	// Deficit is the shortfall of the last unit before the policy was
	// applied: Count0*Stride + Overlap - Extent for the pre-policy Count0.
	Deficit int

	// Policy is the boundary policy the plan was built with.
	Policy Policy
}

// New derives the partition plan for one axis.
//
// Count is max(1, ceil((E-O)/S)) for E > O, else 1. A positive deficit is
// resolved by the policy: Pad keeps Count and extends the last unit,
// Discard decrements Count (refusing to discard the only unit), None
// leaves the last unit short.
func New(extent, unit, overlap int, policy Policy) (Plan, error) {
	if unit <= 0 {
		return Plan{}, fmt.Errorf("axis: %w: unit size %d must be positive", ErrInvalidParameter, unit)
	}
	if overlap < 0 {
		return Plan{}, fmt.Errorf("axis: %w: overlap %d must not be negative", ErrInvalidParameter, overlap)
	}
	if overlap >= unit {
		return Plan{}, fmt.Errorf("axis: %w: overlap %d must be smaller than unit size %d (stride would be %d)",
			ErrInvalidParameter, overlap, unit, unit-overlap)
	}
	if extent <= 0 {
		return Plan{}, fmt.Errorf("axis: %w: extent %d must be positive", ErrInvalidParameter, extent)
	}

	p := Plan{
		Extent:  extent,
		Unit:    unit,
		Overlap: overlap,
		Stride:  unit - overlap,
		Policy:  policy,
	}

	p.Count = 1
	if extent > overlap {
		p.Count = ceilDiv(extent-overlap, p.Stride)
		if p.Count < 1 {
			p.Count = 1
		}
	}
	p.Deficit = p.Count*p.Stride + overlap - extent

	if p.Deficit > 0 && policy == Discard {
		if p.Count == 1 {
			return Plan{}, fmt.Errorf("axis: %w: cannot discard the only unit (extent %d < unit %d)",
				ErrInvalidParameter, extent, unit)
		}
		p.Count--
	}
	return p, nil
}

// Origin returns the start of unit i along the axis.
func (p Plan) Origin(i int) int {
	return i * p.Stride
}

// Size returns the materialized size of unit i. Only the last unit of a
// None-policy plan is ever short.
func (p Plan) Size(i int) int {
	if p.Policy == None && p.Deficit > 0 && i == p.Count-1 {
		return p.Unit - p.Deficit
	}
	return p.Unit
}

// Padded reports whether the last unit carries fill-extended content.
func (p Plan) Padded() bool {
	return p.Policy == Pad && p.Deficit > 0
}

// Assembled returns the axis extent after reassembling all units with
// overlaps deduplicated: Extent + Deficit for a padded plan, the covered
// prefix for a discarded one, Extent otherwise.
func (p Plan) Assembled() int {
	return p.Origin(p.Count-1) + p.Size(p.Count-1)
}

// Output returns the reconstruction output extent: the original extent,
// reduced when Discard dropped coverage, with any pad surplus cropped.
func (p Plan) Output() int {
	if a := p.Assembled(); a < p.Extent {
		return a
	}
	return p.Extent
}

// CropSpan returns the half-open core [lo, hi) kept from unit i in crop
// reconstruction, in unit-local coordinates. The first unit keeps its
// full leading edge, the last its full trailing edge; at an interior seam
// the later unit sheds floor(O/2) leading samples and the earlier unit
// sheds the remaining O - floor(O/2) trailing samples.
func (p Plan) CropSpan(i int) (lo, hi int) {
	lo = 0
	hi = p.Size(i)
	if i > 0 {
		lo = p.Overlap / 2
	}
	if i < p.Count-1 {
		hi -= p.Overlap - p.Overlap/2
	}
	return lo, hi
}

// Covering returns the inclusive range [lo, hi] of units whose span
// contains assembled position pos. With Overlap < Unit this is one or
// two units for typical strides, more when Overlap exceeds the stride.
func (p Plan) Covering(pos int) (lo, hi int) {
	lo = 0
	if pos >= p.Unit {
		lo = (pos-p.Unit)/p.Stride + 1
	}
	hi = pos / p.Stride
	if hi > p.Count-1 {
		hi = p.Count - 1
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// SeamLen returns the size of the overlap region entered by unit i
// (i >= 1), clamped to the unit's own materialized size.
func (p Plan) SeamLen(i int) int {
	if s := p.Size(i); s < p.Overlap {
		return s
	}
	return p.Overlap
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
