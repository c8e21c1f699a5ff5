package tiling

import (
	"fmt"

	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"
)

// axisParams resolves the forward geometry of one axis from its tag
// entry and manual override. Override fields win over tagged values; a
// missing tag demands a complete override.
func axisParams(name string, tag *meta.AxisTag, ov AxisOverride) (extent, unit, overlap int, policy Policy, err error) {
	if tag == nil {
		if ov.empty() {
			return 0, 0, 0, 0, fmt.Errorf("tiling: %w: %s axis carries no unit metadata and no override was given",
				ErrAmbiguousAxis, name)
		}
		if ov.FullExtent <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("tiling: %w: full extent for the %s axis", ErrMissingParameter, name)
		}
		if ov.UnitSize <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("tiling: %w: unit size for the %s axis", ErrMissingParameter, name)
		}
		if !ov.HasOverlap {
			return 0, 0, 0, 0, fmt.Errorf("tiling: %w: overlap for the %s axis", ErrMissingParameter, name)
		}
		return ov.FullExtent, ov.UnitSize, ov.Overlap, PolicyPad, nil
	}

	policy, err = ParsePolicy(tag.Policy)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("tiling: %s axis tag: %w", name, err)
	}
	extent, unit, overlap = tag.Extent, tag.Unit, tag.Overlap
	if ov.FullExtent > 0 {
		// An explicit extent also accounts for units externally
		// discarded at the trailing boundary: the unit count is
		// re-derived from it below instead of trusted from the tag.
		extent = ov.FullExtent
	}
	if ov.UnitSize > 0 {
		unit = ov.UnitSize
	}
	if ov.HasOverlap {
		overlap = ov.Overlap
	}
	return extent, unit, overlap, policy, nil
}

// scalePlan transfers a tag-space plan into observed space. The unit
// size is taken from the observation when available (it is exact);
// extent and overlap are scaled by the detected factor and rounded
// half up. The scaled plan must place the same number of units as the
// tagged one, otherwise the observed frames cannot belong to it.
func scalePlan(nominal axis.Plan, factor float64, observedUnit int) (axis.Plan, error) {
	unit := observedUnit
	if unit <= 0 {
		unit = axis.ScaleRound(nominal.Unit, factor)
	}
	scaled, err := axis.New(
		axis.ScaleRound(nominal.Extent, factor),
		unit,
		axis.ScaleRound(nominal.Overlap, factor),
		nominal.Policy,
	)
	if err != nil {
		return axis.Plan{}, err
	}
	if scaled.Count != nominal.Count {
		return axis.Plan{}, fmt.Errorf("tiling: %w: geometry scaled by %.4f places %d units, tagged geometry places %d",
			ErrShapeMismatch, factor, scaled.Count, nominal.Count)
	}
	return scaled, nil
}

// detach returns a frame sharing f's pixel data with its own property
// bag, so tag edits on the result leave f untouched. Sharing Data is
// safe under the frame immutability contract.
func detach(f *frame.Frame) *frame.Frame {
	return &frame.Frame{
		Data:      f.Data,
		Width:     f.Width,
		Height:    f.Height,
		Format:    f.Format,
		Timestamp: f.Timestamp,
		Props:     f.Props.Clone(),
	}
}

// checkUnitTag validates one pulled unit against the reference tag
// seen on the first unit: same run, same geometry, expected indices.
func checkUnitTag(f *frame.Frame, tagged bool, ref meta.Tag, want map[string]int) error {
	t, present, err := meta.FromFrame(f)
	if err != nil {
		return fmt.Errorf("tiling: %w", err)
	}
	if present != tagged {
		return fmt.Errorf("tiling: %w: some units carry metadata and some do not", ErrShapeMismatch)
	}
	if !present {
		return nil
	}
	if !ref.ConsistentWith(t) {
		return fmt.Errorf("tiling: %w: unit tagged for a different partition run", ErrShapeMismatch)
	}
	for name, idx := range want {
		a, ok := t.Axis(name)
		if !ok {
			continue
		}
		if a.Index != idx {
			return fmt.Errorf("tiling: %w: unit carries %s index %d, expected %d at this position",
				ErrShapeMismatch, name, a.Index, idx)
		}
	}
	return nil
}
