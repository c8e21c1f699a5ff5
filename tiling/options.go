package tiling

import (
	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/internal/axis"
)

// Policy resolves a short final unit.
type Policy = axis.Policy

const (
	// PolicyPad materializes the last unit at full size with a fill
	// strategy.
	PolicyPad = axis.Pad

	// PolicyDiscard drops the final partial unit.
	PolicyDiscard = axis.Discard

	// PolicyNone leaves the final unit short. Temporal axes only.
	PolicyNone = axis.None
)

// ParsePolicy maps the wire name of a policy back to its value.
func ParsePolicy(s string) (Policy, error) {
	return axis.ParsePolicy(s)
}

// TileOptions configures spatial partitioning. Zero overlap is valid;
// a zero tile edge is not.
type TileOptions struct {
	// TileW, TileH are the unit size per axis, in source pixels.
	TileW, TileH int

	// OverlapX, OverlapY are the shared margins between horizontally
	// and vertically adjacent tiles.
	OverlapX, OverlapY int

	// Policy resolves grid cells that hang past the frame edge.
	// PolicyNone is rejected here: a grid needs uniform tiles.
	Policy Policy

	// Fill extends edge-hanging tiles when Policy is PolicyPad.
	Fill fill.Spec
}

// WindowOptions configures temporal partitioning.
type WindowOptions struct {
	// Length is the window size in frames.
	Length int

	// Overlap is the number of frames consecutive windows share.
	Overlap int

	// Policy resolves a short final window. All three policies are
	// valid on the time axis.
	Policy Policy

	// Fill pads a short final window when Policy is PolicyPad. Only the
	// temporal strategies (mirror, wrap, repeat, solid) apply.
	Fill fill.Spec
}

// AxisOverride supplies reconstruction geometry for one axis manually.
// Zero-valued fields fall back to the unit metadata; Overlap needs an
// explicit presence flag because zero overlap is a meaningful value.
type AxisOverride struct {
	// FullExtent is the original axis size. Supplying it also accounts
	// for units externally discarded at the trailing boundary: the unit
	// count is re-derived from this extent instead of the tagged one.
	FullExtent int

	// UnitSize is the nominal unit size at forward time.
	UnitSize int

	// Overlap is the forward overlap, consulted only when HasOverlap.
	Overlap int

	// HasOverlap marks Overlap as explicitly supplied.
	HasOverlap bool
}

func (o AxisOverride) empty() bool {
	return o.FullExtent == 0 && o.UnitSize == 0 && !o.HasOverlap
}

// UntileOptions configures spatial reconstruction.
type UntileOptions struct {
	// Fade blends overlap regions instead of cropping them.
	Fade bool

	// X, Y override the tagged geometry of the width and height axes.
	X, Y AxisOverride
}

// UnwindowOptions configures temporal reconstruction.
type UnwindowOptions struct {
	// Fade crossfades overlap regions instead of trimming them.
	Fade bool

	// T overrides the tagged geometry of the time axis.
	T AxisOverride
}

// PadOptions configures spatial padding to a target size.
type PadOptions struct {
	// Width, Height are the target extents. Zero keeps the axis
	// unchanged; shrinking is rejected.
	Width, Height int

	// Center splits each margin evenly between the two borders instead
	// of growing only right and bottom.
	Center bool

	// Fill chooses the margin content.
	Fill fill.Spec
}

// TPadOptions configures temporal padding.
type TPadOptions struct {
	// Start, End are the number of frames prepended and appended.
	Start, End int

	// Fill chooses the added frames. Only the temporal strategies
	// (mirror, wrap, repeat, solid) apply.
	Fill fill.Spec
}
