package tiling

import (
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"

	"github.com/e7canasta/frametiler/frame"
)

// axisTag renders one plan as the tag entry unit i will carry.
func axisTag(p axis.Plan, name string, fillMode string, index int) meta.AxisTag {
	a := meta.AxisTag{
		Axis:    name,
		Extent:  p.Extent,
		Unit:    p.Unit,
		Overlap: p.Overlap,
		Count:   p.Count,
		Index:   index,
		Policy:  p.Policy.String(),
	}
	if p.Policy == axis.Pad {
		a.Fill = fillMode
	}
	return a
}

// attachAxes merges axis entries into the frame's tag. A frame already
// tagged by an earlier partition stage keeps that stage's run id, so
// all axes of a composed run stay under one identifier; axes being
// re-partitioned are replaced.
func attachAxes(f *frame.Frame, runID string, axes []meta.AxisTag) error {
	t, present, err := meta.FromFrame(f)
	if err != nil {
		return err
	}
	if !present {
		t = meta.Tag{Version: meta.TagVersion, RunID: runID}
	}
	for _, a := range axes {
		t = t.WithoutAxis(a.Axis)
		t.Axes = append(t.Axes, a)
	}
	return meta.Attach(f, t)
}

// stripAxes removes axis entries from the frame's tag, dropping the
// tag entirely once no axes remain.
func stripAxes(f *frame.Frame, names ...string) error {
	t, present, err := meta.FromFrame(f)
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	for _, n := range names {
		t = t.WithoutAxis(n)
	}
	if len(t.Axes) == 0 {
		meta.Strip(f)
		return nil
	}
	return meta.Attach(f, t)
}
