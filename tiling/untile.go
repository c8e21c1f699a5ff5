package tiling

import (
	"context"
	"fmt"

	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/internal/blend"
	"github.com/e7canasta/frametiler/meta"
)

// Untile reassembles a tile stream produced by Tile, after the tiles
// passed through an arbitrary metadata-preserving per-tile transform.
//
// Geometry is recovered from the unit tags; any field can be forced
// through opts. A uniform resize of the tiles is detected from the
// first tile and the whole assembly happens in the resized space, so
// the output is the source scaled by the same factor. The first unit
// is inspected here, at construction; geometry errors surface
// immediately rather than on first pull.
func Untile(ctx context.Context, src frame.Sequence, opts UntileOptions) (frame.Sequence, error) {
	if src.Len() == 0 {
		return nil, fmt.Errorf("tiling: untile: %w", frame.ErrEmptySequence)
	}
	first, err := src.Frame(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("tiling: inspect first unit: %w", err)
	}
	if err := first.Validate(); err != nil {
		return nil, err
	}
	tag, tagged, err := meta.FromFrame(first)
	if err != nil {
		return nil, fmt.Errorf("tiling: first unit: %w", err)
	}
	var wTag, hTag *meta.AxisTag
	if tagged {
		if a, ok := tag.Axis(meta.AxisWidth); ok {
			wTag = &a
		}
		if a, ok := tag.Axis(meta.AxisHeight); ok {
			hTag = &a
		}
	}

	ex, ux, ox, polX, err := axisParams("width", wTag, opts.X)
	if err != nil {
		return nil, err
	}
	ey, uy, oy, polY, err := axisParams("height", hTag, opts.Y)
	if err != nil {
		return nil, err
	}
	nx, err := axis.New(ex, ux, ox, polX)
	if err != nil {
		return nil, fmt.Errorf("tiling: width axis: %w", err)
	}
	ny, err := axis.New(ey, uy, oy, polY)
	if err != nil {
		return nil, fmt.Errorf("tiling: height axis: %w", err)
	}

	// One uniform factor covers both axes; a width/height disagreement
	// on the first tile is already an inconsistent external resize.
	factor, err := axis.ResolveScale([]axis.Observation{
		{Name: "width", Observed: first.Width, Tagged: nx.Unit},
		{Name: "height", Observed: first.Height, Tagged: ny.Unit},
	}, axis.DefaultTolerance)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}
	sx, err := scalePlan(nx, factor, first.Width)
	if err != nil {
		return nil, err
	}
	sy, err := scalePlan(ny, factor, first.Height)
	if err != nil {
		return nil, err
	}

	grid := nx.Count * ny.Count
	if src.Len()%grid != 0 {
		return nil, fmt.Errorf("tiling: %w: %d units do not fill %dx%d tile grids",
			ErrShapeMismatch, src.Len(), nx.Count, ny.Count)
	}

	return &untiledSeq{
		src:    src,
		opts:   opts,
		sx:     sx,
		sy:     sy,
		grid:   grid,
		frames: src.Len() / grid,
		format: first.Format,
		tagged: tagged,
		ref:    tag,
	}, nil
}

type untiledSeq struct {
	src    frame.Sequence
	opts   UntileOptions
	sx, sy axis.Plan
	grid   int
	frames int
	format frame.Format
	tagged bool
	ref    meta.Tag
}

func (s *untiledSeq) Len() int { return s.frames }

func (s *untiledSeq) Shape() frame.Shape {
	return frame.Shape{Width: s.sx.Output(), Height: s.sy.Output(), Format: s.format}
}

func (s *untiledSeq) Frame(ctx context.Context, k int) (*frame.Frame, error) {
	if k < 0 || k >= s.frames {
		return nil, fmt.Errorf("tiling: frame %d of %d: %w", k, s.frames, frame.ErrOutOfRange)
	}
	if s.opts.Fade {
		return s.fadeFrame(ctx, k)
	}
	return s.cropFrame(ctx, k)
}

// unit pulls tile (col, row) of output frame k and validates it
// against the resolved plan before any of its samples are used.
func (s *untiledSeq) unit(ctx context.Context, k, col, row int) (*frame.Frame, error) {
	f, err := s.src.Frame(ctx, k*s.grid+row*s.sx.Count+col)
	if err != nil {
		return nil, err
	}
	if f.Format != s.format {
		return nil, fmt.Errorf("tiling: %w: tile (%d,%d) is %v, first unit was %v",
			ErrShapeMismatch, col, row, f.Format, s.format)
	}
	if f.Width != s.sx.Unit || f.Height != s.sy.Unit {
		return nil, fmt.Errorf("tiling: %w: tile (%d,%d) of frame %d is %dx%d, resolved unit size is %dx%d",
			ErrInconsistentScale, col, row, k, f.Width, f.Height, s.sx.Unit, s.sy.Unit)
	}
	err = checkUnitTag(f, s.tagged, s.ref, map[string]int{
		meta.AxisWidth:  col,
		meta.AxisHeight: row,
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// cropFrame keeps only the non-overlapping core of every tile. Cores
// tile the assembled extent contiguously, so a single pass of blits
// rebuilds the frame; cores falling past the output extent (the pad
// surplus) are clipped off.
func (s *untiledSeq) cropFrame(ctx context.Context, k int) (*frame.Frame, error) {
	outW, outH := s.sx.Output(), s.sy.Output()
	var out *frame.Frame
	for row := 0; row < s.sy.Count; row++ {
		ylo, yhi := s.sy.CropSpan(row)
		destY := s.sy.Origin(row) + ylo
		if destY >= outH {
			break
		}
		h := yhi - ylo
		if destY+h > outH {
			h = outH - destY
		}
		for col := 0; col < s.sx.Count; col++ {
			xlo, xhi := s.sx.CropSpan(col)
			destX := s.sx.Origin(col) + xlo
			if destX >= outW {
				break
			}
			w := xhi - xlo
			if destX+w > outW {
				w = outW - destX
			}
			u, err := s.unit(ctx, k, col, row)
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = u.CloneHeader(frame.Shape{Width: outW, Height: outH, Format: s.format})
			}
			blend.CopyRect(out, destX, destY, u, xlo, ylo, w, h)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("tiling: %w: no tile core lands inside the %dx%d output",
			ErrShapeMismatch, outW, outH)
	}
	if err := stripAxes(out, meta.AxisWidth, meta.AxisHeight); err != nil {
		return nil, err
	}
	return out, nil
}

// fadeFrame blends overlaps instead of cropping them: tiles of one row
// are chained left to right with a horizontal seam ramp, then the row
// strips are chained top to bottom with the vertical ramp. Corner
// regions therefore see the product of both ramps.
func (s *untiledSeq) fadeFrame(ctx context.Context, k int) (*frame.Frame, error) {
	asmW, asmH := s.sx.Assembled(), s.sy.Assembled()
	var canvas *frame.Frame
	for row := 0; row < s.sy.Count; row++ {
		var strip *frame.Frame
		for col := 0; col < s.sx.Count; col++ {
			u, err := s.unit(ctx, k, col, row)
			if err != nil {
				return nil, err
			}
			if strip == nil {
				strip = u.CloneHeader(frame.Shape{Width: asmW, Height: s.sy.Unit, Format: s.format})
				blend.CopyRect(strip, 0, 0, u, 0, 0, s.sx.Unit, s.sy.Unit)
				continue
			}
			x0 := s.sx.Origin(col)
			seam := s.sx.SeamLen(col)
			blend.HSeam(strip, x0, 0, u, 0, 0, seam, s.sy.Unit)
			blend.CopyRect(strip, x0+seam, 0, u, seam, 0, s.sx.Unit-seam, s.sy.Unit)
		}
		if canvas == nil {
			canvas = strip.CloneHeader(frame.Shape{Width: asmW, Height: asmH, Format: s.format})
			blend.CopyRect(canvas, 0, 0, strip, 0, 0, asmW, s.sy.Unit)
			continue
		}
		y0 := s.sy.Origin(row)
		seam := s.sy.SeamLen(row)
		blend.VSeam(canvas, 0, y0, strip, 0, 0, seam, asmW)
		blend.CopyRect(canvas, 0, y0+seam, strip, 0, seam, asmW, s.sy.Unit-seam)
	}

	out, err := canvas.SubRect(0, 0, s.sx.Output(), s.sy.Output())
	if err != nil {
		return nil, err
	}
	if err := stripAxes(out, meta.AxisWidth, meta.AxisHeight); err != nil {
		return nil, err
	}
	return out, nil
}
