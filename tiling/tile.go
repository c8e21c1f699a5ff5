package tiling

import (
	"context"
	"fmt"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"
)

// maxTiles caps the grid size per source frame. A grid past this is
// almost always a misconfigured unit size, and each output frame pull
// fans out to every tile of its row and column neighborhood on the
// inverse path.
const maxTiles = 1024

// Tile cuts every frame of src into a row-major grid of overlapping
// tiles. The output sequence is lazy and carries src.Len()*cols*rows
// tiles; tile t of source frame f sits at index f*cols*rows + t.
//
// Every tile is tagged with the full partition geometry, which is what
// Untile later feeds on.
func Tile(src frame.Sequence, opts TileOptions) (frame.Sequence, error) {
	shape := src.Shape()
	if !shape.Valid() {
		return nil, fmt.Errorf("tiling: %w: source shape %s", ErrInvalidParameter, shape)
	}
	if opts.Policy == PolicyNone {
		return nil, fmt.Errorf("tiling: %w: policy none leaves a variable-size final unit, grids need uniform tiles", ErrInvalidParameter)
	}

	px, err := axis.New(shape.Width, opts.TileW, opts.OverlapX, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("tiling: width axis: %w", err)
	}
	py, err := axis.New(shape.Height, opts.TileH, opts.OverlapY, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("tiling: height axis: %w", err)
	}
	if px.Padded() || py.Padded() {
		if err := opts.Fill.ValidateSpatial(); err != nil {
			return nil, err
		}
	}
	if n := px.Count * py.Count; n > maxTiles {
		return nil, fmt.Errorf("tiling: %w: %dx%d grid is %d tiles (limit %d)",
			ErrInvalidParameter, px.Count, py.Count, n, maxTiles)
	}

	return &tiledSeq{
		src:   src,
		opts:  opts,
		px:    px,
		py:    py,
		runID: meta.NewRunID(),
	}, nil
}

type tiledSeq struct {
	src    frame.Sequence
	opts   TileOptions
	px, py axis.Plan
	runID  string
}

func (s *tiledSeq) grid() int { return s.px.Count * s.py.Count }

func (s *tiledSeq) Len() int { return s.src.Len() * s.grid() }

func (s *tiledSeq) Shape() frame.Shape {
	return frame.Shape{Width: s.px.Unit, Height: s.py.Unit, Format: s.src.Shape().Format}
}

func (s *tiledSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("tiling: tile %d of %d: %w", i, s.Len(), frame.ErrOutOfRange)
	}
	n := s.grid()
	src, err := s.src.Frame(ctx, i/n)
	if err != nil {
		return nil, err
	}
	t := i % n
	return s.cut(src, t%s.px.Count, t/s.px.Count)
}

func (s *tiledSeq) cut(f *frame.Frame, col, row int) (*frame.Frame, error) {
	if f.Width != s.px.Extent || f.Height != s.py.Extent {
		return nil, fmt.Errorf("tiling: %w: source frame is %s, plan expects %dx%d",
			ErrShapeMismatch, f.Shape(), s.px.Extent, s.py.Extent)
	}

	x0, y0 := s.px.Origin(col), s.py.Origin(row)
	w, h := s.px.Unit, s.py.Unit
	var edges fill.Edges
	if over := x0 + w - s.px.Extent; over > 0 {
		edges.Right = over
		w -= over
	}
	if over := y0 + h - s.py.Extent; over > 0 {
		edges.Bottom = over
		h -= over
	}

	tile, err := f.SubRect(x0, y0, w, h)
	if err != nil {
		return nil, err
	}
	if edges.Any() {
		tile, err = fill.Extend(tile, edges, s.opts.Fill)
		if err != nil {
			return nil, err
		}
	}

	fillName := s.opts.Fill.Mode.String()
	err = attachAxes(tile, s.runID, []meta.AxisTag{
		axisTag(s.px, meta.AxisWidth, fillName, col),
		axisTag(s.py, meta.AxisHeight, fillName, row),
	})
	if err != nil {
		return nil, err
	}
	return tile, nil
}
