package tiling

import (
	"context"
	"fmt"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"
)

// Pad grows every frame of src to the target extents with the given
// fill, recording the margins on each frame so Crop can undo them
// later. Padding an already padded sequence overwrites the record;
// only the most recent pad is undoable.
func Pad(src frame.Sequence, opts PadOptions) (frame.Sequence, error) {
	shape := src.Shape()
	if !shape.Valid() {
		return nil, fmt.Errorf("tiling: %w: source shape %s", ErrInvalidParameter, shape)
	}
	tw, th := opts.Width, opts.Height
	if tw == 0 {
		tw = shape.Width
	}
	if th == 0 {
		th = shape.Height
	}
	if tw < shape.Width || th < shape.Height {
		return nil, fmt.Errorf("tiling: %w: pad target %dx%d smaller than source %dx%d",
			ErrInvalidParameter, tw, th, shape.Width, shape.Height)
	}
	if tw == shape.Width && th == shape.Height {
		return src, nil
	}
	if err := opts.Fill.ValidateSpatial(); err != nil {
		return nil, err
	}

	var e fill.Edges
	mw, mh := tw-shape.Width, th-shape.Height
	if opts.Center {
		e.Left, e.Top = mw/2, mh/2
	}
	e.Right, e.Bottom = mw-e.Left, mh-e.Top

	return &padSeq{src: src, opts: opts, edges: e, srcW: shape.Width, srcH: shape.Height}, nil
}

type padSeq struct {
	src        frame.Sequence
	opts       PadOptions
	edges      fill.Edges
	srcW, srcH int
}

func (s *padSeq) Len() int { return s.src.Len() }

func (s *padSeq) Shape() frame.Shape {
	return frame.Shape{
		Width:  s.srcW + s.edges.Left + s.edges.Right,
		Height: s.srcH + s.edges.Top + s.edges.Bottom,
		Format: s.src.Shape().Format,
	}
}

func (s *padSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	f, err := s.src.Frame(ctx, i)
	if err != nil {
		return nil, err
	}
	if f.Width != s.srcW || f.Height != s.srcH {
		return nil, fmt.Errorf("tiling: %w: frame %d is %dx%d, pad plan expects %dx%d",
			ErrShapeMismatch, i, f.Width, f.Height, s.srcW, s.srcH)
	}
	out, err := fill.Extend(f, s.edges, s.opts.Fill)
	if err != nil {
		return nil, err
	}
	err = meta.AttachPad(out, meta.PadTag{
		OrigW: s.srcW, OrigH: s.srcH,
		Left: s.edges.Left, Right: s.edges.Right,
		Top: s.edges.Top, Bottom: s.edges.Bottom,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Crop undoes the most recent Pad recorded on src's frames. The
// recorded margins are scaled to the current frame size first, so a
// resize between Pad and Crop comes out at the resized geometry. The
// two axes may scale independently here: the pad record pins both
// original extents, so there is no ambiguity for the detector to
// resolve.
func Crop(ctx context.Context, src frame.Sequence) (frame.Sequence, error) {
	if src.Len() == 0 {
		return nil, fmt.Errorf("tiling: crop: %w", frame.ErrEmptySequence)
	}
	first, err := src.Frame(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("tiling: inspect first frame: %w", err)
	}
	rec, present, err := meta.PadFromFrame(first)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}
	if !present {
		return nil, fmt.Errorf("tiling: %w: frames carry no pad record", ErrMissingParameter)
	}

	fx, err := axis.Detect(first.Width, rec.OrigW+rec.Left+rec.Right)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}
	fy, err := axis.Detect(first.Height, rec.OrigH+rec.Top+rec.Bottom)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}

	x0 := axis.ScaleRound(rec.Left, fx)
	y0 := axis.ScaleRound(rec.Top, fy)
	w := axis.ScaleRound(rec.OrigW, fx)
	h := axis.ScaleRound(rec.OrigH, fy)
	if x0+w > first.Width {
		w = first.Width - x0
	}
	if y0+h > first.Height {
		h = first.Height - y0
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("tiling: %w: pad record %+v does not fit a %dx%d frame",
			ErrShapeMismatch, rec, first.Width, first.Height)
	}

	return &cropSeq{
		src: src,
		x:   x0, y: y0, w: w, h: h,
		expectW: first.Width, expectH: first.Height,
		format: first.Format,
	}, nil
}

// CropRect extracts a fixed rectangle from every frame.
func CropRect(src frame.Sequence, x, y, w, h int) (frame.Sequence, error) {
	shape := src.Shape()
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > shape.Width || y+h > shape.Height {
		return nil, fmt.Errorf("tiling: %w: rect %dx%d at (%d,%d) outside %s",
			ErrInvalidParameter, w, h, x, y, shape)
	}
	return &cropSeq{
		src: src,
		x:   x, y: y, w: w, h: h,
		expectW: shape.Width, expectH: shape.Height,
		format: shape.Format,
	}, nil
}

type cropSeq struct {
	src              frame.Sequence
	x, y, w, h       int
	expectW, expectH int
	format           frame.Format
}

func (s *cropSeq) Len() int { return s.src.Len() }

func (s *cropSeq) Shape() frame.Shape {
	return frame.Shape{Width: s.w, Height: s.h, Format: s.format}
}

func (s *cropSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	f, err := s.src.Frame(ctx, i)
	if err != nil {
		return nil, err
	}
	if f.Width != s.expectW || f.Height != s.expectH {
		return nil, fmt.Errorf("tiling: %w: frame %d is %dx%d, crop resolved against %dx%d",
			ErrInconsistentScale, i, f.Width, f.Height, s.expectW, s.expectH)
	}
	out, err := f.SubRect(s.x, s.y, s.w, s.h)
	if err != nil {
		return nil, err
	}
	meta.StripPad(out)
	return out, nil
}

// Mod pads frames on the right and bottom up to the next multiple of
// each modulus, the alignment transforms with fixed block or patch
// sizes need. Already aligned axes stay untouched.
func Mod(src frame.Sequence, modW, modH int, spec fill.Spec) (frame.Sequence, error) {
	if modW <= 0 || modH <= 0 {
		return nil, fmt.Errorf("tiling: %w: moduli %dx%d", ErrInvalidParameter, modW, modH)
	}
	shape := src.Shape()
	tw := shape.Width + (modW-shape.Width%modW)%modW
	th := shape.Height + (modH-shape.Height%modH)%modH
	return Pad(src, PadOptions{Width: tw, Height: th, Fill: spec})
}
