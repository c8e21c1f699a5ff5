package tiling

import (
	"context"
	"fmt"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"
)

// TPad extends src in time: Start synthesized frames before the first
// frame and End after the last, per the temporal fill strategy. Every
// emitted frame records the padding so Trim can undo it.
func TPad(src frame.Sequence, opts TPadOptions) (frame.Sequence, error) {
	if src.Len() == 0 {
		return nil, fmt.Errorf("tiling: tpad: %w", frame.ErrEmptySequence)
	}
	if opts.Start < 0 || opts.End < 0 {
		return nil, fmt.Errorf("tiling: %w: negative pad %d/%d", ErrInvalidParameter, opts.Start, opts.End)
	}
	if opts.Start == 0 && opts.End == 0 {
		return src, nil
	}
	if err := opts.Fill.ValidateTemporal(); err != nil {
		return nil, err
	}
	return &tpadSeq{src: src, opts: opts}, nil
}

type tpadSeq struct {
	src  frame.Sequence
	opts TPadOptions
}

func (s *tpadSeq) Len() int { return s.src.Len() + s.opts.Start + s.opts.End }

func (s *tpadSeq) Shape() frame.Shape { return s.src.Shape() }

func (s *tpadSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("tiling: padded frame %d of %d: %w", i, s.Len(), frame.ErrOutOfRange)
	}
	n := s.src.Len()
	srcIdx := i - s.opts.Start

	var out *frame.Frame
	if srcIdx < 0 || srcIdx >= n {
		switch s.opts.Fill.Mode {
		case fill.Solid:
			out = fill.SolidFrame(s.src.Shape(), s.opts.Fill)
		case fill.Wrap:
			srcIdx = wrapIndex(srcIdx, n)
		case fill.Repeat:
			srcIdx = clampIndex(srcIdx, n)
		case fill.Mirror:
			srcIdx = reflectIndex(srcIdx, n)
		default:
			return nil, fmt.Errorf("tiling: %w: %v on the time axis", ErrUnsupportedMode, s.opts.Fill.Mode)
		}
	}
	if out == nil {
		f, err := s.src.Frame(ctx, srcIdx)
		if err != nil {
			return nil, err
		}
		out = detach(f)
	}

	err := meta.AttachTPad(out, meta.TPadTag{
		OrigLen: n, Start: s.opts.Start, End: s.opts.End,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Trim undoes the most recent TPad recorded on src's frames. The
// recorded margins are scaled to the current sequence length first, so
// a frame-rate change between TPad and Trim comes out at the resampled
// timeline.
func Trim(ctx context.Context, src frame.Sequence) (frame.Sequence, error) {
	if src.Len() == 0 {
		return nil, fmt.Errorf("tiling: trim: %w", frame.ErrEmptySequence)
	}
	first, err := src.Frame(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("tiling: inspect first frame: %w", err)
	}
	rec, present, err := meta.TPadFromFrame(first)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}
	if !present {
		return nil, fmt.Errorf("tiling: %w: frames carry no temporal pad record", ErrMissingParameter)
	}

	ft, err := axis.Detect(src.Len(), rec.OrigLen+rec.Start+rec.End)
	if err != nil {
		return nil, fmt.Errorf("tiling: %w", err)
	}
	start := axis.ScaleRound(rec.Start, ft)
	length := axis.ScaleRound(rec.OrigLen, ft)
	if start+length > src.Len() {
		length = src.Len() - start
	}
	if length < 1 {
		return nil, fmt.Errorf("tiling: %w: tpad record %+v does not fit %d frames",
			ErrShapeMismatch, rec, src.Len())
	}
	return &trimSeq{src: src, start: start, length: length}, nil
}

type trimSeq struct {
	src    frame.Sequence
	start  int
	length int
}

func (s *trimSeq) Len() int { return s.length }

func (s *trimSeq) Shape() frame.Shape { return s.src.Shape() }

func (s *trimSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	if i < 0 || i >= s.length {
		return nil, fmt.Errorf("tiling: trimmed frame %d of %d: %w", i, s.length, frame.ErrOutOfRange)
	}
	f, err := s.src.Frame(ctx, s.start+i)
	if err != nil {
		return nil, err
	}
	out := detach(f)
	meta.StripTPad(out)
	return out, nil
}
