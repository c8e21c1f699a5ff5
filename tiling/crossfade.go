package tiling

import (
	"context"
	"fmt"

	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/blend"
)

// Crossfade joins two sequences with a temporal blend: the last
// `length` frames of a are faded into the first `length` frames of b,
// so the output is a.Len()+b.Len()-length frames long. Zero length
// degenerates into plain concatenation.
func Crossfade(a, b frame.Sequence, length int) (frame.Sequence, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return nil, fmt.Errorf("tiling: crossfade: %w", frame.ErrEmptySequence)
	}
	if length < 0 || length > a.Len() || length > b.Len() {
		return nil, fmt.Errorf("tiling: %w: fade length %d with sequences of %d and %d frames",
			ErrInvalidParameter, length, a.Len(), b.Len())
	}
	if a.Shape() != b.Shape() {
		return nil, fmt.Errorf("tiling: %w: cannot crossfade %s into %s",
			ErrShapeMismatch, a.Shape(), b.Shape())
	}
	return &crossfadeSeq{a: a, b: b, length: length}, nil
}

type crossfadeSeq struct {
	a, b   frame.Sequence
	length int
}

func (s *crossfadeSeq) Len() int { return s.a.Len() + s.b.Len() - s.length }

func (s *crossfadeSeq) Shape() frame.Shape { return s.a.Shape() }

func (s *crossfadeSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("tiling: crossfade frame %d of %d: %w", i, s.Len(), frame.ErrOutOfRange)
	}
	fadeStart := s.a.Len() - s.length
	switch {
	case i < fadeStart:
		return s.a.Frame(ctx, i)
	case i >= s.a.Len():
		return s.b.Frame(ctx, i-fadeStart)
	default:
		x := i - fadeStart
		fa, err := s.a.Frame(ctx, i)
		if err != nil {
			return nil, err
		}
		fb, err := s.b.Frame(ctx, x)
		if err != nil {
			return nil, err
		}
		later := blend.CrossWeight(x, s.length)
		out, err := blend.MergeFrames(fa, fb, 1-later)
		if err != nil {
			return nil, fmt.Errorf("tiling: %w: %v", ErrShapeMismatch, err)
		}
		return out, nil
	}
}
