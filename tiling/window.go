package tiling

import (
	"context"
	"fmt"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/meta"
)

// Window cuts src into overlapping temporal windows and concatenates
// them: frame j of window w sits at output index w*Length + j, so
// frames inside an overlap region appear once per window that covers
// them. Each emitted frame is a tagged copy; the source frames are
// never modified.
func Window(src frame.Sequence, opts WindowOptions) (frame.Sequence, error) {
	if src.Len() == 0 {
		return nil, fmt.Errorf("tiling: window: %w", frame.ErrEmptySequence)
	}
	plan, err := axis.New(src.Len(), opts.Length, opts.Overlap, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("tiling: time axis: %w", err)
	}
	if plan.Padded() {
		if err := opts.Fill.ValidateTemporal(); err != nil {
			return nil, err
		}
	}
	return &windowSeq{
		src:   src,
		opts:  opts,
		plan:  plan,
		runID: meta.NewRunID(),
	}, nil
}

type windowSeq struct {
	src   frame.Sequence
	opts  WindowOptions
	plan  axis.Plan
	runID string
}

func (s *windowSeq) Len() int {
	n := s.plan.Count
	return (n-1)*s.plan.Unit + s.plan.Size(n-1)
}

func (s *windowSeq) Shape() frame.Shape { return s.src.Shape() }

func (s *windowSeq) Frame(ctx context.Context, i int) (*frame.Frame, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("tiling: window frame %d of %d: %w", i, s.Len(), frame.ErrOutOfRange)
	}
	w := i / s.plan.Unit
	if w > s.plan.Count-1 {
		w = s.plan.Count - 1
	}
	srcIdx := s.plan.Origin(w) + (i - w*s.plan.Unit)

	var f *frame.Frame
	var err error
	if srcIdx < s.plan.Extent {
		f, err = s.src.Frame(ctx, srcIdx)
		if err != nil {
			return nil, err
		}
		f = detach(f)
	} else {
		f, err = s.padFrame(ctx, srcIdx)
		if err != nil {
			return nil, err
		}
	}

	err = attachAxes(f, s.runID, []meta.AxisTag{
		axisTag(s.plan, meta.AxisTime, s.opts.Fill.Mode.String(), w),
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// padFrame materializes one frame of the pad region past the source
// end, per the temporal fill strategy.
func (s *windowSeq) padFrame(ctx context.Context, idx int) (*frame.Frame, error) {
	n := s.plan.Extent
	var srcIdx int
	switch s.opts.Fill.Mode {
	case fill.Solid:
		return fill.SolidFrame(s.src.Shape(), s.opts.Fill), nil
	case fill.Wrap:
		srcIdx = wrapIndex(idx, n)
	case fill.Repeat:
		srcIdx = clampIndex(idx, n)
	case fill.Mirror:
		srcIdx = reflectIndex(idx, n)
	default:
		return nil, fmt.Errorf("tiling: %w: %v on the time axis", ErrUnsupportedMode, s.opts.Fill.Mode)
	}
	f, err := s.src.Frame(ctx, srcIdx)
	if err != nil {
		return nil, err
	}
	return detach(f), nil
}

// reflectIndex maps a temporal index outside [0, n) back inside by
// reflection. The edge frame is not repeated: past the end the series
// continues n-2, n-3, ... with period 2n-2.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	p := 2*n - 2
	m := i % p
	if m < 0 {
		m += p
	}
	if m < n {
		return m
	}
	return p - m
}

// wrapIndex tiles a temporal index into [0, n).
func wrapIndex(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// clampIndex pins a temporal index to the nearest end of [0, n).
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
