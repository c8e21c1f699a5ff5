package tiling

import (
	"context"
	"fmt"
	"math"

	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/internal/axis"
	"github.com/e7canasta/frametiler/internal/blend"
	"github.com/e7canasta/frametiler/meta"
)

// Unwindow rebuilds the original timeline from a concatenated window
// stream produced by Window. Geometry comes from the unit tags unless
// overridden through opts; a uniform temporal resample applied to the
// windows (frame-rate change) is detected from the stream length and
// the reconstruction runs in the resampled timeline.
func Unwindow(ctx context.Context, src frame.Sequence, opts UnwindowOptions) (frame.Sequence, error) {
	if src.Len() == 0 {
		return nil, fmt.Errorf("tiling: unwindow: %w", frame.ErrEmptySequence)
	}
	first, err := src.Frame(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("tiling: inspect first unit: %w", err)
	}
	tag, tagged, err := meta.FromFrame(first)
	if err != nil {
		return nil, fmt.Errorf("tiling: first unit: %w", err)
	}
	var tTag *meta.AxisTag
	if tagged {
		if a, ok := tag.Axis(meta.AxisTime); ok {
			tTag = &a
		}
	}

	e, u, o, pol, err := axisParams("time", tTag, opts.T)
	if err != nil {
		return nil, err
	}
	nominal, err := axis.New(e, u, o, pol)
	if err != nil {
		return nil, fmt.Errorf("tiling: time axis: %w", err)
	}

	unitIn, lastLen, factor, err := resolveWindowLength(nominal, src.Len())
	if err != nil {
		return nil, err
	}
	scaled, err := scalePlan(nominal, factor, unitIn)
	if err != nil {
		return nil, err
	}
	if d := scaled.Size(scaled.Count-1) - lastLen; d > 1 || d < -1 {
		return nil, fmt.Errorf("tiling: %w: final window holds %d frames, scaled geometry implies %d",
			ErrInconsistentScale, lastLen, scaled.Size(scaled.Count-1))
	}

	outLen := (scaled.Count-1)*scaled.Stride + lastLen
	if scaled.Extent < outLen {
		outLen = scaled.Extent
	}

	return &unwindowSeq{
		src:     src,
		opts:    opts,
		scaled:  scaled,
		lastLen: lastLen,
		outLen:  outLen,
		shape:   src.Shape(),
		tagged:  tagged,
		ref:     tag,
	}, nil
}

// resolveWindowLength derives the materialized window length from the
// stream length and the tag-space plan. With uniform windows this is
// exact division; a none-policy plan has a short final window, so the
// length is estimated from the total and then checked against the
// factor it implies.
func resolveWindowLength(nominal axis.Plan, srcLen int) (unitIn, lastLen int, factor float64, err error) {
	n := nominal.Count
	if nominal.Policy == axis.None && nominal.Deficit > 0 {
		shortLast := nominal.Unit - nominal.Deficit
		if n == 1 {
			factor = float64(srcLen) / float64(shortLast)
			return axis.ScaleRound(nominal.Unit, factor), srcLen, factor, nil
		}
		nominalLen := (n-1)*nominal.Unit + shortLast
		est := float64(srcLen) / float64(nominalLen)
		unitIn = axis.ScaleRound(nominal.Unit, est)
		lastLen = srcLen - (n-1)*unitIn
		if unitIn <= 0 || lastLen <= 0 || lastLen > unitIn {
			return 0, 0, 0, fmt.Errorf("tiling: %w: %d frames cannot split into %d windows of tagged length %d",
				ErrShapeMismatch, srcLen, n, nominal.Unit)
		}
		factor = float64(unitIn) / float64(nominal.Unit)
		want := axis.ScaleRound(shortLast, factor)
		if math.Abs(float64(lastLen-want)) > axis.DefaultTolerance+1e-9 {
			return 0, 0, 0, fmt.Errorf("tiling: %w: final window holds %d frames, factor %.4f implies %d",
				ErrInconsistentScale, lastLen, factor, want)
		}
		return unitIn, lastLen, factor, nil
	}

	if srcLen%n != 0 {
		return 0, 0, 0, fmt.Errorf("tiling: %w: %d frames do not split into %d equal windows",
			ErrShapeMismatch, srcLen, n)
	}
	unitIn = srcLen / n
	return unitIn, unitIn, float64(unitIn) / float64(nominal.Unit), nil
}

type unwindowSeq struct {
	src     frame.Sequence
	opts    UnwindowOptions
	scaled  axis.Plan
	lastLen int
	outLen  int
	shape   frame.Shape
	tagged  bool
	ref     meta.Tag
}

func (s *unwindowSeq) Len() int { return s.outLen }

func (s *unwindowSeq) Shape() frame.Shape { return s.shape }

func (s *unwindowSeq) windowSize(w int) int {
	if w == s.scaled.Count-1 {
		return s.lastLen
	}
	return s.scaled.Unit
}

func (s *unwindowSeq) Frame(ctx context.Context, k int) (*frame.Frame, error) {
	if k < 0 || k >= s.outLen {
		return nil, fmt.Errorf("tiling: frame %d of %d: %w", k, s.outLen, frame.ErrOutOfRange)
	}
	if s.opts.Fade {
		return s.fadeFrame(ctx, k)
	}
	return s.trimFrame(ctx, k)
}

// unit pulls frame off of window w and validates its tag before use.
func (s *unwindowSeq) unit(ctx context.Context, w, off int) (*frame.Frame, error) {
	f, err := s.src.Frame(ctx, w*s.scaled.Unit+off)
	if err != nil {
		return nil, err
	}
	if f.Format != s.shape.Format {
		return nil, fmt.Errorf("tiling: %w: window %d frame is %v, first unit was %v",
			ErrShapeMismatch, w, f.Format, s.shape.Format)
	}
	if err := checkUnitTag(f, s.tagged, s.ref, map[string]int{meta.AxisTime: w}); err != nil {
		return nil, err
	}
	return f, nil
}

// trimFrame serves position k from the single window whose crop core
// covers it: overlaps split at the seam midline, first window keeps
// its full head, last window its full tail.
func (s *unwindowSeq) trimFrame(ctx context.Context, k int) (*frame.Frame, error) {
	w := (k - s.scaled.Overlap/2) / s.scaled.Stride
	if w < 0 {
		w = 0
	}
	if w > s.scaled.Count-1 {
		w = s.scaled.Count - 1
	}
	f, err := s.unit(ctx, w, k-s.scaled.Origin(w))
	if err != nil {
		return nil, err
	}
	out := detach(f)
	if err := stripAxes(out, meta.AxisTime); err != nil {
		return nil, err
	}
	return out, nil
}

// fadeFrame blends every window covering position k, chained earliest
// to latest: each later window enters through its leading crossfade
// ramp, so complementary weights always sum to 1 and a deep overlap
// (past the stride) degrades gracefully into repeated pairwise fades.
func (s *unwindowSeq) fadeFrame(ctx context.Context, k int) (*frame.Frame, error) {
	lo, hi := s.scaled.Covering(k)
	var acc *frame.Frame
	for w := lo; w <= hi; w++ {
		off := k - s.scaled.Origin(w)
		if off < 0 || off >= s.windowSize(w) {
			continue
		}
		f, err := s.unit(ctx, w, off)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = f
			continue
		}
		seam := s.scaled.SeamLen(w)
		if ws := s.windowSize(w); ws < seam {
			seam = ws
		}
		later := blend.CrossWeight(off, seam)
		merged, err := blend.MergeFrames(acc, f, 1-later)
		if err != nil {
			return nil, fmt.Errorf("tiling: %w: %v", ErrShapeMismatch, err)
		}
		acc = merged
	}
	if acc == nil {
		return nil, fmt.Errorf("tiling: %w: no window covers frame %d", ErrShapeMismatch, k)
	}
	out := detach(acc)
	if err := stripAxes(out, meta.AxisTime); err != nil {
		return nil, err
	}
	return out, nil
}
