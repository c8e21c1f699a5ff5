package fill

import (
	"fmt"

	"github.com/e7canasta/frametiler/frame"
)

// Edges describes how much to grow each frame border, in pixels.
type Edges struct {
	Left, Right, Top, Bottom int
}

// Any reports whether at least one border grows.
func (e Edges) Any() bool {
	return e.Left > 0 || e.Right > 0 || e.Top > 0 || e.Bottom > 0
}

func (e Edges) valid() bool {
	return e.Left >= 0 && e.Right >= 0 && e.Top >= 0 && e.Bottom >= 0
}

// falloffWindow is how many edge rows/columns feed the local mean.
const falloffWindow = 8

// Extend grows f by the given edges using the spec's strategy. The input
// frame is never modified; with no edges to grow it is returned as is.
//
// Horizontal borders are materialized first, then vertical borders over
// the widened intermediate, so corners are the vertical extension of the
// horizontal one (for Mirror this yields the diagonal reflection).
func Extend(f *frame.Frame, e Edges, spec Spec) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !e.valid() {
		return nil, fmt.Errorf("fill: negative edge in %+v", e)
	}
	if !e.Any() {
		return f, nil
	}

	if spec.Mode == Synth {
		s, ok := lookupSynthesizer(spec.Synth)
		if !ok {
			return nil, fmt.Errorf("fill: %w: no synthesizer registered as %q (have %v)",
				ErrUnsupportedMode, spec.Synth, Synthesizers())
		}
		return s.Extend(f, e)
	}
	if err := spec.ValidateSpatial(); err != nil {
		return nil, err
	}

	out := extendH(f, e.Left, e.Right, spec)
	out = extendV(out, e.Top, e.Bottom, spec)
	return out, nil
}

// foldMirror reflects index i into [0, n) duplicating the edge sample,
// ping-ponging with period 2n for arbitrarily deep borders.
func foldMirror(i, n int) int {
	m := i % (2 * n)
	if m < 0 {
		m += 2 * n
	}
	if m < n {
		return m
	}
	return 2*n - 1 - m
}

// foldWrap tiles index i into [0, n).
func foldWrap(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func extendH(f *frame.Frame, left, right int, spec Spec) *frame.Frame {
	if left == 0 && right == 0 {
		return f
	}
	ch := f.Format.Channels()
	outW := f.Width + left + right
	out := f.CloneHeader(frame.Shape{Width: outW, Height: f.Height, Format: f.Format})

	color := ColorBytes(spec, f.Format)
	for y := 0; y < f.Height; y++ {
		srcRow := f.Row(y)
		dstRow := out.Row(y)
		copy(dstRow[left*ch:], srcRow)

		switch spec.Mode {
		case Solid:
			for x := 0; x < left; x++ {
				copy(dstRow[x*ch:(x+1)*ch], color)
			}
			for x := left + f.Width; x < outW; x++ {
				copy(dstRow[x*ch:(x+1)*ch], color)
			}
		case Falloff:
			falloffRow(dstRow, srcRow, left, right, f.Width, ch)
		default:
			for x := 0; x < left; x++ {
				src := mapIdx(spec.Mode, x-left, f.Width)
				copy(dstRow[x*ch:(x+1)*ch], srcRow[src*ch:(src+1)*ch])
			}
			for x := left + f.Width; x < outW; x++ {
				src := mapIdx(spec.Mode, x-left, f.Width)
				copy(dstRow[x*ch:(x+1)*ch], srcRow[src*ch:(src+1)*ch])
			}
		}
	}
	return out
}

func extendV(f *frame.Frame, top, bottom int, spec Spec) *frame.Frame {
	if top == 0 && bottom == 0 {
		return f
	}
	ch := f.Format.Channels()
	outH := f.Height + top + bottom
	out := f.CloneHeader(frame.Shape{Width: f.Width, Height: outH, Format: f.Format})

	for y := 0; y < f.Height; y++ {
		copy(out.Row(top+y), f.Row(y))
	}

	color := ColorBytes(spec, f.Format)
	fillRow := func(dstY int) {
		dstRow := out.Row(dstY)
		switch spec.Mode {
		case Solid:
			for x := 0; x < f.Width; x++ {
				copy(dstRow[x*ch:(x+1)*ch], color)
			}
		default:
			src := mapIdx(spec.Mode, dstY-top, f.Height)
			copy(dstRow, f.Row(src))
		}
	}
	if spec.Mode == Falloff {
		falloffColumns(out, f, top, bottom, ch)
	} else {
		for y := 0; y < top; y++ {
			fillRow(y)
		}
		for y := top + f.Height; y < outH; y++ {
			fillRow(y)
		}
	}
	return out
}

func mapIdx(mode Mode, i, n int) int {
	switch mode {
	case Mirror:
		return foldMirror(i, n)
	case Wrap:
		return foldWrap(i, n)
	default:
		return clampIdx(i, n)
	}
}

// falloffRow fills the left and right margins of one row with a linear
// ramp from the edge sample toward the mean of the nearest
// falloffWindow samples.
func falloffRow(dstRow, srcRow []byte, left, right, width, ch int) {
	window := falloffWindow
	if window > width {
		window = width
	}
	for c := 0; c < ch; c++ {
		if left > 0 {
			edge := float64(srcRow[c])
			mean := 0.0
			for x := 0; x < window; x++ {
				mean += float64(srcRow[x*ch+c])
			}
			mean /= float64(window)
			for d := 1; d <= left; d++ {
				t := float64(d) / float64(left+1)
				dstRow[(left-d)*ch+c] = roundByte(edge + (mean-edge)*t)
			}
		}
		if right > 0 {
			edge := float64(srcRow[(width-1)*ch+c])
			mean := 0.0
			for x := width - window; x < width; x++ {
				mean += float64(srcRow[x*ch+c])
			}
			mean /= float64(window)
			for d := 1; d <= right; d++ {
				t := float64(d) / float64(right+1)
				dstRow[(left+width-1+d)*ch+c] = roundByte(edge + (mean-edge)*t)
			}
		}
	}
}

// falloffColumns fills the top and bottom margins of out; src is the
// unextended frame occupying rows [top, top+src.Height).
func falloffColumns(out, src *frame.Frame, top, bottom, ch int) {
	window := falloffWindow
	if window > src.Height {
		window = src.Height
	}
	for x := 0; x < src.Width; x++ {
		for c := 0; c < ch; c++ {
			if top > 0 {
				edge := float64(src.Data[src.PixOffset(x, 0)+c])
				mean := 0.0
				for y := 0; y < window; y++ {
					mean += float64(src.Data[src.PixOffset(x, y)+c])
				}
				mean /= float64(window)
				for d := 1; d <= top; d++ {
					t := float64(d) / float64(top+1)
					out.Data[out.PixOffset(x, top-d)+c] = roundByte(edge + (mean-edge)*t)
				}
			}
			if bottom > 0 {
				edge := float64(src.Data[src.PixOffset(x, src.Height-1)+c])
				mean := 0.0
				for y := src.Height - window; y < src.Height; y++ {
					mean += float64(src.Data[src.PixOffset(x, y)+c])
				}
				mean /= float64(window)
				for d := 1; d <= bottom; d++ {
					t := float64(d) / float64(bottom+1)
					out.Data[out.PixOffset(x, top+src.Height-1+d)+c] = roundByte(edge + (mean-edge)*t)
				}
			}
		}
	}
}

func roundByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}
