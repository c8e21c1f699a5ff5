// Package blend holds the weight ramps and sample-mixing kernels used by
// fade reconstruction and crossfades.
//
// Contract: destination frames passed to the in-place kernels are scratch
// frames still under construction by the calling operation; they must not
// have been published to any consumer yet. Published frames stay immutable.
package blend

import (
	"fmt"

	"github.com/e7canasta/frametiler/frame"
)

// SeamWeight returns the weight of the earlier unit at offset x inside a
// spatial overlap of the given size: the symmetric half-sample linear
// ramp 1 - (2x+1)/(2*overlap). The two sides of a seam always sum to
// exactly 1, and the ramp stays strictly inside (0,1) so the blend is
// continuous with the single-unit regions on both sides.
func SeamWeight(x, overlap int) float64 {
	return 1 - float64(2*x+1)/float64(2*overlap)
}

// CrossWeight returns the weight of the later sequence at frame x of a
// temporal crossfade of the given length: (x+1)/(length+1). Never 0 or 1
// inside the fade, so no frame of the fade is a verbatim copy.
func CrossWeight(x, length int) float64 {
	return float64(x+1) / float64(length+1)
}

// mix rounds wa*a + (1-wa)*b half up into a byte.
func mix(a, b byte, wa float64) byte {
	v := wa*float64(a) + (1-wa)*float64(b) + 0.5
	if v >= 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return byte(v)
}

// MergeFrames blends two equally shaped frames sample by sample, with wa
// the weight of a. The result inherits a's header and property bag.
func MergeFrames(a, b *frame.Frame, wa float64) (*frame.Frame, error) {
	if a.Shape() != b.Shape() {
		return nil, fmt.Errorf("blend: cannot merge %s with %s", a.Shape(), b.Shape())
	}
	out := a.CloneHeader(a.Shape())
	for i := range a.Data {
		out.Data[i] = mix(a.Data[i], b.Data[i], wa)
	}
	return out, nil
}

// CopyRect blits a w*h pixel rectangle from src at (sx, sy) into the
// scratch frame dst at (dx, dy). Formats must match; bounds are the
// caller's responsibility.
func CopyRect(dst *frame.Frame, dx, dy int, src *frame.Frame, sx, sy, w, h int) {
	ch := dst.Format.Channels()
	for row := 0; row < h; row++ {
		d := dst.PixOffset(dx, dy+row)
		s := src.PixOffset(sx, sy+row)
		copy(dst.Data[d:d+w*ch], src.Data[s:s+w*ch])
	}
}

// HSeam blends a vertical overlap strip in place: dst already holds the
// earlier unit's samples at columns [dx, dx+overlap) over rows
// [dy, dy+h); src holds the later unit's samples at columns
// [sx, sx+overlap). Each column x is mixed with SeamWeight(x, overlap).
func HSeam(dst *frame.Frame, dx, dy int, src *frame.Frame, sx, sy, overlap, h int) {
	ch := dst.Format.Channels()
	for x := 0; x < overlap; x++ {
		wa := SeamWeight(x, overlap)
		for row := 0; row < h; row++ {
			d := dst.PixOffset(dx+x, dy+row)
			s := src.PixOffset(sx+x, sy+row)
			for c := 0; c < ch; c++ {
				dst.Data[d+c] = mix(dst.Data[d+c], src.Data[s+c], wa)
			}
		}
	}
}

// VSeam is HSeam rotated: dst holds the earlier unit's samples at rows
// [dy, dy+overlap) over columns [dx, dx+w); src holds the later unit's
// rows starting at (sx, sy). Each row y is mixed with SeamWeight(y, overlap).
func VSeam(dst *frame.Frame, dx, dy int, src *frame.Frame, sx, sy, overlap, w int) {
	ch := dst.Format.Channels()
	for y := 0; y < overlap; y++ {
		wa := SeamWeight(y, overlap)
		d := dst.PixOffset(dx, dy+y)
		s := src.PixOffset(sx, sy+y)
		for i := 0; i < w*ch; i++ {
			dst.Data[d+i] = mix(dst.Data[d+i], src.Data[s+i], wa)
		}
	}
}
