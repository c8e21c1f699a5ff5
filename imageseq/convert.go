package imageseq

import (
	"fmt"
	"image"

	"github.com/e7canasta/frametiler/frame"
)

// toImage wraps frame data in the matching stdlib image type. Gray8
// and RGBA32 copy straight across; RGB24 grows an opaque alpha channel
// the way the GStreamer RGB caps layout converts without surprises.
func toImage(f *frame.Frame) (image.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("imageseq: %w", err)
	}
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Format {
	case frame.Gray8:
		img := image.NewGray(rect)
		copy(img.Pix, f.Data)
		return img, nil
	case frame.RGB24:
		img := image.NewNRGBA(rect)
		for i := 0; i < f.Width*f.Height; i++ {
			img.Pix[i*4+0] = f.Data[i*3+0]
			img.Pix[i*4+1] = f.Data[i*3+1]
			img.Pix[i*4+2] = f.Data[i*3+2]
			img.Pix[i*4+3] = 255
		}
		return img, nil
	case frame.RGBA32:
		img := image.NewNRGBA(rect)
		copy(img.Pix, f.Data)
		return img, nil
	default:
		return nil, fmt.Errorf("imageseq: unsupported frame format %s", f.Format)
	}
}

// fromImage converts a decoded image to a frame. Grayscale images come
// back as Gray8, opaque color images as RGB24, anything with real
// alpha as RGBA32, so a written sequence reads back in its original
// format.
func fromImage(img image.Image) *frame.Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := img.(*image.Gray); ok {
		f := frame.New(frame.Shape{Width: w, Height: h, Format: frame.Gray8})
		for y := 0; y < h; y++ {
			copy(f.Row(y), gray.Pix[(y+b.Min.Y-gray.Rect.Min.Y)*gray.Stride+(b.Min.X-gray.Rect.Min.X):])
		}
		return f
	}

	format := frame.RGBA32
	if opaque(img) {
		format = frame.RGB24
	}
	f := frame.New(frame.Shape{Width: w, Height: h, Format: format})
	ch := format.Channels()
	for y := 0; y < h; y++ {
		row := f.Row(y)
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA() returns alpha-premultiplied 16-bit values.
			if a > 0 && a < 0xffff {
				r = r * 0xffff / a
				g = g * 0xffff / a
				bl = bl * 0xffff / a
			}
			row[x*ch+0] = byte(r >> 8)
			row[x*ch+1] = byte(g >> 8)
			row[x*ch+2] = byte(bl >> 8)
			if ch == 4 {
				row[x*ch+3] = byte(a >> 8)
			}
		}
	}
	return f
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
