package frame

import (
	"fmt"
	"time"
)

// Format identifies the interleaved sample layout of a frame.
//
// All formats are 8 bits per channel, channels interleaved per pixel
// (the layout GStreamer delivers with format=RGB caps and the layout
// the stdlib image package converts to and from without surprises).
type Format int

const (
	// Gray8 is single-channel luma, 1 byte per pixel.
	Gray8 Format = iota

	// RGB24 is interleaved red, green, blue, 3 bytes per pixel.
	RGB24

	// RGBA32 is interleaved red, green, blue, alpha, 4 bytes per pixel.
	RGBA32
)

// Channels returns the number of interleaved channels, or 0 for an
// unknown format.
func (f Format) Channels() int {
	switch f {
	case Gray8:
		return 1
	case RGB24:
		return 3
	case RGBA32:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case Gray8:
		return "Gray8"
	case RGB24:
		return "RGB24"
	case RGBA32:
		return "RGBA32"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Shape is the nominal frame geometry of a sequence.
type Shape struct {
	Width  int
	Height int
	Format Format
}

// Valid reports whether the shape describes a materializable frame.
func (s Shape) Valid() bool {
	return s.Width > 0 && s.Height > 0 && s.Format.Channels() > 0
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d %s", s.Width, s.Height, s.Format)
}

// Frame is one rectangular grid of interleaved samples.
//
// IMMUTABILITY CONTRACT:
//   - Producers MUST NOT modify Data after handing the frame to a consumer
//   - Consumers MUST NOT modify Data (read-only access)
//   - Operations that change content always allocate a new frame
//
// Enforcement is documentation-based; runtime copies would defeat the
// bounded-memory pull model.
type Frame struct {
	// Data holds Width*Height*Format.Channels() interleaved sample bytes,
	// row-major, no padding between rows.
	Data []byte

	// Width of the frame in pixels
	Width int

	// Height of the frame in pixels
	Height int

	// Format is the interleaved channel layout of Data.
	Format Format

	// Timestamp is the source capture time, when known. Derived frames
	// inherit the timestamp of the source frame they were computed from.
	Timestamp time.Time

	// Props is the string property bag that rides along with the frame
	// through every operation. Unit metadata travels here.
	Props Props
}

// New allocates a zeroed frame of the given shape.
func New(s Shape) *Frame {
	return &Frame{
		Data:   make([]byte, s.Width*s.Height*s.Format.Channels()),
		Width:  s.Width,
		Height: s.Height,
		Format: s.Format,
	}
}

// Shape returns the frame's own geometry.
func (f *Frame) Shape() Shape {
	return Shape{Width: f.Width, Height: f.Height, Format: f.Format}
}

// Stride returns the number of bytes per row.
func (f *Frame) Stride() int {
	return f.Width * f.Format.Channels()
}

// PixOffset returns the byte offset of pixel (x, y) in Data.
func (f *Frame) PixOffset(x, y int) int {
	return (y*f.Width + x) * f.Format.Channels()
}

// Row returns the byte slice backing row y. The slice aliases Data;
// callers bound by the immutability contract must not write through it.
func (f *Frame) Row(y int) []byte {
	return f.Data[y*f.Stride() : (y+1)*f.Stride()]
}

// Validate checks that Data length matches the declared geometry.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("frame: %w", ErrNilFrame)
	}
	if !f.Shape().Valid() {
		return fmt.Errorf("frame: invalid shape %s", f.Shape())
	}
	want := f.Width * f.Height * f.Format.Channels()
	if len(f.Data) != want {
		return fmt.Errorf("frame: data length %d does not match %s (want %d)",
			len(f.Data), f.Shape(), want)
	}
	return nil
}

// Clone returns a deep copy: fresh Data and a copied property bag.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Data:      make([]byte, len(f.Data)),
		Width:     f.Width,
		Height:    f.Height,
		Format:    f.Format,
		Timestamp: f.Timestamp,
		Props:     f.Props.Clone(),
	}
	copy(out.Data, f.Data)
	return out
}

// CloneHeader returns a frame with the same geometry, timestamp and a
// copied property bag, but freshly allocated zeroed Data. Used by
// operations that compute new content for an existing position.
func (f *Frame) CloneHeader(s Shape) *Frame {
	return &Frame{
		Data:      make([]byte, s.Width*s.Height*s.Format.Channels()),
		Width:     s.Width,
		Height:    s.Height,
		Format:    s.Format,
		Timestamp: f.Timestamp,
		Props:     f.Props.Clone(),
	}
}

// SubRect copies the rectangle (x, y, w, h) into a new frame.
// The source property bag and timestamp are carried over.
func (f *Frame) SubRect(x, y, w, h int) (*Frame, error) {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > f.Width || y+h > f.Height {
		return nil, fmt.Errorf("frame: rect %dx%d at (%d,%d) outside %s",
			w, h, x, y, f.Shape())
	}
	ch := f.Format.Channels()
	out := f.CloneHeader(Shape{Width: w, Height: h, Format: f.Format})
	for row := 0; row < h; row++ {
		src := f.Data[f.PixOffset(x, y+row) : f.PixOffset(x, y+row)+w*ch]
		copy(out.Data[row*w*ch:], src)
	}
	return out, nil
}
