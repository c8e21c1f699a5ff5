package fill

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/e7canasta/frametiler/frame"
)

// ErrUnsupportedMode is returned for unknown mode names, modes not
// applicable in context, and Synth specs with no registered synthesizer.
var ErrUnsupportedMode = errors.New("unsupported fill mode")

// Mode names a fill strategy from the closed set.
type Mode int

const (
	// Mirror reflects content across the boundary (edge sample included),
	// ping-ponging when the deficit exceeds the source size.
	Mirror Mode = iota

	// Wrap tiles content from the opposite edge (temporal: loop).
	Wrap

	// Repeat replicates the edge sample (temporal: hold the edge frame).
	Repeat

	// Falloff extends the edge sample with a linear falloff toward the
	// local mean, a cheap seam-hiding fill for margins.
	Falloff

	// Solid fills with a constant color.
	Solid

	// Synth delegates to a registered Synthesizer.
	Synth
)

func (m Mode) String() string {
	switch m {
	case Mirror:
		return "mirror"
	case Wrap:
		return "wrap"
	case Repeat:
		return "repeat"
	case Falloff:
		return "falloff"
	case Solid:
		return "solid"
	case Synth:
		return "synth"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name (and its aliases) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "mirror":
		return Mirror, nil
	case "wrap", "loop":
		return Wrap, nil
	case "repeat", "edge":
		return Repeat, nil
	case "falloff", "fillmargins":
		return Falloff, nil
	case "solid", "color":
		return Solid, nil
	case "synth":
		return Synth, nil
	default:
		return 0, fmt.Errorf("fill: %w: %q", ErrUnsupportedMode, s)
	}
}

// Spec selects a mode plus its parameters.
type Spec struct {
	Mode Mode

	// Color holds normalized [0,1] channel values for Solid. Shorter
	// specs are adapted to the frame format: a single value paints all
	// color channels, RGB against a gray frame collapses to luma, and a
	// missing alpha defaults to opaque.
	Color []float64

	// Synth names the registered synthesizer for Mode Synth.
	Synth string
}

// ValidateSpatial checks the spec for use on width/height borders.
func (s Spec) ValidateSpatial() error {
	switch s.Mode {
	case Mirror, Wrap, Repeat, Falloff, Solid:
		return nil
	case Synth:
		if _, ok := lookupSynthesizer(s.Synth); !ok {
			return fmt.Errorf("fill: %w: no synthesizer registered as %q (have %v)",
				ErrUnsupportedMode, s.Synth, Synthesizers())
		}
		return nil
	default:
		return fmt.Errorf("fill: %w: %v", ErrUnsupportedMode, s.Mode)
	}
}

// ValidateTemporal checks the spec for use on the time axis, where only
// frame-ordering fills and solid frames make sense.
func (s Spec) ValidateTemporal() error {
	switch s.Mode {
	case Mirror, Wrap, Repeat, Solid:
		return nil
	default:
		return fmt.Errorf("fill: %w: %v is spatial-only", ErrUnsupportedMode, s.Mode)
	}
}

// Synthesizer is the delegation seam for heavy boundary synthesis
// (inpainting, learned fills). Implementations must be pure: same frame
// and edges in, same content out, no retained references.
type Synthesizer interface {
	// Extend returns a copy of f grown by the given edges, with the new
	// border samples synthesized from the frame content.
	Extend(f *frame.Frame, e Edges) (*frame.Frame, error)
}

var (
	synthMu  sync.RWMutex
	synthReg = make(map[string]Synthesizer)
)

// RegisterSynthesizer makes a synthesizer selectable as Mode Synth under
// the given name. Registering twice replaces the previous entry.
func RegisterSynthesizer(name string, s Synthesizer) {
	synthMu.Lock()
	defer synthMu.Unlock()
	synthReg[name] = s
}

// Synthesizers lists the registered names, sorted.
func Synthesizers() []string {
	synthMu.RLock()
	defer synthMu.RUnlock()
	names := make([]string, 0, len(synthReg))
	for name := range synthReg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupSynthesizer(name string) (Synthesizer, bool) {
	synthMu.RLock()
	defer synthMu.RUnlock()
	s, ok := synthReg[name]
	return s, ok
}

// ColorBytes resolves a Spec color against a format. Missing channels
// default to black and opaque alpha; RGB against Gray8 collapses to
// Rec.601 luma.
func ColorBytes(spec Spec, format frame.Format) []byte {
	ch := format.Channels()
	out := make([]byte, ch)
	c := spec.Color

	clampByte := func(v float64) byte {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return byte(v*255 + 0.5)
	}

	switch {
	case len(c) == 0:
		// Black; alpha opaque below.
	case len(c) == 1:
		for i := 0; i < ch && i < 3; i++ {
			out[i] = clampByte(c[0])
		}
	case format == frame.Gray8 && len(c) >= 3:
		out[0] = clampByte(0.299*c[0] + 0.587*c[1] + 0.114*c[2])
	default:
		for i := 0; i < ch && i < len(c); i++ {
			out[i] = clampByte(c[i])
		}
	}
	if format == frame.RGBA32 && len(c) < 4 {
		out[3] = 255
	}
	return out
}

// SolidFrame builds a frame of the given shape filled with the spec color.
func SolidFrame(s frame.Shape, spec Spec) *frame.Frame {
	f := frame.New(s)
	color := ColorBytes(spec, s.Format)
	ch := s.Format.Channels()
	for i := 0; i < len(f.Data); i += ch {
		copy(f.Data[i:i+ch], color)
	}
	return f
}
