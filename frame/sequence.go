package frame

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned by Sequence.Frame for an index outside [0, Len).
	ErrOutOfRange = errors.New("frame index out of range")

	// ErrNilFrame is returned when a nil frame is handed to a sequence.
	ErrNilFrame = errors.New("nil frame")

	// ErrFormatMismatch is returned when a frame's channel layout differs
	// from the sequence's declared format.
	ErrFormatMismatch = errors.New("frame format mismatch")

	// ErrEmptySequence is returned when an operation needs at least one frame.
	ErrEmptySequence = errors.New("empty sequence")
)

// Sequence is the pull interface every operation consumes and produces.
//
// Contract:
//   - Len is constant for the lifetime of the sequence
//   - Frame(ctx, i) is deterministic and idempotent: re-fetching an index
//     returns equivalent content, so callers may retry freely
//   - Frame never blocks beyond the underlying provider's own fetch; lazy
//     sequences pull at most the input frames covering position i
//   - Shape reports the nominal geometry; on the reconstruction path
//     individual frames may deviate when an external transform resized
//     units, and the consuming operation is responsible for detecting that
//
// Cancellation is the caller's responsibility: cancel ctx and abandon the
// pull sequence. There is no shared mutable state to roll back.
type Sequence interface {
	// Len returns the number of frames.
	Len() int

	// Shape returns the nominal frame geometry.
	Shape() Shape

	// Frame materializes the frame at index i.
	Frame(ctx context.Context, i int) (*Frame, error)
}

// MemSequence is a materialized, in-memory sequence.
//
// Not safe for concurrent Append; safe for concurrent Frame reads once
// fully built (frames are immutable by contract).
type MemSequence struct {
	shape  Shape
	frames []*Frame
}

// NewMem creates an empty in-memory sequence with a declared shape.
func NewMem(s Shape) *MemSequence {
	return &MemSequence{shape: s}
}

// FromFrames wraps existing frames into a sequence. The shape is taken
// from the first frame; all frames must share its channel layout.
// Per-frame pixel dimensions may vary (reconstruction-path input).
func FromFrames(frames []*Frame) (*MemSequence, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("frame: %w", ErrEmptySequence)
	}
	ms := NewMem(frames[0].Shape())
	for i, f := range frames {
		if err := ms.Append(f); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return ms, nil
}

// Append adds a frame. The channel layout must match the sequence format;
// pixel dimensions may differ from the nominal shape (externally resized
// units on the reconstruction path report their own size via Frame.Shape).
func (m *MemSequence) Append(f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Format != m.shape.Format {
		return fmt.Errorf("frame: %w: sequence is %s, frame is %s",
			ErrFormatMismatch, m.shape.Format, f.Format)
	}
	m.frames = append(m.frames, f)
	return nil
}

// Len returns the number of frames appended so far.
func (m *MemSequence) Len() int { return len(m.frames) }

// Shape returns the declared nominal geometry.
func (m *MemSequence) Shape() Shape { return m.shape }

// Frame returns the frame at index i. The context is ignored: in-memory
// lookups never block.
func (m *MemSequence) Frame(_ context.Context, i int) (*Frame, error) {
	if i < 0 || i >= len(m.frames) {
		return nil, fmt.Errorf("frame: %w: %d of %d", ErrOutOfRange, i, len(m.frames))
	}
	return m.frames[i], nil
}
