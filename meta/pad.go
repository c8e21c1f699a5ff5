package meta

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/e7canasta/frametiler/frame"
)

// PadTag records spatial padding so a later crop can undo it, even
// after the frames were resized in between. Margins are expressed in
// the padded frame's own pixels at the time of padding.
type PadTag struct {
	OrigW  int `json:"orig_w"`
	OrigH  int `json:"orig_h"`
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// TPadTag records temporal padding so a later trim can undo it.
type TPadTag struct {
	OrigLen int `json:"orig_len"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// AttachPad writes the pad record onto a frame, replacing any previous
// one. Padding twice without cropping overwrites the first record, so
// only the most recent pad can be undone.
func AttachPad(f *frame.Frame, p PadTag) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("meta: encode pad tag: %w", err)
	}
	f.SetProp(KeyPad, string(b))
	return nil
}

// PadFromFrame reads the pad record off a frame.
func PadFromFrame(f *frame.Frame) (PadTag, bool, error) {
	s, ok := f.Prop(KeyPad)
	if !ok {
		return PadTag{}, false, nil
	}
	if !gjson.Valid(s) || !gjson.Get(s, "orig_w").Exists() {
		return PadTag{}, true, fmt.Errorf("meta: %w: bad pad record", ErrInvalidTag)
	}
	var p PadTag
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return PadTag{}, true, fmt.Errorf("meta: %w: %v", ErrInvalidTag, err)
	}
	return p, true, nil
}

// StripPad removes the pad record from a frame.
func StripPad(f *frame.Frame) {
	f.DeleteProp(KeyPad)
}

// AttachTPad writes the temporal pad record onto a frame.
func AttachTPad(f *frame.Frame, p TPadTag) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("meta: encode tpad tag: %w", err)
	}
	f.SetProp(KeyTPad, string(b))
	return nil
}

// TPadFromFrame reads the temporal pad record off a frame.
func TPadFromFrame(f *frame.Frame) (TPadTag, bool, error) {
	s, ok := f.Prop(KeyTPad)
	if !ok {
		return TPadTag{}, false, nil
	}
	if !gjson.Valid(s) || !gjson.Get(s, "orig_len").Exists() {
		return TPadTag{}, true, fmt.Errorf("meta: %w: bad tpad record", ErrInvalidTag)
	}
	var p TPadTag
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return TPadTag{}, true, fmt.Errorf("meta: %w: %v", ErrInvalidTag, err)
	}
	return p, true, nil
}

// StripTPad removes the temporal pad record from a frame.
func StripTPad(f *frame.Frame) {
	f.DeleteProp(KeyTPad)
}
