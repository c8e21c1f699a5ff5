package meta

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/e7canasta/frametiler/frame"
)

// ErrInvalidTag reports a property that is present but not a usable tag.
var ErrInvalidTag = errors.New("invalid unit tag")

// TagVersion is the tag layout written by this package.
const TagVersion = 1

// Axis names used in tags.
const (
	AxisWidth  = "width"
	AxisHeight = "height"
	AxisTime   = "time"
)

// Frame property keys owned by this package.
const (
	// KeyUnit carries the partition tag on every emitted unit.
	KeyUnit = "frametiler.unit"
	// KeyPad records spatial padding applied ahead of a transform.
	KeyPad = "frametiler.pad"
	// KeyTPad records temporal padding applied ahead of a transform.
	KeyTPad = "frametiler.tpad"
)

// AxisTag describes the partition of one axis as seen by the unit that
// carries it.
type AxisTag struct {
	Axis    string `json:"axis"`
	Extent  int    `json:"extent"`
	Unit    int    `json:"unit"`
	Overlap int    `json:"overlap"`
	Count   int    `json:"count"`
	Index   int    `json:"index"`
	Policy  string `json:"policy"`
	Fill    string `json:"fill,omitempty"`
}

// Tag is the full partition record attached to a unit. All units of one
// partition run share everything except the per-axis Index fields.
type Tag struct {
	Version int       `json:"version"`
	RunID   string    `json:"run_id"`
	Axes    []AxisTag `json:"axes"`
}

// NewRunID returns a fresh identifier tying the units of one partition
// run together.
func NewRunID() string {
	return uuid.NewString()
}

// Axis returns the axis entry with the given name.
func (t Tag) Axis(name string) (AxisTag, bool) {
	for _, a := range t.Axes {
		if a.Axis == name {
			return a, true
		}
	}
	return AxisTag{}, false
}

// WithIndices returns a copy of t with per-axis indices replaced. Axes
// absent from idx keep their index.
func (t Tag) WithIndices(idx map[string]int) Tag {
	out := t
	out.Axes = make([]AxisTag, len(t.Axes))
	copy(out.Axes, t.Axes)
	for i := range out.Axes {
		if v, ok := idx[out.Axes[i].Axis]; ok {
			out.Axes[i].Index = v
		}
	}
	return out
}

// WithoutAxis returns a copy of t with the named axis removed.
func (t Tag) WithoutAxis(name string) Tag {
	out := t
	out.Axes = make([]AxisTag, 0, len(t.Axes))
	for _, a := range t.Axes {
		if a.Axis != name {
			out.Axes = append(out.Axes, a)
		}
	}
	return out
}

// ConsistentWith reports whether two tags belong to the same partition
// run, i.e. agree on everything except per-axis indices.
func (t Tag) ConsistentWith(o Tag) bool {
	if t.Version != o.Version || t.RunID != o.RunID || len(t.Axes) != len(o.Axes) {
		return false
	}
	for _, a := range t.Axes {
		b, ok := o.Axis(a.Axis)
		if !ok {
			return false
		}
		a.Index, b.Index = 0, 0
		if a != b {
			return false
		}
	}
	return true
}

// Validate checks the tag's internal geometry.
func (t Tag) Validate() error {
	if t.Version != TagVersion {
		return fmt.Errorf("meta: %w: unsupported version %d", ErrInvalidTag, t.Version)
	}
	if len(t.Axes) == 0 {
		return fmt.Errorf("meta: %w: no axes", ErrInvalidTag)
	}
	for _, a := range t.Axes {
		switch {
		case a.Axis == "":
			return fmt.Errorf("meta: %w: unnamed axis", ErrInvalidTag)
		case a.Extent <= 0 || a.Unit <= 0:
			return fmt.Errorf("meta: %w: axis %s has non-positive geometry", ErrInvalidTag, a.Axis)
		case a.Overlap < 0 || a.Overlap >= a.Unit:
			return fmt.Errorf("meta: %w: axis %s overlap %d outside [0,%d)", ErrInvalidTag, a.Axis, a.Overlap, a.Unit)
		case a.Count < 1:
			return fmt.Errorf("meta: %w: axis %s count %d", ErrInvalidTag, a.Axis, a.Count)
		case a.Index < 0 || a.Index >= a.Count:
			return fmt.Errorf("meta: %w: axis %s index %d outside [0,%d)", ErrInvalidTag, a.Axis, a.Index, a.Count)
		}
	}
	return nil
}

// Encode renders the tag as its JSON wire form.
func (t Tag) Encode() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("meta: encode tag: %w", err)
	}
	return string(b), nil
}

// Decode parses a tag from its JSON wire form. The payload is sniffed
// first so that foreign or half-damaged properties fail with
// ErrInvalidTag instead of a bare decoding error.
func Decode(s string) (Tag, error) {
	if !gjson.Valid(s) {
		return Tag{}, fmt.Errorf("meta: %w: not JSON", ErrInvalidTag)
	}
	if v := gjson.Get(s, "version"); !v.Exists() {
		return Tag{}, fmt.Errorf("meta: %w: no version field", ErrInvalidTag)
	}
	if !gjson.Get(s, "axes").IsArray() {
		return Tag{}, fmt.Errorf("meta: %w: no axes array", ErrInvalidTag)
	}
	var t Tag
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return Tag{}, fmt.Errorf("meta: %w: %v", ErrInvalidTag, err)
	}
	if err := t.Validate(); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Attach writes the tag onto a frame, replacing any previous unit tag.
func Attach(f *frame.Frame, t Tag) error {
	s, err := t.Encode()
	if err != nil {
		return err
	}
	f.SetProp(KeyUnit, s)
	return nil
}

// FromFrame reads the unit tag off a frame. The second return is false
// when the frame carries no tag at all.
func FromFrame(f *frame.Frame) (Tag, bool, error) {
	s, ok := f.Prop(KeyUnit)
	if !ok {
		return Tag{}, false, nil
	}
	t, err := Decode(s)
	if err != nil {
		return Tag{}, true, err
	}
	return t, true, nil
}

// Strip removes the unit tag from a frame.
func Strip(f *frame.Frame) {
	f.DeleteProp(KeyUnit)
}
