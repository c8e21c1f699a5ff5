package meta

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/e7canasta/frametiler/frame"
)

func sampleTag() Tag {
	return Tag{
		Version: TagVersion,
		RunID:   NewRunID(),
		Axes: []AxisTag{
			{Axis: AxisWidth, Extent: 1000, Unit: 256, Overlap: 16, Count: 5, Index: 2, Policy: "pad", Fill: "mirror"},
			{Axis: AxisHeight, Extent: 600, Unit: 256, Overlap: 16, Count: 3, Index: 1, Policy: "pad", Fill: "mirror"},
		},
	}
}

// --- Test: tags survive the JSON wire form unchanged ---
func TestTagRoundTrip(t *testing.T) {
	in := sampleTag()
	s, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	out, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if out.Version != in.Version || out.RunID != in.RunID || len(out.Axes) != len(in.Axes) {
		t.Fatalf("round trip changed the tag: %+v", out)
	}
	for i := range in.Axes {
		if out.Axes[i] != in.Axes[i] {
			t.Errorf("axis %d = %+v, want %+v", i, out.Axes[i], in.Axes[i])
		}
	}
	t.Logf("✅ Tag round-tripped through %d bytes of JSON", len(s))
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"not json", "still-frame 42"},
		{"no version", `{"run_id":"x","axes":[]}`},
		{"wrong version", `{"version":9,"run_id":"x","axes":[{"axis":"width","extent":10,"unit":4,"overlap":1,"count":3,"index":0,"policy":"pad"}]}`},
		{"axes not array", `{"version":1,"run_id":"x","axes":"nope"}`},
		{"no axes", `{"version":1,"run_id":"x","axes":[]}`},
		{"overlap too large", `{"version":1,"run_id":"x","axes":[{"axis":"width","extent":10,"unit":4,"overlap":4,"count":3,"index":0,"policy":"pad"}]}`},
		{"index out of range", `{"version":1,"run_id":"x","axes":[{"axis":"width","extent":10,"unit":4,"overlap":1,"count":3,"index":3,"policy":"pad"}]}`},
	}
	for _, c := range cases {
		if _, err := Decode(c.in); !errors.Is(err, ErrInvalidTag) {
			t.Errorf("%s: Decode() error = %v, want ErrInvalidTag", c.name, err)
		}
	}
}

// --- Test: run membership ignores indices and nothing else ---
func TestConsistentWith(t *testing.T) {
	base := sampleTag()

	peer := base.WithIndices(map[string]int{AxisWidth: 4, AxisHeight: 0})
	if !base.ConsistentWith(peer) {
		t.Errorf("tags differing only in indices should be consistent")
	}

	foreign := sampleTag()
	if base.ConsistentWith(foreign) {
		t.Errorf("tags from different runs must not be consistent")
	}

	skewed := base
	skewed.Axes = append([]AxisTag(nil), base.Axes...)
	skewed.Axes[0].Overlap = 32
	if base.ConsistentWith(skewed) {
		t.Errorf("tags with different overlap must not be consistent")
	}

	narrowed := base
	narrowed.Axes = base.Axes[:1]
	if base.ConsistentWith(narrowed) {
		t.Errorf("tags with different axis sets must not be consistent")
	}
	t.Logf("✅ Consistency tracks the run, not the position in it")
}

func TestWithIndices(t *testing.T) {
	base := sampleTag()
	got := base.WithIndices(map[string]int{AxisWidth: 4})
	if a, _ := got.Axis(AxisWidth); a.Index != 4 {
		t.Errorf("width index = %d, want 4", a.Index)
	}
	if a, _ := got.Axis(AxisHeight); a.Index != 1 {
		t.Errorf("height index = %d, want untouched 1", a.Index)
	}
	if a, _ := base.Axis(AxisWidth); a.Index != 2 {
		t.Errorf("WithIndices modified the receiver")
	}
}

// --- Test: tags ride frame properties ---
//
// Contract:
//  1. An untagged frame reads back as absent, not as an error.
//  2. A corrupt property reads back as present plus an error, so
//     callers can distinguish damage from absence.
func TestAttachFromFrame(t *testing.T) {
	f := frame.New(frame.Shape{Width: 4, Height: 4, Format: frame.Gray8})

	if _, present, err := FromFrame(f); present || err != nil {
		t.Fatalf("untagged frame: present=%v err=%v, want absent and nil", present, err)
	}

	in := sampleTag()
	if err := Attach(f, in); err != nil {
		t.Fatalf("Attach() failed: %v", err)
	}
	out, present, err := FromFrame(f)
	if err != nil || !present {
		t.Fatalf("FromFrame() failed: present=%v err=%v", present, err)
	}
	if out.RunID != in.RunID {
		t.Errorf("run id = %q, want %q", out.RunID, in.RunID)
	}

	f.SetProp(KeyUnit, "{broken")
	if _, present, err := FromFrame(f); !present || !errors.Is(err, ErrInvalidTag) {
		t.Errorf("corrupt tag: present=%v err=%v, want present and ErrInvalidTag", present, err)
	}

	Strip(f)
	if _, present, _ := FromFrame(f); present {
		t.Errorf("Strip() left the tag behind")
	}
}

func TestPadTagRoundTrip(t *testing.T) {
	f := frame.New(frame.Shape{Width: 4, Height: 4, Format: frame.Gray8})
	in := PadTag{OrigW: 1000, OrigH: 600, Left: 0, Right: 24, Top: 0, Bottom: 40}
	if err := AttachPad(f, in); err != nil {
		t.Fatalf("AttachPad() failed: %v", err)
	}
	out, present, err := PadFromFrame(f)
	if err != nil || !present {
		t.Fatalf("PadFromFrame() failed: present=%v err=%v", present, err)
	}
	if out != in {
		t.Errorf("pad tag = %+v, want %+v", out, in)
	}

	f.SetProp(KeyPad, `{"left":1}`)
	if _, _, err := PadFromFrame(f); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("pad record without original size should be rejected, got %v", err)
	}
}

func TestTPadTagRoundTrip(t *testing.T) {
	f := frame.New(frame.Shape{Width: 4, Height: 4, Format: frame.Gray8})
	in := TPadTag{OrigLen: 100, Start: 8, End: 12}
	if err := AttachTPad(f, in); err != nil {
		t.Fatalf("AttachTPad() failed: %v", err)
	}
	out, present, err := TPadFromFrame(f)
	if err != nil || !present {
		t.Fatalf("TPadFromFrame() failed: present=%v err=%v", present, err)
	}
	if out != in {
		t.Errorf("tpad tag = %+v, want %+v", out, in)
	}
}

// --- Test: sidecars persist run metadata across exports ---
func TestSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), SidecarName)

	if _, ok, err := ReadSidecar(path); ok || err != nil {
		t.Fatalf("missing sidecar: ok=%v err=%v, want absent and nil", ok, err)
	}

	unit := sampleTag()
	in := Sidecar{Unit: &unit, Pad: &PadTag{OrigW: 1000, OrigH: 600, Right: 24}}
	if err := WriteSidecar(path, in); err != nil {
		t.Fatalf("WriteSidecar() failed: %v", err)
	}

	out, ok, err := ReadSidecar(path)
	if err != nil || !ok {
		t.Fatalf("ReadSidecar() failed: ok=%v err=%v", ok, err)
	}
	if out.Unit == nil || out.Unit.RunID != unit.RunID {
		t.Fatalf("sidecar unit tag did not survive: %+v", out.Unit)
	}
	if out.Pad == nil || out.Pad.Right != 24 {
		t.Errorf("sidecar pad record did not survive: %+v", out.Pad)
	}
	if out.TPad != nil {
		t.Errorf("absent tpad should stay nil, got %+v", out.TPad)
	}
	t.Logf("✅ Sidecar round-tripped unit and pad records")
}
