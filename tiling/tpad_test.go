package tiling

import (
	"context"
	"errors"
	"testing"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/meta"
)

// --- Test: temporal padding synthesizes lead-in and tail frames ---
//
// Scenario: 5 frames padded by 2 on both ends. Mirror reflects without
// repeating the edge frame; wrap loops; repeat holds the edges.
func TestTPadModes(t *testing.T) {
	cases := []struct {
		name string
		spec fill.Spec
		want []int
	}{
		{"mirror", fill.Spec{Mode: fill.Mirror}, []int{2, 1, 0, 1, 2, 3, 4, 3, 2}},
		{"wrap", fill.Spec{Mode: fill.Wrap}, []int{3, 4, 0, 1, 2, 3, 4, 0, 1}},
		{"repeat", fill.Spec{Mode: fill.Repeat}, []int{0, 0, 0, 1, 2, 3, 4, 4, 4}},
	}
	for _, c := range cases {
		src := gradSeq(5, 1, 1)
		padded, err := TPad(src, TPadOptions{Start: 2, End: 2, Fill: c.spec})
		if err != nil {
			t.Fatalf("%s: TPad() failed: %v", c.name, err)
		}
		if padded.Len() != 9 {
			t.Fatalf("%s: Len() = %d, want 9", c.name, padded.Len())
		}
		for i, f := range pullAll(t, padded) {
			if got := f.Data[0]; got != gradValue(c.want[i], 0, 0) {
				t.Errorf("%s: frame %d carries value %d, want source frame %d", c.name, i, got, c.want[i])
			}
			rec, present, err := meta.TPadFromFrame(f)
			if err != nil || !present {
				t.Fatalf("%s: frame %d record: present=%v err=%v", c.name, i, present, err)
			}
			if rec.OrigLen != 5 || rec.Start != 2 || rec.End != 2 {
				t.Errorf("%s: frame %d record = %+v", c.name, i, rec)
			}
		}
	}
	t.Logf("✅ Mirror, wrap and repeat lead-ins all recorded their margins")
}

func TestTPadSolid(t *testing.T) {
	src := gradSeq(3, 2, 2)
	padded, err := TPad(src, TPadOptions{
		End:  2,
		Fill: fill.Spec{Mode: fill.Solid, Color: []float64{1}},
	})
	if err != nil {
		t.Fatalf("TPad() failed: %v", err)
	}
	f, err := padded.Frame(context.Background(), 4)
	if err != nil {
		t.Fatalf("Frame(4) failed: %v", err)
	}
	for i, b := range f.Data {
		if b != 255 {
			t.Fatalf("solid tail sample %d = %d, want 255", i, b)
		}
	}
}

// --- Test: trim undoes tpad, at the original or a resampled rate ---
func TestTrimRoundTrip(t *testing.T) {
	src := gradSeq(5, 1, 1)
	padded, err := TPad(src, TPadOptions{Start: 2, End: 2, Fill: fill.Spec{Mode: fill.Mirror}})
	if err != nil {
		t.Fatalf("TPad() failed: %v", err)
	}
	back, err := Trim(context.Background(), padded)
	if err != nil {
		t.Fatalf("Trim() failed: %v", err)
	}
	if back.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", back.Len())
	}
	for k, got := range pullAll(t, back) {
		if got.Data[0] != gradValue(k, 0, 0) {
			t.Fatalf("frame %d carries value %d, want source frame %d", k, got.Data[0], k)
		}
		if _, present, _ := meta.TPadFromFrame(got); present {
			t.Errorf("frame %d still carries a tpad record", k)
		}
		if cam, _ := got.Prop("camera"); cam != "cam-7" {
			t.Errorf("frame %d lost the source property bag", k)
		}
	}
	t.Logf("✅ Trim removed 2+2 synthetic frames")
}

func TestTrimResampled(t *testing.T) {
	src := gradSeq(5, 1, 1)
	padded, err := TPad(src, TPadOptions{Start: 2, End: 2, Fill: fill.Spec{Mode: fill.Repeat}})
	if err != nil {
		t.Fatalf("TPad() failed: %v", err)
	}
	stream := pullAll(t, padded)
	// Keep every third frame: a 3x slowdown of the padded timeline.
	decimated := []*frame.Frame{stream[0], stream[3], stream[6]}

	back, err := Trim(context.Background(), memFrom(t, decimated))
	if err != nil {
		t.Fatalf("Trim() failed: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", back.Len())
	}
	// Margins scale by 1/3: one lead-in frame trimmed, two content
	// frames kept, matching padded positions 3 and 6.
	want := []int{1, 4}
	for k, got := range pullAll(t, back) {
		if got.Data[0] != gradValue(want[k], 0, 0) {
			t.Errorf("frame %d carries value %d, want source frame %d", k, got.Data[0], want[k])
		}
	}
	t.Logf("✅ Decimated trim kept the scaled content span")
}

func TestTPadRejects(t *testing.T) {
	src := gradSeq(3, 1, 1)
	if _, err := TPad(src, TPadOptions{Start: -1, Fill: fill.Spec{Mode: fill.Mirror}}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative pad: error = %v, want ErrInvalidParameter", err)
	}
	_, err := TPad(src, TPadOptions{End: 2, Fill: fill.Spec{Mode: fill.Falloff}})
	if !errors.Is(err, fill.ErrUnsupportedMode) {
		t.Errorf("falloff on time axis: error = %v, want ErrUnsupportedMode", err)
	}

	// Zero padding passes the sequence through without a record.
	same, err := TPad(src, TPadOptions{})
	if err != nil {
		t.Fatalf("TPad(0,0) failed: %v", err)
	}
	f, err := same.Frame(context.Background(), 0)
	if err != nil {
		t.Fatalf("Frame(0) failed: %v", err)
	}
	if _, present, _ := meta.TPadFromFrame(f); present {
		t.Errorf("zero pad attached a record")
	}

	if _, err := Trim(context.Background(), src); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("trim without record: error = %v, want ErrMissingParameter", err)
	}
}
