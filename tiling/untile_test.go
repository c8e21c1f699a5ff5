package tiling

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/meta"
)

func assertFrameEqual(t *testing.T, label string, got, want *frame.Frame) {
	t.Helper()
	if got.Width != want.Width || got.Height != want.Height || got.Format != want.Format {
		t.Fatalf("%s: got %dx%d %v, want %dx%d %v",
			label, got.Width, got.Height, got.Format, want.Width, want.Height, want.Format)
	}
	if !bytes.Equal(got.Data, want.Data) {
		for i := range got.Data {
			if got.Data[i] != want.Data[i] {
				t.Fatalf("%s: first mismatch at byte %d: got %d, want %d", label, i, got.Data[i], want.Data[i])
			}
		}
	}
}

func flatSeq(frames, w, h int, v byte) *frame.MemSequence {
	seq := frame.NewMem(frame.Shape{Width: w, Height: h, Format: frame.Gray8})
	for i := 0; i < frames; i++ {
		fr := frame.New(frame.Shape{Width: w, Height: h, Format: frame.Gray8})
		for j := range fr.Data {
			fr.Data[j] = v
		}
		if err := seq.Append(fr); err != nil {
			panic(err)
		}
	}
	return seq
}

// --- Test: tile then untile is lossless when nothing happens between ---
//
// Contract:
//  1. Overlapping tiles carry the overlap twice; cropping the cores
//     reproduces every source sample exactly once.
//  2. Unit tags are consumed: reconstructed frames carry the source
//     property bag without the partition entry.
func TestUntileCropRoundTrip(t *testing.T) {
	src := gradSeq(2, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16, OverlapX: 8, OverlapY: 8})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}

	back, err := Untile(context.Background(), tiles, UntileOptions{})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", back.Len())
	}
	if s := back.Shape(); s.Width != 48 || s.Height != 32 {
		t.Fatalf("Shape() = %s, want 48x32", s)
	}

	for k, got := range pullAll(t, back) {
		want, _ := src.Frame(context.Background(), k)
		assertFrameEqual(t, "frame", got, want)
		if cam, _ := got.Prop("camera"); cam != "cam-7" {
			t.Errorf("frame %d lost the source property bag", k)
		}
		if _, present, _ := meta.FromFrame(got); present {
			t.Errorf("frame %d still carries a unit tag", k)
		}
	}
	t.Logf("✅ 2 frames reassembled bit for bit from 5x3 overlapping grids")
}

// --- Test: fading untouched tiles is also lossless ---
//
// Both sides of every seam hold copies of the same source samples, so
// any ramp that sums to one reproduces them.
func TestUntileFadeRoundTrip(t *testing.T) {
	src := gradSeq(2, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16, OverlapX: 8, OverlapY: 8})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	back, err := Untile(context.Background(), tiles, UntileOptions{Fade: true})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	for k, got := range pullAll(t, back) {
		want, _ := src.Frame(context.Background(), k)
		assertFrameEqual(t, "frame", got, want)
	}
	t.Logf("✅ Seam blending reproduces untouched overlaps exactly")
}

// --- Test: pad surplus is clipped off on the way back ---
func TestUntilePaddedRoundTrip(t *testing.T) {
	src := gradSeq(1, 45, 45)
	tiles, err := Tile(src, TileOptions{
		TileW: 16, TileH: 16, OverlapX: 8, OverlapY: 8,
		Policy: PolicyPad,
		Fill:   fill.Spec{Mode: fill.Mirror},
	})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	if tiles.Len() != 25 {
		t.Fatalf("tiles.Len() = %d, want 25", tiles.Len())
	}
	back, err := Untile(context.Background(), tiles, UntileOptions{})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	got, err := back.Frame(context.Background(), 0)
	if err != nil {
		t.Fatalf("Frame(0) failed: %v", err)
	}
	want, _ := src.Frame(context.Background(), 0)
	assertFrameEqual(t, "padded round trip", got, want)
}

// --- Test: a uniform 2x resize between the passes is detected ---
//
// Scenario: every 16x16 tile is upscaled to 32x32 by an external
// transform that keeps the tags. Reconstruction reads the factor off
// the first tile and reassembles in the scaled space, so the result is
// the nearest-neighbor upscale of the source.
func TestUntileScaledUnits(t *testing.T) {
	src := gradSeq(2, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16, OverlapX: 8, OverlapY: 8})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}

	big := pullAll(t, tiles)
	for i, f := range big {
		big[i] = scale2x(f)
	}
	back, err := Untile(context.Background(), memFrom(t, big), UntileOptions{})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	if s := back.Shape(); s.Width != 96 || s.Height != 64 {
		t.Fatalf("Shape() = %s, want 96x64", s)
	}
	for k, got := range pullAll(t, back) {
		orig, _ := src.Frame(context.Background(), k)
		assertFrameEqual(t, "scaled frame", got, scale2x(orig))
	}
	t.Logf("✅ 2x tile resize produced the 2x source, same layout")
}

// --- Test: a non-uniform resize is rejected up front ---
func TestUntileNonUniformResize(t *testing.T) {
	src := gradSeq(1, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}

	stretched := pullAll(t, tiles)
	for i, f := range stretched {
		wide := f.CloneHeader(frame.Shape{Width: f.Width * 2, Height: f.Height, Format: f.Format})
		for y := 0; y < wide.Height; y++ {
			for x := 0; x < wide.Width; x++ {
				wide.Data[wide.PixOffset(x, y)] = f.Data[f.PixOffset(x/2, y)]
			}
		}
		stretched[i] = wide
	}
	_, err = Untile(context.Background(), memFrom(t, stretched), UntileOptions{})
	if !errors.Is(err, ErrInconsistentScale) {
		t.Fatalf("Untile() error = %v, want ErrInconsistentScale", err)
	}
	t.Logf("✅ Width-only stretch rejected: %v", err)
}

// --- Test: one unit deviating from the detected scale fails on pull ---
func TestUntileDeviantUnit(t *testing.T) {
	src := gradSeq(1, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	units := pullAll(t, tiles)
	units[3] = scale2x(units[3])

	back, err := Untile(context.Background(), memFrom(t, units), UntileOptions{})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	if _, err := back.Frame(context.Background(), 0); !errors.Is(err, ErrInconsistentScale) {
		t.Errorf("Frame(0) error = %v, want ErrInconsistentScale", err)
	}
}

// --- Test: metadata-free units demand a full manual override ---
//
// Contract:
//  1. No tags and no overrides is ambiguous.
//  2. A partial override names the missing field.
//  3. A complete override reconstructs without any tags.
func TestUntileManualOverride(t *testing.T) {
	src := gradSeq(1, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16, OverlapX: 8, OverlapY: 8})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	bare := pullAll(t, tiles)
	for _, f := range bare {
		meta.Strip(f)
	}
	stripped := memFrom(t, bare)
	ctx := context.Background()

	if _, err := Untile(ctx, stripped, UntileOptions{}); !errors.Is(err, ErrAmbiguousAxis) {
		t.Errorf("no override: error = %v, want ErrAmbiguousAxis", err)
	}
	_, err = Untile(ctx, stripped, UntileOptions{
		X: AxisOverride{UnitSize: 16, Overlap: 8, HasOverlap: true},
		Y: AxisOverride{FullExtent: 32, UnitSize: 16, Overlap: 8, HasOverlap: true},
	})
	if !errors.Is(err, ErrMissingParameter) {
		t.Errorf("partial override: error = %v, want ErrMissingParameter", err)
	}

	back, err := Untile(ctx, stripped, UntileOptions{
		X: AxisOverride{FullExtent: 48, UnitSize: 16, Overlap: 8, HasOverlap: true},
		Y: AxisOverride{FullExtent: 32, UnitSize: 16, Overlap: 8, HasOverlap: true},
	})
	if err != nil {
		t.Fatalf("full override: Untile() failed: %v", err)
	}
	got, err := back.Frame(ctx, 0)
	if err != nil {
		t.Fatalf("Frame(0) failed: %v", err)
	}
	want, _ := src.Frame(ctx, 0)
	assertFrameEqual(t, "manual reconstruction", got, want)
	t.Logf("✅ Stripped tiles reassembled from the override alone")
}

// --- Test: units from two different partition runs do not mix ---
func TestUntileMixedRuns(t *testing.T) {
	src := gradSeq(1, 48, 32)
	runA, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	runB, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	mixed := pullAll(t, runA)
	mixed[1], _ = runB.Frame(context.Background(), 1)

	back, err := Untile(context.Background(), memFrom(t, mixed), UntileOptions{})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	if _, err := back.Frame(context.Background(), 0); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Frame(0) error = %v, want ErrShapeMismatch", err)
	}
}

// --- Test: units out of position fail the index check ---
func TestUntileShuffledUnits(t *testing.T) {
	src := gradSeq(1, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	units := pullAll(t, tiles)
	units[1], units[2] = units[2], units[1]

	back, err := Untile(context.Background(), memFrom(t, units), UntileOptions{})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	if _, err := back.Frame(context.Background(), 0); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Frame(0) error = %v, want ErrShapeMismatch", err)
	}
}

// --- Test: trailing units discarded downstream, extent override ---
//
// Scenario: a 3x3 grid loses its right column somewhere between the
// passes. Overriding the width extent to the covered 32 pixels
// re-derives a 3x2 grid and rebuilds the surviving region.
func TestUntileExternalDiscard(t *testing.T) {
	src := gradSeq(1, 48, 48)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	var kept []*frame.Frame
	for i, f := range pullAll(t, tiles) {
		if i%3 != 2 {
			kept = append(kept, f)
		}
	}

	back, err := Untile(context.Background(), memFrom(t, kept), UntileOptions{
		X: AxisOverride{FullExtent: 32},
	})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	got, err := back.Frame(context.Background(), 0)
	if err != nil {
		t.Fatalf("Frame(0) failed: %v", err)
	}
	full, _ := src.Frame(context.Background(), 0)
	want, err := full.SubRect(0, 0, 32, 48)
	if err != nil {
		t.Fatalf("SubRect() failed: %v", err)
	}
	assertFrameEqual(t, "covered prefix", got, want)
	t.Logf("✅ Width extent override rebuilt the surviving 32x48 region")
}

// --- Test: blending weights partition unity ---
//
// A flat field pushed through padded overlapping tiles and faded back
// must stay flat; any weight leak shows up as a value shift.
func TestUntileFadeFlatField(t *testing.T) {
	src := flatSeq(1, 45, 45, 77)
	tiles, err := Tile(src, TileOptions{
		TileW: 16, TileH: 16, OverlapX: 8, OverlapY: 8,
		Policy: PolicyPad,
		Fill:   fill.Spec{Mode: fill.Repeat},
	})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	back, err := Untile(context.Background(), tiles, UntileOptions{Fade: true})
	if err != nil {
		t.Fatalf("Untile() failed: %v", err)
	}
	got, err := back.Frame(context.Background(), 0)
	if err != nil {
		t.Fatalf("Frame(0) failed: %v", err)
	}
	for i, b := range got.Data {
		if b != 77 {
			t.Fatalf("sample %d drifted to %d, want 77", i, b)
		}
	}
	t.Logf("✅ Flat field stayed flat through fade reconstruction")
}

func TestUntileStreamNotDivisible(t *testing.T) {
	src := gradSeq(1, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	units := pullAll(t, tiles)
	_, err = Untile(context.Background(), memFrom(t, units[:5]), UntileOptions{})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Untile() error = %v, want ErrShapeMismatch", err)
	}
}
