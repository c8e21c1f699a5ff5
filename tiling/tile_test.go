package tiling

import (
	"context"
	"errors"
	"testing"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/meta"
)

// gradValue gives every (frame, x, y) position a distinct value so a
// misplaced sample shows up as a mismatch, not a coincidence.
func gradValue(f, x, y int) byte {
	return byte((x*7 + y*13 + f*29) % 251)
}

func gradSeq(frames, w, h int) *frame.MemSequence {
	seq := frame.NewMem(frame.Shape{Width: w, Height: h, Format: frame.Gray8})
	for f := 0; f < frames; f++ {
		fr := frame.New(frame.Shape{Width: w, Height: h, Format: frame.Gray8})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				fr.Data[fr.PixOffset(x, y)] = gradValue(f, x, y)
			}
		}
		fr.SetProp("camera", "cam-7")
		if err := seq.Append(fr); err != nil {
			panic(err)
		}
	}
	return seq
}

// pullAll materializes a lazy sequence frame by frame.
func pullAll(t *testing.T, s frame.Sequence) []*frame.Frame {
	t.Helper()
	out := make([]*frame.Frame, s.Len())
	for i := range out {
		f, err := s.Frame(context.Background(), i)
		if err != nil {
			t.Fatalf("Frame(%d) failed: %v", i, err)
		}
		out[i] = f
	}
	return out
}

func memFrom(t *testing.T, frames []*frame.Frame) *frame.MemSequence {
	t.Helper()
	seq, err := frame.FromFrames(frames)
	if err != nil {
		t.Fatalf("FromFrames() failed: %v", err)
	}
	return seq
}

// scale2x is the stand-in for an external transform: nearest-neighbor
// upscale that leaves the property bag (and with it the tags) alone.
func scale2x(f *frame.Frame) *frame.Frame {
	out := f.CloneHeader(frame.Shape{Width: f.Width * 2, Height: f.Height * 2, Format: f.Format})
	ch := f.Format.Channels()
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			d := out.PixOffset(x, y)
			s := f.PixOffset(x/2, y/2)
			copy(out.Data[d:d+ch], f.Data[s:s+ch])
		}
	}
	return out
}

// --- Test: tiling cuts a row-major grid of tagged units ---
//
// Contract:
//  1. Tile t of source frame f sits at output index f*cols*rows + t,
//     columns varying fastest.
//  2. Every tile sample equals the source sample under it.
//  3. Tiles of one run share a run id and differ only in indices.
func TestTileGrid(t *testing.T) {
	src := gradSeq(2, 48, 32)
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	if tiles.Len() != 2*3*2 {
		t.Fatalf("Len() = %d, want 12", tiles.Len())
	}
	if s := tiles.Shape(); s.Width != 16 || s.Height != 16 {
		t.Fatalf("Shape() = %s, want 16x16", s)
	}

	all := pullAll(t, tiles)
	var runID string
	for i, tile := range all {
		f, idx := i/6, i%6
		col, row := idx%3, idx/3
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				want := gradValue(f, col*16+x, row*16+y)
				if got := tile.Data[tile.PixOffset(x, y)]; got != want {
					t.Fatalf("tile %d sample (%d,%d) = %d, want %d", i, x, y, got, want)
				}
			}
		}

		tag, present, err := meta.FromFrame(tile)
		if err != nil || !present {
			t.Fatalf("tile %d tag: present=%v err=%v", i, present, err)
		}
		if runID == "" {
			runID = tag.RunID
		}
		if tag.RunID != runID {
			t.Errorf("tile %d run id %q, want %q", i, tag.RunID, runID)
		}
		w, _ := tag.Axis(meta.AxisWidth)
		h, _ := tag.Axis(meta.AxisHeight)
		if w.Index != col || h.Index != row {
			t.Errorf("tile %d indices (%d,%d), want (%d,%d)", i, w.Index, h.Index, col, row)
		}
		if w.Extent != 48 || w.Unit != 16 || w.Count != 3 || h.Count != 2 {
			t.Errorf("tile %d geometry tag: %+v / %+v", i, w, h)
		}
		if cam, _ := tile.Prop("camera"); cam != "cam-7" {
			t.Errorf("tile %d lost the source property bag", i)
		}
	}
	t.Logf("✅ 12 tiles, row-major, all tagged under run %s", runID)
}

// --- Test: boundary tiles are mirror-extended to full size ---
//
// Scenario: 45 wide, unit 16, overlap 8. The plan places 5 columns
// (stride 8) with a 3 sample shortfall on the last, so the last column
// carries 13 source columns plus 3 mirrored ones.
func TestTilePaddedBoundary(t *testing.T) {
	src := gradSeq(1, 45, 16)
	tiles, err := Tile(src, TileOptions{
		TileW: 16, TileH: 16, OverlapX: 8,
		Policy: PolicyPad,
		Fill:   fill.Spec{Mode: fill.Mirror},
	})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	if tiles.Len() != 5 {
		t.Fatalf("Len() = %d, want 5 columns", tiles.Len())
	}

	last, err := tiles.Frame(context.Background(), 4)
	if err != nil {
		t.Fatalf("Frame(4) failed: %v", err)
	}
	// Origin 32: columns 0..12 are source 32..44, then the mirror walks
	// back 44, 43, 42 (edge duplicated).
	for x := 0; x < 13; x++ {
		if got, want := last.Data[last.PixOffset(x, 0)], gradValue(0, 32+x, 0); got != want {
			t.Fatalf("column %d = %d, want source column %d (%d)", x, got, 32+x, want)
		}
	}
	for i, srcX := range []int{44, 43, 42} {
		if got, want := last.Data[last.PixOffset(13+i, 0)], gradValue(0, srcX, 0); got != want {
			t.Errorf("padded column %d = %d, want mirror of column %d (%d)", 13+i, got, srcX, want)
		}
	}
	t.Logf("✅ Last column tile is 13 source columns plus a 3 column mirror")
}

func TestTileDiscard(t *testing.T) {
	src := gradSeq(1, 45, 16)
	tiles, err := Tile(src, TileOptions{
		TileW: 16, TileH: 16, OverlapX: 8,
		Policy: PolicyDiscard,
	})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	if tiles.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 columns after discarding the short one", tiles.Len())
	}
	for _, tile := range pullAll(t, tiles) {
		if tile.Width != 16 || tile.Height != 16 {
			t.Fatalf("discard emitted a %dx%d tile", tile.Width, tile.Height)
		}
	}
}

func TestTileRejects(t *testing.T) {
	src := gradSeq(1, 64, 64)
	cases := []struct {
		name string
		opts TileOptions
	}{
		{"policy none", TileOptions{TileW: 16, TileH: 16, Policy: PolicyNone}},
		{"overlap eats unit", TileOptions{TileW: 16, TileH: 16, OverlapX: 16}},
		{"zero unit", TileOptions{TileW: 0, TileH: 16}},
		{"grid too large", TileOptions{TileW: 1, TileH: 1}},
	}
	for _, c := range cases {
		if _, err := Tile(src, c.opts); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: Tile() error = %v, want ErrInvalidParameter", c.name, err)
		}
	}
}

// --- Test: a source frame deviating from the planned extent fails ---
func TestTileSourceMismatch(t *testing.T) {
	src := frame.NewMem(frame.Shape{Width: 32, Height: 32, Format: frame.Gray8})
	if err := src.Append(frame.New(frame.Shape{Width: 16, Height: 16, Format: frame.Gray8})); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	tiles, err := Tile(src, TileOptions{TileW: 16, TileH: 16})
	if err != nil {
		t.Fatalf("Tile() failed: %v", err)
	}
	if _, err := tiles.Frame(context.Background(), 0); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Frame() error = %v, want ErrShapeMismatch", err)
	}
}
