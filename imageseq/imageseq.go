package imageseq

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/meta"
)

// WriteOptions selects the image encoding for Write.
type WriteOptions struct {
	// Format is "png" (default) or "jpeg". JPEG is lossy and drops
	// alpha, so it is only appropriate for exchange with tools that
	// cannot read PNG.
	Format string

	// Quality is the JPEG quality, 1..100. Zero means 90.
	Quality int
}

func (o WriteOptions) resolve() (format string, quality int, err error) {
	format = o.Format
	switch format {
	case "", "png":
		format = "png"
	case "jpeg", "jpg":
		format = "jpeg"
	default:
		return "", 0, fmt.Errorf("imageseq: unsupported format %q (png or jpeg)", o.Format)
	}
	quality = o.Quality
	if quality == 0 {
		quality = 90
	}
	if quality < 1 || quality > 100 {
		return "", 0, fmt.Errorf("imageseq: jpeg quality %d outside 1..100", o.Quality)
	}
	return format, quality, nil
}

// Write stores src as numbered image files under dir, creating it if
// needed, plus a metadata sidecar when the frames carry partition,
// pad or temporal-pad records. Existing files with colliding names are
// overwritten.
func Write(ctx context.Context, dir string, src frame.Sequence, opts WriteOptions) error {
	format, quality, err := opts.resolve()
	if err != nil {
		return err
	}
	if src.Len() == 0 {
		return fmt.Errorf("imageseq: write: %w", frame.ErrEmptySequence)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("imageseq: create %s: %w", dir, err)
	}

	var side meta.Sidecar
	for i := 0; i < src.Len(); i++ {
		f, err := src.Frame(ctx, i)
		if err != nil {
			return fmt.Errorf("imageseq: frame %d: %w", i, err)
		}
		if i == 0 {
			if side, err = sidecarFor(f); err != nil {
				return err
			}
		}
		name := fmt.Sprintf("frame_%06d.%s", i, format)
		if err := writeImage(filepath.Join(dir, name), f, format, quality); err != nil {
			return err
		}
	}

	if side.Unit != nil || side.Pad != nil || side.TPad != nil {
		return meta.WriteSidecar(filepath.Join(dir, meta.SidecarName), side)
	}
	return nil
}

// sidecarFor extracts the run-level records from the first frame. The
// unit tag is stored with indices zeroed; Read re-derives per-frame
// indices from file order.
func sidecarFor(f *frame.Frame) (meta.Sidecar, error) {
	var side meta.Sidecar
	tag, present, err := meta.FromFrame(f)
	if err != nil {
		return side, fmt.Errorf("imageseq: %w", err)
	}
	if present {
		zero := make(map[string]int, len(tag.Axes))
		for _, a := range tag.Axes {
			zero[a.Axis] = 0
		}
		t := tag.WithIndices(zero)
		side.Unit = &t
	}
	if pad, ok, err := meta.PadFromFrame(f); err != nil {
		return side, fmt.Errorf("imageseq: %w", err)
	} else if ok {
		side.Pad = &pad
	}
	if tpad, ok, err := meta.TPadFromFrame(f); err != nil {
		return side, fmt.Errorf("imageseq: %w", err)
	} else if ok {
		side.TPad = &tpad
	}
	return side, nil
}

func writeImage(path string, f *frame.Frame, format string, quality int) error {
	img, err := toImage(f)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageseq: create %s: %w", path, err)
	}
	defer file.Close()

	switch format {
	case "png":
		err = png.Encode(file, img)
	case "jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return fmt.Errorf("imageseq: encode %s: %w", path, err)
	}
	return file.Close()
}

// Read loads the numbered image files under dir, in name order, and
// restores the metadata records from the sidecar when one is present.
func Read(dir string) (*frame.MemSequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("imageseq: read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "frame_") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("imageseq: %s: %w", dir, frame.ErrEmptySequence)
	}
	sort.Strings(names)

	frames := make([]*frame.Frame, len(names))
	for i, name := range names {
		f, err := readImage(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}

	side, ok, err := meta.ReadSidecar(filepath.Join(dir, meta.SidecarName))
	if err != nil {
		return nil, fmt.Errorf("imageseq: %w", err)
	}
	if ok {
		if err := restoreTags(frames, side); err != nil {
			return nil, err
		}
	}
	return frame.FromFrames(frames)
}

func readImage(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageseq: open %s: %w", path, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("imageseq: decode %s: %w", path, err)
	}
	return fromImage(img), nil
}

// restoreTags reattaches the sidecar records to each frame, rebuilding
// the per-frame unit indices from file order.
func restoreTags(frames []*frame.Frame, side meta.Sidecar) error {
	for i, f := range frames {
		if side.Unit != nil {
			tag := side.Unit.WithIndices(unitIndices(*side.Unit, i))
			if err := tag.Validate(); err != nil {
				return fmt.Errorf("imageseq: frame %d: %w", i, err)
			}
			if err := meta.Attach(f, tag); err != nil {
				return err
			}
		}
		if side.Pad != nil {
			if err := meta.AttachPad(f, *side.Pad); err != nil {
				return err
			}
		}
		if side.TPad != nil {
			if err := meta.AttachTPad(f, *side.TPad); err != nil {
				return err
			}
		}
	}
	return nil
}

// unitIndices maps file position i back to per-axis unit indices under
// the enumeration the forward operations emit: spatial tiles row-major
// with columns varying fastest inside each source frame block, window
// frames in runs of the window length.
func unitIndices(t meta.Tag, i int) map[string]int {
	grid := 1
	w, hasW := t.Axis(meta.AxisWidth)
	h, hasH := t.Axis(meta.AxisHeight)
	if hasW {
		grid *= w.Count
	}
	if hasH {
		grid *= h.Count
	}

	cell, ord := i%grid, i/grid
	idx := make(map[string]int, len(t.Axes))
	switch {
	case hasW && hasH:
		idx[meta.AxisWidth] = cell % w.Count
		idx[meta.AxisHeight] = cell / w.Count
	case hasW:
		idx[meta.AxisWidth] = cell
	case hasH:
		idx[meta.AxisHeight] = cell
	}
	if tt, ok := t.Axis(meta.AxisTime); ok {
		win := ord / tt.Unit
		if win > tt.Count-1 {
			win = tt.Count - 1
		}
		idx[meta.AxisTime] = win
	}
	return idx
}
