// Package config loads the yaml job files the frametiler CLI consumes.
//
// A job file carries the same parameters as the command-line flags;
// flags win when both are given. The library packages never read
// configuration themselves — everything is threaded through the
// operation option structs built here.
package config

import (
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/e7canasta/frametiler/fill"
	"github.com/e7canasta/frametiler/tiling"
)

// Config is one frametiler job.
type Config struct {
	// Input is an image directory, or a video file for commands run
	// with --video.
	Input string `yaml:"input"`

	// Output is the directory results are written to.
	Output string `yaml:"output"`

	// Format selects the output image encoding: png (default) or jpeg.
	Format string `yaml:"format"`

	// JPEGQuality is the jpeg encoder quality, 1..100 (default 90).
	JPEGQuality int `yaml:"jpeg_quality"`

	// Workers sizes the render pool. Zero means one per CPU.
	Workers int `yaml:"workers"`

	Capture  CaptureConfig `yaml:"capture"`
	Tile     TileConfig    `yaml:"tile"`
	Window   WindowConfig  `yaml:"window"`
	Untile   InverseConfig `yaml:"untile"`
	Unwindow InverseConfig `yaml:"unwindow"`
	Pad      PadConfig     `yaml:"pad"`
	Mod      ModConfig     `yaml:"mod"`
	TPad     TPadConfig    `yaml:"tpad"`
}

// CaptureConfig bounds video decoding.
type CaptureConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FPS       float64 `yaml:"fps"`
	MaxFrames int     `yaml:"max_frames"`
}

// FillConfig names a fill strategy in wire form.
type FillConfig struct {
	// Mode is a fill mode name (mirror, wrap, repeat, falloff, solid,
	// synth). Empty means mirror.
	Mode string `yaml:"mode"`

	// Color is a hex color ("#rrggbb") for mode solid.
	Color string `yaml:"color"`

	// Synth names the registered synthesizer for mode synth.
	Synth string `yaml:"synth"`
}

// Spec resolves the wire form into a fill.Spec.
func (f FillConfig) Spec() (fill.Spec, error) {
	spec := fill.Spec{Synth: f.Synth}
	if f.Mode != "" {
		mode, err := fill.ParseMode(f.Mode)
		if err != nil {
			return fill.Spec{}, err
		}
		spec.Mode = mode
	}
	if f.Color != "" {
		c, err := colorful.Hex(f.Color)
		if err != nil {
			return fill.Spec{}, fmt.Errorf("config: fill color %q: %w", f.Color, err)
		}
		spec.Color = []float64{c.R, c.G, c.B}
	}
	return spec, nil
}

// TileConfig parameterizes spatial partitioning.
type TileConfig struct {
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	Overlap  int        `yaml:"overlap"`
	OverlapX *int       `yaml:"overlap_x"`
	OverlapY *int       `yaml:"overlap_y"`
	Policy   string     `yaml:"policy"`
	Fill     FillConfig `yaml:"fill"`
}

// Options resolves the section into tiling options. The scalar overlap
// applies to both axes unless a per-axis value overrides it.
func (t TileConfig) Options() (tiling.TileOptions, error) {
	spec, err := t.Fill.Spec()
	if err != nil {
		return tiling.TileOptions{}, err
	}
	opts := tiling.TileOptions{
		TileW:    t.Width,
		TileH:    t.Height,
		OverlapX: t.Overlap,
		OverlapY: t.Overlap,
		Fill:     spec,
	}
	if t.OverlapX != nil {
		opts.OverlapX = *t.OverlapX
	}
	if t.OverlapY != nil {
		opts.OverlapY = *t.OverlapY
	}
	if t.Policy != "" {
		if opts.Policy, err = tiling.ParsePolicy(t.Policy); err != nil {
			return tiling.TileOptions{}, err
		}
	}
	return opts, nil
}

// WindowConfig parameterizes temporal partitioning.
type WindowConfig struct {
	Length  int        `yaml:"length"`
	Overlap int        `yaml:"overlap"`
	Policy  string     `yaml:"policy"`
	Fill    FillConfig `yaml:"fill"`
}

// Options resolves the section into windowing options.
func (w WindowConfig) Options() (tiling.WindowOptions, error) {
	spec, err := w.Fill.Spec()
	if err != nil {
		return tiling.WindowOptions{}, err
	}
	opts := tiling.WindowOptions{Length: w.Length, Overlap: w.Overlap, Fill: spec}
	if w.Policy != "" {
		if opts.Policy, err = tiling.ParsePolicy(w.Policy); err != nil {
			return tiling.WindowOptions{}, err
		}
	}
	return opts, nil
}

// InverseConfig carries manual reconstruction overrides. Zero values
// defer to the unit metadata; overlaps are pointers because zero
// overlap is a meaningful override.
type InverseConfig struct {
	Fade bool `yaml:"fade"`

	FullWidth  int  `yaml:"full_width"`
	UnitWidth  int  `yaml:"unit_width"`
	OverlapX   *int `yaml:"overlap_x"`
	FullHeight int  `yaml:"full_height"`
	UnitHeight int  `yaml:"unit_height"`
	OverlapY   *int `yaml:"overlap_y"`

	FullLength int  `yaml:"full_length"`
	UnitLength int  `yaml:"unit_length"`
	OverlapT   *int `yaml:"overlap_t"`
}

func override(full, unit int, overlap *int) tiling.AxisOverride {
	o := tiling.AxisOverride{FullExtent: full, UnitSize: unit}
	if overlap != nil {
		o.Overlap, o.HasOverlap = *overlap, true
	}
	return o
}

// UntileOptions resolves the section for spatial reconstruction.
func (i InverseConfig) UntileOptions() tiling.UntileOptions {
	return tiling.UntileOptions{
		Fade: i.Fade,
		X:    override(i.FullWidth, i.UnitWidth, i.OverlapX),
		Y:    override(i.FullHeight, i.UnitHeight, i.OverlapY),
	}
}

// UnwindowOptions resolves the section for temporal reconstruction.
func (i InverseConfig) UnwindowOptions() tiling.UnwindowOptions {
	return tiling.UnwindowOptions{
		Fade: i.Fade,
		T:    override(i.FullLength, i.UnitLength, i.OverlapT),
	}
}

// PadConfig parameterizes spatial padding.
type PadConfig struct {
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Center bool       `yaml:"center"`
	Fill   FillConfig `yaml:"fill"`
}

// Options resolves the section into pad options.
func (p PadConfig) Options() (tiling.PadOptions, error) {
	spec, err := p.Fill.Spec()
	if err != nil {
		return tiling.PadOptions{}, err
	}
	return tiling.PadOptions{Width: p.Width, Height: p.Height, Center: p.Center, Fill: spec}, nil
}

// ModConfig parameterizes modulus padding.
type ModConfig struct {
	WidthMod  int        `yaml:"width_mod"`
	HeightMod int        `yaml:"height_mod"`
	Fill      FillConfig `yaml:"fill"`
}

// TPadConfig parameterizes temporal padding.
type TPadConfig struct {
	Start int        `yaml:"start"`
	End   int        `yaml:"end"`
	Fill  FillConfig `yaml:"fill"`
}

// Options resolves the section into temporal pad options.
func (p TPadConfig) Options() (tiling.TPadOptions, error) {
	spec, err := p.Fill.Spec()
	if err != nil {
		return tiling.TPadOptions{}, err
	}
	return tiling.TPadOptions{Start: p.Start, End: p.End, Fill: spec}, nil
}

// Default returns the job configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a job file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "png"
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 90
	}
}

// Validate checks the job-level fields. Operation sections are checked
// by the operations themselves, so a job file may carry sections for
// commands it never runs.
func (c *Config) Validate() error {
	switch c.Format {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("format %q (png or jpeg)", c.Format)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality %d outside 1..100", c.JPEGQuality)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d negative", c.Workers)
	}
	if c.Capture.MaxFrames < 0 {
		return fmt.Errorf("capture.max_frames %d negative", c.Capture.MaxFrames)
	}
	return nil
}
