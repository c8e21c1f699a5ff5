package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/e7canasta/frametiler/tiling"
)

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Cut frames into an overlapping tile grid",
	Long: `Cut every input frame into a grid of overlapping tiles. Tiles are
emitted row-major per source frame and tagged with the partition plan,
so untile can later reassemble them without any parameters.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		mergeTileFlags(cmd)
		opts, err := cfg.Tile.Options()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		tiles, err := tiling.Tile(src, opts)
		if err != nil {
			return err
		}
		slog.Info("tiling", "source_frames", src.Len(), "tiles", tiles.Len(),
			"tile", tiles.Shape().String())
		return writeOutput(ctx, tiles)
	},
}

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Cut the sequence into overlapping temporal windows",
	Long: `Cut the input sequence into overlapping temporal windows,
concatenated in order. Frames inside an overlap appear once per window
covering them; every emitted frame is tagged for unwindow.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		mergeWindowFlags(cmd)
		opts, err := cfg.Window.Options()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		windows, err := tiling.Window(src, opts)
		if err != nil {
			return err
		}
		slog.Info("windowing", "source_frames", src.Len(), "output_frames", windows.Len())
		return writeOutput(ctx, windows)
	},
}

var (
	flagTileW, flagTileH       int
	flagOverlap                int
	flagOverlapX, flagOverlapY int
	flagPolicy                 string
	flagFillMode               string
	flagFillColor              string
	flagFillSynth              string

	flagWindowLen     int
	flagWindowOverlap int
)

func mergeTileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("tile-width") {
		cfg.Tile.Width = flagTileW
	}
	if f.Changed("tile-height") {
		cfg.Tile.Height = flagTileH
	}
	if f.Changed("overlap") {
		cfg.Tile.Overlap = flagOverlap
		cfg.Tile.OverlapX, cfg.Tile.OverlapY = nil, nil
	}
	if f.Changed("overlap-x") {
		cfg.Tile.OverlapX = &flagOverlapX
	}
	if f.Changed("overlap-y") {
		cfg.Tile.OverlapY = &flagOverlapY
	}
	if f.Changed("policy") {
		cfg.Tile.Policy = flagPolicy
	}
	mergeFillFlags(cmd, &cfg.Tile.Fill)
}

func mergeWindowFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("length") {
		cfg.Window.Length = flagWindowLen
	}
	if f.Changed("overlap") {
		cfg.Window.Overlap = flagWindowOverlap
	}
	if f.Changed("policy") {
		cfg.Window.Policy = flagPolicy
	}
	mergeFillFlags(cmd, &cfg.Window.Fill)
}

func init() {
	tf := tileCmd.Flags()
	tf.IntVar(&flagTileW, "tile-width", 0, "tile width in pixels")
	tf.IntVar(&flagTileH, "tile-height", 0, "tile height in pixels")
	tf.IntVar(&flagOverlap, "overlap", 0, "overlap for both axes in pixels")
	tf.IntVar(&flagOverlapX, "overlap-x", 0, "horizontal overlap (overrides --overlap)")
	tf.IntVar(&flagOverlapY, "overlap-y", 0, "vertical overlap (overrides --overlap)")
	tf.StringVar(&flagPolicy, "policy", "", "short-boundary policy: pad or discard")
	addFillFlags(tileCmd)

	wf := windowCmd.Flags()
	wf.IntVar(&flagWindowLen, "length", 0, "window length in frames")
	wf.IntVar(&flagWindowOverlap, "overlap", 0, "overlap in frames")
	wf.StringVar(&flagPolicy, "policy", "", "short-boundary policy: pad, discard or none")
	addFillFlags(windowCmd)

	rootCmd.AddCommand(tileCmd, windowCmd)
}
