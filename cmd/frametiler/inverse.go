package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/e7canasta/frametiler/tiling"
)

var untileCmd = &cobra.Command{
	Use:   "untile",
	Short: "Reassemble frames from a tile grid",
	Long: `Reassemble original frames from tiles produced by tile. With no
flags the geometry, the unit count and any uniform resize the external
transform applied are recovered from the unit tags; manual overrides
replace individual tagged values, and a full-width/full-height override
also accounts for boundary tiles an external stage discarded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		mergeUntileFlags(cmd)

		ctx, cancel := signalContext()
		defer cancel()

		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		restored, err := tiling.Untile(ctx, src, cfg.Untile.UntileOptions())
		if err != nil {
			return err
		}
		slog.Info("untiling", "tiles", src.Len(), "frames", restored.Len(),
			"frame", restored.Shape().String(), "fade", cfg.Untile.Fade)
		return writeOutput(ctx, restored)
	},
}

var unwindowCmd = &cobra.Command{
	Use:   "unwindow",
	Short: "Reassemble the sequence from temporal windows",
	Long: `Reassemble the original sequence from windows produced by window.
Overlap frames are trimmed, or crossfaded with --fade; geometry is
recovered from the unit tags unless overridden.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		mergeUnwindowFlags(cmd)

		ctx, cancel := signalContext()
		defer cancel()

		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		restored, err := tiling.Unwindow(ctx, src, cfg.Unwindow.UnwindowOptions())
		if err != nil {
			return err
		}
		slog.Info("unwindowing", "input_frames", src.Len(), "output_frames", restored.Len(),
			"fade", cfg.Unwindow.Fade)
		return writeOutput(ctx, restored)
	},
}

var (
	flagFade       bool
	flagFullW      int
	flagFullH      int
	flagUnitW      int
	flagUnitH      int
	flagFullLen    int
	flagUnitLen    int
	flagOverlapT   int
	flagInvOverlap int
)

func mergeUntileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("fade") {
		cfg.Untile.Fade = flagFade
	}
	if f.Changed("full-width") {
		cfg.Untile.FullWidth = flagFullW
	}
	if f.Changed("full-height") {
		cfg.Untile.FullHeight = flagFullH
	}
	if f.Changed("unit-width") {
		cfg.Untile.UnitWidth = flagUnitW
	}
	if f.Changed("unit-height") {
		cfg.Untile.UnitHeight = flagUnitH
	}
	if f.Changed("overlap-x") {
		cfg.Untile.OverlapX = &flagOverlapX
	}
	if f.Changed("overlap-y") {
		cfg.Untile.OverlapY = &flagOverlapY
	}
	if f.Changed("overlap") {
		cfg.Untile.OverlapX = &flagInvOverlap
		cfg.Untile.OverlapY = &flagInvOverlap
	}
}

func mergeUnwindowFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("fade") {
		cfg.Unwindow.Fade = flagFade
	}
	if f.Changed("full-length") {
		cfg.Unwindow.FullLength = flagFullLen
	}
	if f.Changed("unit-length") {
		cfg.Unwindow.UnitLength = flagUnitLen
	}
	if f.Changed("overlap") {
		cfg.Unwindow.OverlapT = &flagOverlapT
	}
}

func init() {
	uf := untileCmd.Flags()
	uf.BoolVar(&flagFade, "fade", false, "blend overlaps instead of cropping them")
	uf.IntVar(&flagFullW, "full-width", 0, "override the original frame width")
	uf.IntVar(&flagFullH, "full-height", 0, "override the original frame height")
	uf.IntVar(&flagUnitW, "unit-width", 0, "override the forward tile width")
	uf.IntVar(&flagUnitH, "unit-height", 0, "override the forward tile height")
	uf.IntVar(&flagInvOverlap, "overlap", 0, "override the forward overlap on both axes")
	uf.IntVar(&flagOverlapX, "overlap-x", 0, "override the forward horizontal overlap")
	uf.IntVar(&flagOverlapY, "overlap-y", 0, "override the forward vertical overlap")

	wf := unwindowCmd.Flags()
	wf.BoolVar(&flagFade, "fade", false, "crossfade overlaps instead of trimming them")
	wf.IntVar(&flagFullLen, "full-length", 0, "override the original sequence length")
	wf.IntVar(&flagUnitLen, "unit-length", 0, "override the forward window length")
	wf.IntVar(&flagOverlapT, "overlap", 0, "override the forward window overlap")

	rootCmd.AddCommand(untileCmd, unwindowCmd)
}
