package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/tiling"
)

var padCmd = &cobra.Command{
	Use:   "pad",
	Short: "Grow frames to a target size with a fill strategy",
	Long: `Grow every frame to the target width and height, recording the
margins on each frame so crop can remove them again — even after the
frames were uniformly resized in between.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("width") {
			cfg.Pad.Width = flagPadW
		}
		if f.Changed("height") {
			cfg.Pad.Height = flagPadH
		}
		if f.Changed("center") {
			cfg.Pad.Center = flagPadCenter
		}
		mergeFillFlags(cmd, &cfg.Pad.Fill)
		opts, err := cfg.Pad.Options()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		padded, err := tiling.Pad(src, opts)
		if err != nil {
			return err
		}
		slog.Info("padding", "from", src.Shape().String(), "to", padded.Shape().String())
		return writeOutput(ctx, padded)
	},
}

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Pad frames up to the next multiple of a modulus",
	Long: `Pad frames on the right and bottom up to the next multiple of the
given moduli, the alignment transforms with fixed block sizes need.
Reversible with crop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("width-mod") {
			cfg.Mod.WidthMod = flagModW
		}
		if f.Changed("height-mod") {
			cfg.Mod.HeightMod = flagModH
		}
		mergeFillFlags(cmd, &cfg.Mod.Fill)
		spec, err := cfg.Mod.Fill.Spec()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		padded, err := tiling.Mod(src, cfg.Mod.WidthMod, cfg.Mod.HeightMod, spec)
		if err != nil {
			return err
		}
		slog.Info("modulus padding", "from", src.Shape().String(), "to", padded.Shape().String())
		return writeOutput(ctx, padded)
	},
}

var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Undo pad or mod from the recorded margins",
	Long: `Remove the margins pad or mod recorded on the frames, scaling them
if the frames were resized in between. With explicit geometry flags the
rectangle is cut without consulting the records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		src, err := loadInput(ctx)
		if err != nil {
			return err
		}

		var cropped frame.Sequence
		f := cmd.Flags()
		if f.Changed("width") || f.Changed("height") {
			cropped, err = tiling.CropRect(src, flagCropX, flagCropY, flagCropW, flagCropH)
		} else {
			cropped, err = tiling.Crop(ctx, src)
		}
		if err != nil {
			return err
		}
		slog.Info("cropping", "from", src.Shape().String(), "to", cropped.Shape().String())
		return writeOutput(ctx, cropped)
	},
}

var tpadCmd = &cobra.Command{
	Use:   "tpad",
	Short: "Extend the sequence with synthetic lead-in and lead-out frames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("start") {
			cfg.TPad.Start = flagTPadStart
		}
		if f.Changed("end") {
			cfg.TPad.End = flagTPadEnd
		}
		mergeFillFlags(cmd, &cfg.TPad.Fill)
		opts, err := cfg.TPad.Options()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		padded, err := tiling.TPad(src, opts)
		if err != nil {
			return err
		}
		slog.Info("temporal padding", "from", src.Len(), "to", padded.Len())
		return writeOutput(ctx, padded)
	},
}

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Undo tpad from the recorded frame counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIO(); err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		src, err := loadInput(ctx)
		if err != nil {
			return err
		}
		trimmed, err := tiling.Trim(ctx, src)
		if err != nil {
			return err
		}
		slog.Info("trimming", "from", src.Len(), "to", trimmed.Len())
		return writeOutput(ctx, trimmed)
	},
}

var (
	flagPadW, flagPadH         int
	flagPadCenter              bool
	flagModW, flagModH         int
	flagCropX, flagCropY       int
	flagCropW, flagCropH       int
	flagTPadStart, flagTPadEnd int
)

func init() {
	pf := padCmd.Flags()
	pf.IntVar(&flagPadW, "width", 0, "target width (0 keeps the axis)")
	pf.IntVar(&flagPadH, "height", 0, "target height (0 keeps the axis)")
	pf.BoolVar(&flagPadCenter, "center", false, "split margins evenly between both borders")
	addFillFlags(padCmd)

	mf := modCmd.Flags()
	mf.IntVar(&flagModW, "width-mod", 1, "width modulus")
	mf.IntVar(&flagModH, "height-mod", 1, "height modulus")
	addFillFlags(modCmd)

	cf := cropCmd.Flags()
	cf.IntVar(&flagCropX, "x", 0, "explicit crop origin x")
	cf.IntVar(&flagCropY, "y", 0, "explicit crop origin y")
	cf.IntVar(&flagCropW, "width", 0, "explicit crop width")
	cf.IntVar(&flagCropH, "height", 0, "explicit crop height")

	tf := tpadCmd.Flags()
	tf.IntVar(&flagTPadStart, "start", 0, "frames prepended")
	tf.IntVar(&flagTPadEnd, "end", 0, "frames appended")
	addFillFlags(tpadCmd)

	rootCmd.AddCommand(padCmd, modCmd, cropCmd, tpadCmd, trimCmd)
}
