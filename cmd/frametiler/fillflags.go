package main

import (
	"github.com/spf13/cobra"

	"github.com/e7canasta/frametiler/internal/config"
)

// addFillFlags registers the fill strategy flags shared by every
// command that can materialize boundary content.
func addFillFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagFillMode, "fill", "", "fill mode: mirror, wrap, repeat, falloff, solid or synth")
	f.StringVar(&flagFillColor, "fill-color", "", "hex color for --fill solid (e.g. #202020)")
	f.StringVar(&flagFillSynth, "fill-synth", "", "registered synthesizer name for --fill synth")
}

func mergeFillFlags(cmd *cobra.Command, fc *config.FillConfig) {
	f := cmd.Flags()
	if f.Changed("fill") {
		fc.Mode = flagFillMode
	}
	if f.Changed("fill-color") {
		fc.Color = flagFillColor
	}
	if f.Changed("fill-synth") {
		fc.Synth = flagFillSynth
	}
}
