// Package fill materializes boundary content for short units and padded
// borders.
//
// Every mode is a pure function of the boundary region and the deficit
// amount. The closed mode set covers the cheap structural fills (mirror,
// wrap, repeat, falloff, solid); anything heavier — inpainting, learned
// upscalers — plugs in behind the Synthesizer interface and is selected
// with Mode Synth plus a registered name. The partitioning engine itself
// never synthesizes samples; it only delegates here.
package fill
