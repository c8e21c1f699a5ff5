// Package tiling partitions frame sequences into overlapping units and
// reconstructs them after the units passed through an external,
// per-unit transform.
//
// The forward direction cuts along space (Tile) or time (Window) using
// one partition plan per axis: units of size U every stride S = U - O.
// Every emitted unit carries a metadata tag describing the full plan,
// so the inverse direction (Untile, Unwindow) can run with no
// arguments at all: geometry, unit count and any uniform resize the
// external transform applied are recovered from the tags and validated
// against the frames actually present.
//
// Reconstruction is crop by default (overlap regions are removed along
// seam midlines) and fade on request (overlap regions are blended with
// complementary ramps). Both directions are lazy: producing output
// position k pulls only the unit(s) that cover k.
//
//	tiles, err := tiling.Tile(src, tiling.TileOptions{
//		TileW: 256, TileH: 256, OverlapX: 16, OverlapY: 16,
//		Policy: tiling.PolicyPad,
//		Fill:   fill.Spec{Mode: fill.Mirror},
//	})
//	...external per-tile transform...
//	restored, err := tiling.Untile(ctx, transformed, tiling.UntileOptions{Fade: true})
package tiling
