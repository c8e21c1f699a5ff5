// Package frame defines the frame and sequence vocabulary shared by every
// frametiler operation.
//
// Philosophy: "Sequences are pulled, never pushed. Frames are immutable once
// produced."
//
// Design:
//   - Frame: one rectangular grid of interleaved 8-bit samples plus a
//     string property bag that rides through every operation
//   - Sequence: random-access pull interface (Len/Shape/Frame)
//   - MemSequence: materialized implementation for captured or decoded input
//
// Derived sequences (tiling, windowing, padding) are lazy views over their
// source: producing output position k pulls only the covering input frames.
package frame
