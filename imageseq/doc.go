// Package imageseq stores frame sequences as directories of numbered
// PNG or JPEG files, the exchange format for external per-unit tools
// that work on image files.
//
// Image files cannot carry the frame property bag, so the partition
// provenance is persisted in a metadata sidecar next to the images
// (meta.SidecarName). Write extracts the run's common tag from the
// frames; Read restores per-frame tags, deriving the per-unit indices
// from file order. A directory that round-trips through an external
// upscaler therefore reconstructs exactly like an in-process sequence.
package imageseq
