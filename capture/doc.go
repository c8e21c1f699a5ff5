// Package capture decodes video into frame sequences through GStreamer.
//
// Open builds a decode pipeline for a local file or a bounded RTSP
// capture, collects the frames an appsink delivers as interleaved RGB,
// and returns them as a materialized sequence ready for partitioning.
// Unlike a live streaming consumer, capture never drops frames: the
// partition engine needs every source frame exactly once.
//
// Requires the GStreamer runtime (and, for RTSP, the H.264 plugin set)
// on the host. Everything else in this repository works without it.
package capture
