package capture

import (
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// elements holds the pipeline parts Open needs after construction.
type elements struct {
	pipeline *gst.Pipeline
	sink     *app.Sink
}

// newFilePipeline builds a decode pipeline for a local media file:
//
//	filesrc → decodebin → videoconvert → videoscale → videorate →
//	capsfilter → appsink
//
// decodebin has dynamic pads, linked in the pad-added callback once
// the demuxer knows the stream layout. The pipeline is configured but
// not started.
func newFilePipeline(cfg Config) (*elements, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("capture: create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return nil, fmt.Errorf("capture: create filesrc: %w", err)
	}
	filesrc.SetProperty("location", cfg.Path)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return nil, fmt.Errorf("capture: create decodebin: %w", err)
	}

	tail, sink, err := conversionTail(pipeline, cfg)
	if err != nil {
		return nil, err
	}

	pipeline.AddMany(filesrc, decodebin)
	if err := filesrc.Link(decodebin); err != nil {
		return nil, fmt.Errorf("capture: link filesrc: %w", err)
	}

	// decodebin exposes one pad per decoded stream; link the video pad
	// to the conversion tail and ignore audio.
	decodebin.Connect("pad-added", func(self *gst.Element, pad *gst.Pad) {
		linkDecodedPad(pad, tail)
	})

	return &elements{pipeline: pipeline, sink: sink}, nil
}

// newRTSPPipeline builds a bounded live capture pipeline:
//
//	rtspsrc → rtph264depay → avdec_h264 → videoconvert → videoscale →
//	videorate → capsfilter → appsink
//
// rtspsrc uses TCP-only transport; its dynamic pads are linked in the
// pad-added callback.
func newRTSPPipeline(cfg Config) (*elements, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("capture: create pipeline: %w", err)
	}

	rtspsrc, err := gst.NewElement("rtspsrc")
	if err != nil {
		return nil, fmt.Errorf("capture: create rtspsrc: %w", err)
	}
	rtspsrc.SetProperty("location", cfg.URL)
	rtspsrc.SetProperty("protocols", 4) // TCP only
	rtspsrc.SetProperty("latency", 200)

	depay, err := gst.NewElement("rtph264depay")
	if err != nil {
		return nil, fmt.Errorf("capture: create rtph264depay: %w", err)
	}

	decoder, err := gst.NewElement("avdec_h264")
	if err != nil {
		return nil, fmt.Errorf("capture: create avdec_h264: %w", err)
	}
	decoder.SetProperty("max-threads", 0)

	tail, sink, err := conversionTail(pipeline, cfg)
	if err != nil {
		return nil, err
	}

	pipeline.AddMany(rtspsrc, depay, decoder)
	if err := gst.ElementLinkMany(depay, decoder, tail); err != nil {
		return nil, fmt.Errorf("capture: link rtsp pipeline: %w", err)
	}

	rtspsrc.Connect("pad-added", func(self *gst.Element, pad *gst.Pad) {
		linkDecodedPad(pad, depay)
	})

	return &elements{pipeline: pipeline, sink: sink}, nil
}

// conversionTail adds and links the common RGB conversion chain, from
// videoconvert through the appsink, and returns its entry element.
func conversionTail(pipeline *gst.Pipeline, cfg Config) (*gst.Element, *app.Sink, error) {
	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create videoconvert: %w", err)
	}
	converter.SetProperty("n-threads", 0)

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)
	videorate.SetProperty("skip-to-first", true)

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(buildCaps(cfg.Width, cfg.Height, cfg.FPS)))

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create appsink: %w", err)
	}
	// Lossless collection: no clock sync, no dropping, small buffer
	// window so the decoder backpressures instead of racing ahead.
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 4)
	sink.SetProperty("drop", false)

	pipeline.AddMany(converter, scaler, videorate, capsfilter, sink.Element)
	if err := gst.ElementLinkMany(converter, scaler, videorate, capsfilter, sink.Element); err != nil {
		return nil, nil, fmt.Errorf("capture: link conversion tail: %w", err)
	}
	return converter, sink, nil
}

// linkDecodedPad links a dynamic source pad to sink's static input,
// skipping pads that are already linked or not ours to take.
func linkDecodedPad(pad *gst.Pad, sink *gst.Element) {
	sinkPad := sink.GetStaticPad("sink")
	if sinkPad == nil || sinkPad.IsLinked() {
		return
	}
	pad.Link(sinkPad)
}

// buildCaps builds the appsink caps string. Zero width/height keep the
// source resolution; zero fps keeps the source timing. Fractional
// rates below 1 become 1/N fractions.
func buildCaps(width, height int, fps float64) string {
	caps := "video/x-raw,format=RGB"
	if width > 0 && height > 0 {
		caps += fmt.Sprintf(",width=%d,height=%d", width, height)
	}
	if fps > 0 {
		num, den := 1, 1
		if fps < 1.0 {
			den = int(1.0/fps + 0.5)
		} else {
			num = int(fps + 0.5)
		}
		caps += fmt.Sprintf(",framerate=%d/%d", num, den)
	}
	return caps
}
