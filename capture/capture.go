package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/e7canasta/frametiler/frame"
)

// ErrNoSource is returned when a Config names neither a file nor a URL.
var ErrNoSource = errors.New("no capture source")

// Config selects and bounds a capture.
type Config struct {
	// Path is a local media file to decode. Mutually exclusive with URL.
	Path string

	// URL is an RTSP source to capture from live. Live capture has no
	// natural end, so MaxFrames is required with it.
	URL string

	// Width, Height scale decoded frames to a fixed size. Zero keeps
	// the source resolution.
	Width, Height int

	// FPS drops frames down to a target rate. Zero keeps every frame.
	FPS float64

	// MaxFrames ends the capture after this many frames. Zero means
	// until end of stream.
	MaxFrames int
}

func (c Config) validate() error {
	switch {
	case c.Path == "" && c.URL == "":
		return fmt.Errorf("capture: %w: set Path or URL", ErrNoSource)
	case c.Path != "" && c.URL != "":
		return fmt.Errorf("capture: Path and URL are mutually exclusive")
	case c.URL != "" && c.MaxFrames <= 0:
		return fmt.Errorf("capture: live capture needs MaxFrames")
	case (c.Width > 0) != (c.Height > 0):
		return fmt.Errorf("capture: Width and Height must be set together")
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("capture: negative target size %dx%d", c.Width, c.Height)
	case c.FPS < 0:
		return fmt.Errorf("capture: negative FPS %v", c.FPS)
	case c.MaxFrames < 0:
		return fmt.Errorf("capture: negative MaxFrames %d", c.MaxFrames)
	}
	return nil
}

// collector accumulates decoded frames behind the appsink callback.
type collector struct {
	mu     sync.Mutex
	frames []*frame.Frame

	frameCount uint64
	bytesRead  uint64
	max        int
}

// onNewSample maps the appsink buffer, copies the pixel data out (the
// buffer is reused by GStreamer) and appends the frame. Returns EOS
// once the frame budget is spent so the pipeline winds down upstream.
func (c *collector) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		slog.Warn("capture: failed to pull sample from appsink, skipping frame")
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("capture: sample without buffer, skipping frame")
		return gst.FlowOK
	}

	caps := sample.GetCaps()
	width, height, ok := capsSize(caps)
	if !ok {
		slog.Warn("capture: sample without size caps, skipping frame")
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) < width*height*3 {
		buffer.Unmap()
		slog.Warn("capture: short buffer", "got", len(data), "want", width*height*3)
		return gst.FlowOK
	}
	f := &frame.Frame{
		Data:      append([]byte(nil), data[:width*height*3]...),
		Width:     width,
		Height:    height,
		Format:    frame.RGB24,
		Timestamp: time.Now(),
	}
	buffer.Unmap()

	atomic.AddUint64(&c.bytesRead, uint64(len(f.Data)))
	n := atomic.AddUint64(&c.frameCount, 1)

	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()

	if c.max > 0 && n >= uint64(c.max) {
		return gst.FlowEOS
	}
	return gst.FlowOK
}

// capsSize extracts width and height from sample caps.
func capsSize(caps *gst.Caps) (width, height int, ok bool) {
	if caps == nil || caps.GetSize() == 0 {
		return 0, 0, false
	}
	s := caps.GetStructureAt(0)
	if s == nil {
		return 0, 0, false
	}
	w, errW := s.GetValue("width")
	h, errH := s.GetValue("height")
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	width, okW := w.(int)
	height, okH := h.(int)
	return width, height, okW && okH && width > 0 && height > 0
}

// Open decodes the configured source into an in-memory sequence. It
// blocks until end of stream, the frame budget, a pipeline error or
// context cancellation, whichever comes first; on cancellation the
// frames collected so far are discarded and ctx.Err() returned.
func Open(ctx context.Context, cfg Config) (*frame.MemSequence, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var (
		el  *elements
		err error
	)
	if cfg.Path != "" {
		el, err = newFilePipeline(cfg)
	} else {
		el, err = newRTSPPipeline(cfg)
	}
	if err != nil {
		return nil, err
	}
	defer el.pipeline.SetState(gst.StateNull)

	col := &collector{max: cfg.MaxFrames}
	el.sink.SetCallbacks(&app.SinkCallbacks{NewSampleFunc: col.onNewSample})

	if err := el.pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("capture: start pipeline: %w", err)
	}
	slog.Info("capture: pipeline started",
		"source", cfg.source(), "max_frames", cfg.MaxFrames)

	if err := monitorBus(ctx, el.pipeline); err != nil {
		return nil, err
	}

	col.mu.Lock()
	frames := col.frames
	col.mu.Unlock()
	if cfg.MaxFrames > 0 && len(frames) > cfg.MaxFrames {
		frames = frames[:cfg.MaxFrames]
	}

	slog.Info("capture: finished",
		"source", cfg.source(),
		"frames", atomic.LoadUint64(&col.frameCount),
		"bytes", atomic.LoadUint64(&col.bytesRead))

	if len(frames) == 0 {
		return nil, fmt.Errorf("capture: %s: %w", cfg.source(), frame.ErrEmptySequence)
	}
	return frame.FromFrames(frames)
}

func (c Config) source() string {
	if c.Path != "" {
		return c.Path
	}
	return c.URL
}

// monitorBus polls the pipeline bus until EOS or failure, classifying
// errors the way live capture deployments debug them.
func monitorBus(ctx context.Context, pipeline *gst.Pipeline) error {
	bus := pipeline.GetPipelineBus()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			return nil
		case gst.MessageError:
			gerr := msg.ParseError()
			category := classifyError(gerr)
			slog.Error("capture: pipeline error",
				"error", gerr.Error(),
				"debug", gerr.DebugString(),
				"category", category.String(),
			)
			return fmt.Errorf("capture: pipeline error [%s]: %s", category, gerr.Error())
		}
	}
}
