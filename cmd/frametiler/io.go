package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/e7canasta/frametiler/capture"
	"github.com/e7canasta/frametiler/frame"
	"github.com/e7canasta/frametiler/imageseq"
	"github.com/e7canasta/frametiler/tiling"
)

// loadInput materializes the configured input: an image directory, or
// a decoded video file when --video is set.
func loadInput(ctx context.Context) (*frame.MemSequence, error) {
	if flagVideo {
		return capture.Open(ctx, capture.Config{
			Path:      cfg.Input,
			Width:     cfg.Capture.Width,
			Height:    cfg.Capture.Height,
			FPS:       cfg.Capture.FPS,
			MaxFrames: cfg.Capture.MaxFrames,
		})
	}
	return imageseq.Read(cfg.Input)
}

// writeOutput renders a lazy result sequence with the worker pool and
// stores it under the configured output directory.
func writeOutput(ctx context.Context, seq frame.Sequence) error {
	started := time.Now()
	rendered, err := tiling.Render(ctx, seq, cfg.Workers)
	if err != nil {
		return err
	}
	err = imageseq.Write(ctx, cfg.Output, rendered, imageseq.WriteOptions{
		Format:  cfg.Format,
		Quality: cfg.JPEGQuality,
	})
	if err != nil {
		return err
	}
	slog.Info("output written",
		"dir", cfg.Output,
		"frames", rendered.Len(),
		"shape", rendered.Shape().String(),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return nil
}
