// Command frametiler partitions image and video sequences into
// overlapping units, and reconstructs them after an external per-unit
// transform.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/e7canasta/frametiler/internal/config"
)

const version = "v0.1.0"

var (
	cfg = config.Default()

	flagConfig  string
	flagInput   string
	flagOutput  string
	flagFormat  string
	flagQuality int
	flagWorkers int
	flagVideo   bool
	flagDebug   bool
	flagLogJSON bool
)

var rootCmd = &cobra.Command{
	Use:     "frametiler",
	Short:   "Overlapped tiling and windowing for frame sequences",
	Version: version,
	Long: `frametiler splits frame sequences into overlapping tiles or temporal
windows, tags every unit with its partition provenance, and later
reconstructs the original sequence — even after an external tool
uniformly resized the units.

Sequences are exchanged as directories of numbered PNG/JPEG files with
a metadata sidecar; with --video, input is decoded from a media file
through GStreamer instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		if flagConfig != "" {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		mergeFlags()
		return nil
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if flagLogJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// mergeFlags lets explicitly set flags win over the job file.
func mergeFlags() {
	flags := rootCmd.PersistentFlags()
	if flags.Changed("input") || cfg.Input == "" {
		cfg.Input = flagInput
	}
	if flags.Changed("output") || cfg.Output == "" {
		cfg.Output = flagOutput
	}
	if flags.Changed("format") {
		cfg.Format = flagFormat
	}
	if flags.Changed("jpeg-quality") {
		cfg.JPEGQuality = flagQuality
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
}

// requireIO checks the fields every sequence-transforming command needs.
func requireIO() error {
	if cfg.Input == "" {
		return fmt.Errorf("no input: set --input or the job file's input field")
	}
	if cfg.Output == "" {
		return fmt.Errorf("no output: set --output or the job file's output field")
	}
	return nil
}

// signalContext cancels on SIGINT/SIGTERM so long renders stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown signal received, stopping")
		cancel()
	}()
	return ctx, cancel
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "yaml job file")
	pf.StringVarP(&flagInput, "input", "i", "", "input image directory (or video file with --video)")
	pf.StringVarP(&flagOutput, "output", "o", "", "output image directory")
	pf.StringVar(&flagFormat, "format", "png", "output image format: png or jpeg")
	pf.IntVar(&flagQuality, "jpeg-quality", 90, "jpeg quality (1-100)")
	pf.IntVar(&flagWorkers, "workers", 0, "render workers (0 = one per CPU)")
	pf.BoolVar(&flagVideo, "video", false, "decode input as a video file via GStreamer")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.BoolVar(&flagLogJSON, "log-json", false, "log as JSON instead of text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
