// Package main provides the p3player command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/p3player/internal/config"
	"github.com/satindergrewal/p3player/internal/player"
)

var (
	// Version is set at build time.
	Version = ""

	cfg    config.Config
	logger *log.Logger

	sinkName string
	logLevel string
	loop     bool

	rootCmd = &cobra.Command{
		Use:   "p3player FILE",
		Short: "Play P3 Opus streams",
		Long: "Play P3 files: 60ms Opus frames at 16 kHz mono, each behind a 4 byte\n" +
			"header. Run with a file to play it once, or use serve for a playlist.",
		SilenceUsage:      true,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: setup,
		RunE:              playFile,
	}
)

// setup loads configuration and builds the logger every command uses.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Parse()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sink") {
		cfg.Sink = sinkName
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("loop") {
		cfg.Loop = loop
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:           cfg.Level(),
		ReportTimestamp: true,
	})
	log.SetDefault(logger)
	return nil
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// playFile plays one file to the end on the configured output.
func playFile(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	openSink, closeOutput, err := newOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	eng := player.NewEngine(player.Track{Path: path}, player.EngineConfig{
		Open: func(p string) (io.ReadCloser, error) {
			f, err := os.Open(p)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(out, "Now playing: %s\n", p)
			return f, nil
		},
		OpenSink: openSink,
		Logger:   logger,
	})

	res := eng.Run(ctx)
	if res.Stopped {
		fmt.Fprintln(out, "\nPlayback stopped")
	}
	fmt.Fprintln(out, "Playback completed")
	if res.Err != nil {
		return fmt.Errorf("%s: %w", player.KindOf(res.Err), res.Err)
	}
	logger.Debug("played", "frames", res.Frames, "duration", eng.Position())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&sinkName, "sink", config.SinkPortAudio, "audio output: portaudio, oto or null")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&loop, "loop", false, "repeat the playlist")

	rootCmd.AddCommand(serveCmd, exportCmd, encodeCmd, infoCmd)
}
