package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/satindergrewal/p3player/internal/api"
	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/player"
	"github.com/satindergrewal/p3player/internal/stream"
	"github.com/satindergrewal/p3player/internal/watch"
)

var (
	noAutoplay bool

	serveCmd = &cobra.Command{
		Use:   "serve [FILES...]",
		Short: "Run a playlist with an HTTP control API and live listening",
		Long: "Serve plays a playlist on the local output and exposes it over HTTP:\n" +
			"/api/* to control playback, /stream for a live WAV stream and\n" +
			"/offer for WebRTC listeners. P3_WATCH_DIR adds new files as they appear.",
		Args: cobra.ArbitraryArgs,
		RunE: serve,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&noAutoplay, "no-autoplay", false, "wait for /api/play instead of starting right away")
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	openOutput, closeOutput, err := newOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	// Every track plays on the local output and feeds live listeners.
	broadcaster := stream.NewBroadcaster()
	ctl := player.NewController(ctx, player.Config{
		Engine: player.EngineConfig{
			OpenSink: func() (audio.Sink, error) {
				out, err := openOutput()
				if err != nil {
					return nil, err
				}
				return audio.MultiSink(out, broadcaster.Sink()), nil
			},
			Logger: logger,
		},
		Loop:   cfg.Loop,
		Logger: logger.WithPrefix("player"),
	})
	defer ctl.Close()

	apiServer := api.NewServer(ctl, logger)
	apiServer.SetListenerCountFunc(broadcaster.ListenerCount)
	ctl.SetCallbacks(apiServer.Callbacks())

	for _, path := range args {
		if err := ctl.AddTrack(path); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	apiServer.Register(mux)
	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster, logger))
	if cfg.WebRTC {
		rtc := stream.NewWebRTCHandler(broadcaster, cfg.WebRTCBitrate, logger)
		defer rtc.Close()
		mux.Handle("/offer", rtc)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("p3player live", "addr", addr, "tracks", len(args))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		ctl.Stop()
		return server.Close()
	})
	if cfg.WatchDir != "" {
		g.Go(func() error {
			return watch.Dir(gctx, cfg.WatchDir, ctl.AddTrack, logger)
		})
	}

	if !noAutoplay && len(args) > 0 {
		if err := ctl.Play(); err != nil {
			logger.Error("could not start playback", "error", err)
		}
	}

	return g.Wait()
}
