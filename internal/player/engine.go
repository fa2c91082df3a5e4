package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/p3"
)

// FrameDecoder turns one encoded payload into one PCM block.
type FrameDecoder interface {
	Decode(payload []byte) ([]int16, error)
}

// EngineConfig supplies the collaborators an engine builds per track.
// Zero fields fall back to os.Open, audio.NewDecoder, audio.Discard and the
// default logger.
type EngineConfig struct {
	Open       func(path string) (io.ReadCloser, error)
	NewDecoder func() (FrameDecoder, error)
	OpenSink   audio.OpenSinkFunc
	Logger     *log.Logger
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Open == nil {
		c.Open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	if c.NewDecoder == nil {
		c.NewDecoder = func() (FrameDecoder, error) { return audio.NewDecoder() }
	}
	if c.OpenSink == nil {
		c.OpenSink = func() (audio.Sink, error) { return audio.Discard, nil }
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Result describes how a track run ended.
type Result struct {
	Frames  int   // blocks written to the sink
	Stopped bool  // Stop was called or the context ended
	Err     error // per-track failure; nil on natural end and on stop
}

// Engine plays one track: demux, decode, write, until the stream ends, a
// frame fails to decode, or Stop is called. An Engine runs once.
//
// Pause, Resume and Stop may be called from any goroutine. The run loop
// checks them before every frame, so they take effect after at most one
// blocking sink write.
type Engine struct {
	track Track
	cfg   EngineConfig
	log   *log.Logger

	state  atomic.Int32
	stop   atomic.Bool
	pause  atomic.Bool
	frames atomic.Int64
	wake   chan struct{}
}

// NewEngine prepares an engine for track. Nothing is opened until Run.
func NewEngine(track Track, cfg EngineConfig) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		track: track,
		cfg:   cfg,
		log:   cfg.Logger.With("track", track.Name()),
		wake:  make(chan struct{}, 1),
	}
}

// Track returns the track this engine plays.
func (e *Engine) Track() Track { return e.track }

// State returns the current playback state.
func (e *Engine) State() State { return State(e.state.Load()) }

// Paused reports whether a pause is in effect or requested.
func (e *Engine) Paused() bool { return e.pause.Load() }

// Position is the playback time written to the sink so far.
func (e *Engine) Position() time.Duration {
	return audio.BlocksDuration(int(e.frames.Load()))
}

// Pause asks the run loop to hold before the next frame. The sink stays open.
func (e *Engine) Pause() {
	e.pause.Store(true)
}

// Resume releases a pause. Playback continues with the next unread frame.
func (e *Engine) Resume() {
	if e.pause.Swap(false) {
		e.signal()
	}
}

// Stop ends playback at the next frame boundary. It latches: a stopped
// engine never plays again.
func (e *Engine) Stop() {
	e.stop.Store(true)
	e.signal()
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run plays the track to the end on the calling goroutine. Cancelling ctx
// behaves like Stop. Every resource Run opens is released before it returns.
func (e *Engine) Run(ctx context.Context) Result {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StatePlaying)) {
		return Result{Err: fmt.Errorf("%w: engine already ran", ErrInvalidArgument)}
	}
	defer e.state.Store(int32(StateStopped))

	rc, err := e.cfg.Open(e.track.Path)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	defer rc.Close()

	dec, err := e.cfg.NewDecoder()
	if err != nil {
		return Result{Err: err}
	}

	sink, err := e.cfg.OpenSink()
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %w", ErrOutput, err)}
	}
	defer func() {
		if err := sink.Close(); err != nil {
			e.log.Warn("closing output", "error", err)
		}
	}()

	res := e.loop(ctx, p3.NewReader(rc), dec, sink)
	res.Frames = int(e.frames.Load())
	return res
}

func (e *Engine) loop(ctx context.Context, demux *p3.Reader, dec FrameDecoder, sink audio.Sink) Result {
	for {
		if e.stop.Load() || ctx.Err() != nil {
			e.log.Debug("playback stopped", "position", e.Position())
			return Result{Stopped: true}
		}

		if e.pause.Load() {
			e.state.Store(int32(StatePaused))
			select {
			case <-e.wake:
			case <-ctx.Done():
			}
			continue
		}
		e.state.Store(int32(StatePlaying))

		frame, err := demux.Next()
		if errors.Is(err, io.EOF) {
			if demux.Truncated() {
				e.log.Debug("stream ends mid-frame", "offset", demux.Offset())
			}
			return Result{}
		}
		if err != nil {
			return Result{Err: fmt.Errorf("%w: %w", ErrIO, err)}
		}

		block, err := dec.Decode(frame.Payload)
		if err != nil {
			return Result{Err: err}
		}
		if err := sink.Write(block); err != nil {
			return Result{Err: fmt.Errorf("%w: %w", ErrOutput, err)}
		}
		e.frames.Add(1)
	}
}
