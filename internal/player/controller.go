package player

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Config holds controller parameters.
type Config struct {
	Engine EngineConfig
	Loop   bool
	Logger *log.Logger
}

// Status is a snapshot of the controller.
type Status struct {
	State    State         `json:"-"`
	Index    int           `json:"index"`
	Track    Track         `json:"track"`
	Loop     bool          `json:"loop"`
	Tracks   int           `json:"tracks"`
	Position time.Duration `json:"-"`
}

// session is one run of the playback goroutine, from Play until it ends.
type session struct {
	done     chan struct{}
	stopping bool
	skip     bool
}

// Controller owns the playlist and sequences tracks through one engine at a
// time on a background goroutine. All methods are safe for concurrent use.
type Controller struct {
	cfg    Config
	log    *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	tracks    []Track
	current   int
	detached  bool // the track at current was removed while it played
	loop      bool
	engine    *Engine
	session   *session
	callbacks Callbacks
	closed    bool
}

// NewController creates an idle controller. Playback stops for good when
// ctx ends or Close is called.
func NewController(ctx context.Context, cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = cfg.Logger
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		cfg:    cfg,
		log:    cfg.Logger,
		ctx:    ctx,
		cancel: cancel,
		loop:   cfg.Loop,
	}
}

// SetCallbacks replaces the status notification hooks.
func (c *Controller) SetCallbacks(cb Callbacks) {
	c.mu.Lock()
	c.callbacks = cb
	c.mu.Unlock()
}

// AddTrack appends a track to the playlist.
func (c *Controller) AddTrack(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty track path", ErrInvalidArgument)
	}
	c.mu.Lock()
	c.tracks = append(c.tracks, Track{Path: path})
	n := len(c.tracks)
	c.mu.Unlock()
	c.log.Debug("track added", "path", path, "tracks", n)
	return nil
}

// RemoveTrack deletes the track at index. A track that is playing keeps
// playing; the next advance continues from the track that took its place.
func (c *Controller) RemoveTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.tracks) {
		return fmt.Errorf("%w: track index %d out of range [0,%d)", ErrInvalidArgument, index, len(c.tracks))
	}
	c.tracks = append(c.tracks[:index], c.tracks[index+1:]...)

	switch {
	case index < c.current:
		c.current--
	case index == c.current && c.session != nil:
		c.detached = true
	}
	return nil
}

// ClearPlaylist removes every track. A playing track finishes and then
// playback ends.
func (c *Controller) ClearPlaylist() {
	c.mu.Lock()
	c.tracks = nil
	c.current = 0
	if c.session != nil {
		c.detached = true
	}
	c.mu.Unlock()
}

// Tracks returns a copy of the playlist.
func (c *Controller) Tracks() []Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Track(nil), c.tracks...)
}

// SetLoop sets whether playback wraps to the first track after the last.
func (c *Controller) SetLoop(loop bool) {
	c.mu.Lock()
	c.loop = loop
	c.mu.Unlock()
}

// Loop reports the loop flag.
func (c *Controller) Loop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}

// Play resumes a paused track, or starts playback at the current index.
// It does nothing while already playing. After Stop, Play returns at once
// and the new session begins when the stopped one has ended.
func (c *Controller) Play() error {
	return c.play(-1)
}

// PlayAt is Play with an explicit starting index. The index is ignored when
// playback is already active.
func (c *Controller) PlayAt(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: track index %d", ErrInvalidArgument, index)
	}
	return c.play(index)
}

func (c *Controller) play(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if len(c.tracks) == 0 {
		return ErrEmptyPlaylist
	}
	if index >= len(c.tracks) {
		return fmt.Errorf("%w: track index %d out of range [0,%d)", ErrInvalidArgument, index, len(c.tracks))
	}

	prev := c.session
	if prev != nil && !prev.stopping {
		if c.engine != nil && c.engine.Paused() {
			c.engine.Resume()
			c.log.Info("playback resumed", "index", c.current)
		}
		return nil
	}

	start := c.current
	if index >= 0 {
		start = index
	}
	if start >= len(c.tracks) {
		start = 0
	}
	c.current = start
	c.detached = false
	// A stopped session may still be winding down. Its engine is no longer
	// ours to pause, and the new goroutine starts once it has exited.
	c.engine = nil
	s := &session{done: make(chan struct{})}
	c.session = s

	go c.run(s, prev, start)
	return nil
}

// Pause holds playback without releasing the output. No-op when idle.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil && !c.engine.Paused() {
		c.engine.Pause()
		c.log.Info("playback paused", "index", c.current)
	}
}

// Resume continues a paused track. No-op when idle.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil && c.engine.Paused() {
		c.engine.Resume()
		c.log.Info("playback resumed", "index", c.current)
	}
}

// TogglePause pauses a playing track or resumes a paused one.
func (c *Controller) TogglePause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine == nil {
		return
	}
	if c.engine.Paused() {
		c.engine.Resume()
	} else {
		c.engine.Pause()
	}
}

// Stop ends the session at the next frame boundary. The current index is
// kept, so a later Play starts that track again from its first frame.
// Stop does not wait for the playback goroutine; use Wait for that.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.stopping {
		return
	}
	c.session.stopping = true
	if c.engine != nil {
		c.engine.Stop()
	}
}

// Skip ends the current track early and advances as if it had completed.
func (c *Controller) Skip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.stopping || c.engine == nil {
		return
	}
	c.session.skip = true
	c.engine.Stop()
}

// Wait blocks until the active session, if any, has ended.
func (c *Controller) Wait() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s != nil {
		<-s.done
	}
}

// Close stops playback, waits for it to end and rejects further Play calls.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.Wait()
}

// Status returns a snapshot for display.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		State:  StateIdle,
		Index:  c.current,
		Loop:   c.loop,
		Tracks: len(c.tracks),
	}
	if c.session != nil {
		st.State = StatePlaying
	}
	if c.engine != nil {
		st.Track = c.engine.Track()
		st.Position = c.engine.Position()
		if c.engine.Paused() {
			st.State = StatePaused
		}
	}
	return st
}

// run is the playback goroutine for one session. It waits for prev, if
// any, so sessions never overlap.
func (c *Controller) run(s, prev *session, index int) {
	if prev != nil {
		<-prev.done
	}
	reason := ReasonEndOfPlaylist
	failures := 0

	defer func() {
		c.mu.Lock()
		c.engine = nil
		if c.session == s {
			c.session = nil
		}
		cb := c.callbacks
		c.mu.Unlock()

		c.log.Info("playback ended", "reason", reason)
		cb.stopped(reason)
		close(s.done)
	}()

	for {
		c.mu.Lock()
		if s.stopping {
			c.mu.Unlock()
			reason = ReasonStopped
			return
		}
		if c.ctx.Err() != nil {
			c.mu.Unlock()
			reason = ReasonShutdown
			return
		}
		if index >= len(c.tracks) && c.loop {
			index = 0
		}
		if index >= len(c.tracks) {
			c.mu.Unlock()
			reason = ReasonEndOfPlaylist
			return
		}
		track := c.tracks[index]
		c.current = index
		c.detached = false
		eng := NewEngine(track, c.cfg.Engine)
		c.engine = eng
		cb := c.callbacks
		c.mu.Unlock()

		c.log.Info("now playing", "index", index, "track", track.Path)
		cb.trackStarted(index, track)

		res := eng.Run(c.ctx)

		c.mu.Lock()
		c.engine = nil
		skipped := s.skip
		s.skip = false
		stopping := s.stopping
		loop := c.loop
		n := len(c.tracks)
		next := c.current + 1
		if c.detached {
			next = c.current
		}
		c.mu.Unlock()

		if c.ctx.Err() != nil {
			reason = ReasonShutdown
			return
		}
		if stopping || (res.Stopped && !skipped) {
			reason = ReasonStopped
			return
		}

		if res.Err != nil {
			failures++
			c.log.Error("track failed", "track", track.Path, "kind", KindOf(res.Err), "error", res.Err)
			cb.failed(res.Err)
			if n == 0 {
				reason = ReasonEndOfPlaylist
				return
			}
			if !loop || failures >= n {
				reason = ReasonError
				return
			}
		} else {
			failures = 0
			c.log.Debug("track completed", "track", track.Path, "frames", res.Frames)
		}
		index = next
	}
}
