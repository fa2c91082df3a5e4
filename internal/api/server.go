// Package api exposes the playback controller over a small JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/p3player/internal/player"
)

// Server serves the control API for one controller.
type Server struct {
	ctl *player.Controller
	log *log.Logger

	mu        sync.Mutex
	lastEvent string
	lastError *errorInfo
	listeners func() int
	startedAt time.Time
}

type errorInfo struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NewServer creates an API server for ctl.
func NewServer(ctl *player.Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		ctl:       ctl,
		log:       logger.WithPrefix("api"),
		startedAt: time.Now(),
	}
}

// SetListenerCountFunc sets the function reporting live listeners.
func (s *Server) SetListenerCountFunc(fn func() int) {
	s.mu.Lock()
	s.listeners = fn
	s.mu.Unlock()
}

// Callbacks returns hooks that record controller notifications for
// /api/status. Pass them to Controller.SetCallbacks.
func (s *Server) Callbacks() player.Callbacks {
	return player.Callbacks{
		TrackStarted: func(index int, track player.Track) {
			s.mu.Lock()
			s.lastEvent = "track_started"
			s.mu.Unlock()
		},
		Stopped: func(reason player.StopReason) {
			s.mu.Lock()
			s.lastEvent = "stopped:" + reason.String()
			s.mu.Unlock()
		},
		Error: func(kind player.ErrorKind, err error) {
			s.mu.Lock()
			s.lastEvent = "error"
			s.lastError = &errorInfo{Kind: kind.String(), Message: err.Error(), At: time.Now()}
			s.mu.Unlock()
		},
	}
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/api/tracks/remove", s.handleRemove)
	mux.HandleFunc("/api/tracks/clear", s.post(func(r *http.Request) error {
		s.ctl.ClearPlaylist()
		return nil
	}))
	mux.HandleFunc("/api/play", s.handlePlay)
	mux.HandleFunc("/api/pause", s.post(func(r *http.Request) error {
		s.ctl.Pause()
		return nil
	}))
	mux.HandleFunc("/api/resume", s.post(func(r *http.Request) error {
		s.ctl.Resume()
		return nil
	}))
	mux.HandleFunc("/api/stop", s.post(func(r *http.Request) error {
		s.ctl.Stop()
		return nil
	}))
	mux.HandleFunc("/api/skip", s.post(func(r *http.Request) error {
		s.ctl.Skip()
		return nil
	}))
	mux.HandleFunc("/api/loop", s.handleLoop)
}

// Handler returns a mux with only the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.ctl.Status()
	tracks := s.ctl.Tracks()
	paths := make([]string, len(tracks))
	for i, t := range tracks {
		paths[i] = t.Path
	}

	s.mu.Lock()
	lastEvent, lastError, listeners := s.lastEvent, s.lastError, s.listeners
	s.mu.Unlock()

	resp := map[string]any{
		"state":      st.State.String(),
		"index":      st.Index,
		"track_path": st.Track.Path,
		"track_name": "",
		"position":   st.Position.Seconds(),
		"loop":       st.Loop,
		"tracks":     paths,
		"last_event": lastEvent,
		"last_error": lastError,
		"uptime":     time.Since(s.startedAt).Round(time.Second).Seconds(),
	}
	if st.Track.Path != "" {
		resp["track_name"] = st.Track.Name()
	}
	if listeners != nil {
		resp["listeners"] = listeners()
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{"tracks": s.ctl.Tracks()})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "GET or POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := s.ctl.AddTrack(req.Path); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tracks": len(s.ctl.Tracks())})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := s.ctl.RemoveTrack(*req.Index); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Index *int `json:"index"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	var err error
	if req.Index != nil {
		err = s.ctl.PlayAt(*req.Index)
	} else {
		err = s.ctl.Play()
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLoop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	s.ctl.SetLoop(req.Enabled)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "loop": req.Enabled})
}

// post wraps a body-less control action.
func (s *Server) post(action func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		if err := action(r); err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, player.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, player.ErrClosed):
		status = http.StatusServiceUnavailable
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]any{"ok": false, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
