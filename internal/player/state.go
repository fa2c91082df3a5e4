package player

import "path/filepath"

// State is the playback state of an engine.
type State int32

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsActive returns true if playback is playing or paused.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Track identifies one P3 stream. It is copied by value into the engine
// that plays it, so later playlist edits never reach a running track.
type Track struct {
	Path string `json:"path"`
}

// Name is the base name of the track path.
func (t Track) Name() string {
	return filepath.Base(t.Path)
}
