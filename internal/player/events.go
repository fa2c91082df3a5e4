package player

// StopReason says why a playback session ended.
type StopReason int

const (
	// ReasonStopped means Stop was called.
	ReasonStopped StopReason = iota
	// ReasonEndOfPlaylist means the last track completed with loop off,
	// or the playlist was emptied.
	ReasonEndOfPlaylist
	// ReasonError means a track failed and playback could not continue.
	ReasonError
	// ReasonShutdown means the controller context ended.
	ReasonShutdown
)

// String returns the reason name used in status events.
func (r StopReason) String() string {
	switch r {
	case ReasonStopped:
		return "stopped"
	case ReasonEndOfPlaylist:
		return "end_of_playlist"
	case ReasonError:
		return "error"
	case ReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Callbacks receive status notifications from the playback goroutine.
// Any field may be nil. Callbacks must return promptly. They may call
// controller methods other than Close and Wait, which would wait for the
// goroutine the callback runs on.
type Callbacks struct {
	TrackStarted func(index int, track Track)
	Stopped      func(reason StopReason)
	Error        func(kind ErrorKind, err error)
}

func (c Callbacks) trackStarted(index int, track Track) {
	if c.TrackStarted != nil {
		c.TrackStarted(index, track)
	}
}

func (c Callbacks) stopped(reason StopReason) {
	if c.Stopped != nil {
		c.Stopped(reason)
	}
}

func (c Callbacks) failed(err error) {
	if c.Error != nil {
		c.Error(KindOf(err), err)
	}
}
