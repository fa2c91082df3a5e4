package player

import (
	"errors"
	"fmt"

	"github.com/satindergrewal/p3player/internal/audio"
)

var (
	// ErrInvalidArgument covers out-of-range indices and control calls made
	// in a state that cannot honor them.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyPlaylist is returned by Play when there is nothing to play.
	ErrEmptyPlaylist = fmt.Errorf("%w: playlist is empty", ErrInvalidArgument)

	// ErrIO marks a track whose input could not be opened or read.
	ErrIO = errors.New("track input error")

	// ErrOutput marks a failure to open or write the output sink.
	ErrOutput = errors.New("audio output error")

	// ErrClosed is returned by a Controller after Close.
	ErrClosed = errors.New("controller closed")
)

// ErrorKind groups per-track failures for status reporting.
type ErrorKind int

const (
	ErrorInternal ErrorKind = iota
	ErrorDecode
	ErrorIO
	ErrorOutput
)

// String returns the kind name used in status events.
func (k ErrorKind) String() string {
	switch k {
	case ErrorDecode:
		return "decode"
	case ErrorIO:
		return "io"
	case ErrorOutput:
		return "output"
	default:
		return "internal"
	}
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	var de *audio.DecodeError
	switch {
	case errors.As(err, &de):
		return ErrorDecode
	case errors.Is(err, ErrIO):
		return ErrorIO
	case errors.Is(err, ErrOutput):
		return ErrorOutput
	default:
		return ErrorInternal
	}
}
