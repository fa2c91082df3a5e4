package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSink writes blocks to a 16-bit PCM WAV file.
type WAVSink struct {
	enc     *wav.Encoder
	closer  io.Closer
	buf     *goaudio.IntBuffer
	samples int
}

// NewWAVSink writes to w. The header is finalized on Close, which does not
// close w.
func NewWAVSink(w io.WriteSeeker) *WAVSink {
	return &WAVSink{
		enc: wav.NewEncoder(w, SampleRate, BitDepth, Channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
			Data:           make([]int, 0, FrameSamples),
			SourceBitDepth: BitDepth,
		},
	}
}

// CreateWAV creates or truncates path and returns a sink that owns the file.
func CreateWAV(path string) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav: %w", err)
	}
	s := NewWAVSink(f)
	s.closer = f
	return s, nil
}

func (s *WAVSink) Write(block []int16) error {
	s.buf.Data = s.buf.Data[:0]
	for _, v := range block {
		s.buf.Data = append(s.buf.Data, int(v))
	}
	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	s.samples += len(block)
	return nil
}

// Samples reports how many samples have been written.
func (s *WAVSink) Samples() int { return s.samples }

func (s *WAVSink) Close() error {
	err := s.enc.Close()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}
