// Package convert builds P3 streams from PCM WAV files.
package convert

import (
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/p3"
)

// ErrUnsupportedFormat is returned for WAV input that is not 16 kHz 16-bit
// integer PCM with one or two channels.
var ErrUnsupportedFormat = errors.New("unsupported WAV format")

// FrameType is the type byte written on every encoded frame.
const FrameType = 0

// Stats summarizes a conversion.
type Stats struct {
	Frames  int
	Samples int // input samples per channel
	Bytes   int // payload bytes written
}

// Duration is the playback length of the encoded stream.
func (s Stats) Duration() time.Duration {
	return audio.BlocksDuration(s.Frames)
}

// BlockEncoder packs one PCM block into a codec payload.
type BlockEncoder interface {
	Encode(block []int16) ([]byte, error)
}

// WAVToP3 encodes the WAV stream in r as 60ms Opus frames written to w.
// Stereo input is downmixed by averaging. The final block is padded with
// silence.
func WAVToP3(r io.ReadSeeker, w io.Writer, enc BlockEncoder) (Stats, error) {
	var st Stats

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return st, fmt.Errorf("%w: not a WAV file", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != 1 || dec.BitDepth != audio.BitDepth {
		return st, fmt.Errorf("%w: need 16-bit PCM, got format %d with %d bits", ErrUnsupportedFormat, dec.WavAudioFormat, dec.BitDepth)
	}
	if dec.SampleRate != audio.SampleRate {
		return st, fmt.Errorf("%w: need %d Hz, got %d Hz", ErrUnsupportedFormat, audio.SampleRate, dec.SampleRate)
	}
	chans := int(dec.NumChans)
	if chans < 1 || chans > 2 {
		return st, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, chans)
	}

	out := p3.NewWriter(w)
	emit := func(block []int16) error {
		payload, err := enc.Encode(block)
		if err != nil {
			return fmt.Errorf("frame %d: %w", st.Frames, err)
		}
		if err := out.WriteFrame(FrameType, payload); err != nil {
			return err
		}
		st.Frames++
		st.Bytes += len(payload)
		return nil
	}

	buf := &goaudio.IntBuffer{
		Data:   make([]int, audio.FrameSize*chans),
		Format: dec.Format(),
	}
	block := make([]int16, 0, audio.FrameSamples)
	for {
		n, err := dec.PCMBuffer(buf)
		for i := 0; i+chans <= n; i += chans {
			sum := 0
			for c := 0; c < chans; c++ {
				sum += buf.Data[i+c]
			}
			block = append(block, int16(sum/chans))
			st.Samples++
			if len(block) == audio.FrameSamples {
				if err := emit(block); err != nil {
					return st, err
				}
				block = block[:0]
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return st, fmt.Errorf("read WAV: %w", err)
		}
		if n == 0 || err != nil {
			break
		}
	}

	if rem := len(block); rem > 0 {
		block = block[:audio.FrameSamples]
		clear(block[rem:])
		if err := emit(block); err != nil {
			return st, err
		}
	}
	return st, nil
}
