package audio

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// DecodeError reports an encoded frame the codec rejected.
type DecodeError struct {
	Frame int // zero-based frame index within the track
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame %d: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder turns Opus frames into 16 kHz mono PCM blocks.
// It carries codec state between frames; use a fresh Decoder per track.
// Not safe for concurrent use.
type Decoder struct {
	dec    *opus.Decoder
	frames int
}

// NewDecoder creates a decoder fixed at SampleRate and Channels.
func NewDecoder() (*Decoder, error) {
	dec, err := opus.NewDecoder(SampleRate, Channels)
	if err != nil {
		return nil, fmt.Errorf("opus decoder: %w", err)
	}
	return &Decoder{dec: dec}, nil
}

// Decode converts one frame payload into a newly allocated PCM block of
// FrameSamples. Packets shorter than 60ms are padded with silence; longer
// packets fail. An empty payload is treated as a lost packet and yields a
// concealment block.
func (d *Decoder) Decode(payload []byte) ([]int16, error) {
	idx := d.frames
	d.frames++

	pcm := make([]int16, FrameSamples)
	if len(payload) == 0 {
		if err := d.dec.DecodePLC(pcm); err != nil {
			return nil, &DecodeError{Frame: idx, Err: err}
		}
		return pcm, nil
	}

	n, err := d.dec.Decode(payload, pcm)
	if err != nil {
		return nil, &DecodeError{Frame: idx, Err: err}
	}
	clear(pcm[n*Channels:])
	return pcm, nil
}

// Encoder packs 60ms PCM blocks into Opus frames.
type Encoder struct {
	enc *opus.Encoder
	buf []byte
}

// NewEncoder creates a VoIP-tuned encoder at SampleRate and Channels.
// bitrate <= 0 keeps the codec default.
func NewEncoder(bitrate int) (*Encoder, error) {
	enc, err := opus.NewEncoder(SampleRate, Channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	if bitrate > 0 {
		if err := enc.SetBitrate(bitrate); err != nil {
			return nil, fmt.Errorf("opus bitrate %d: %w", bitrate, err)
		}
	}
	return &Encoder{enc: enc, buf: make([]byte, 4000)}, nil
}

// Encode returns a newly allocated Opus frame for one block.
// The block length must be a valid Opus frame size; FrameSamples always is.
func (e *Encoder) Encode(block []int16) ([]byte, error) {
	n, err := e.enc.Encode(block, e.buf)
	if err != nil {
		return nil, fmt.Errorf("opus encode: %w", err)
	}
	out := make([]byte, n)
	copy(out, e.buf[:n])
	return out, nil
}
