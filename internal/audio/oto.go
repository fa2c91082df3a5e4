package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

const otoDrainTimeout = 500 * time.Millisecond

// NewOtoContext creates the process-wide oto context for 16 kHz mono
// playback and waits for the device to be ready. oto allows one context
// per process.
func NewOtoContext() (*oto.Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   FrameDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready
	return ctx, nil
}

// OtoSink feeds an oto player through a pipe. Write blocks until the player
// has pulled the previous bytes, so the device paces the writer.
type OtoSink struct {
	pw     *io.PipeWriter
	player *oto.Player
}

// OpenOto starts a player on ctx.
func OpenOto(ctx *oto.Context) *OtoSink {
	pr, pw := io.Pipe()
	p := ctx.NewPlayer(pr)
	p.Play()
	return &OtoSink{pw: pw, player: p}
}

func (s *OtoSink) Write(block []int16) error {
	if _, err := s.pw.Write(SamplesToBytes(block)); err != nil {
		return fmt.Errorf("oto write: %w", err)
	}
	return nil
}

// Close ends the stream and lets the player finish what it already buffered.
func (s *OtoSink) Close() error {
	pipeErr := s.pw.Close()
	deadline := time.Now().Add(otoDrainTimeout)
	for s.player.IsPlaying() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	return errors.Join(pipeErr, s.player.Close())
}
