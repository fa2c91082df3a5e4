package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// InitDevices initializes PortAudio. Call once per process before OpenDevice
// and pair it with TerminateDevices.
func InitDevices() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	return nil
}

// TerminateDevices releases PortAudio.
func TerminateDevices() {
	portaudio.Terminate()
}

// DeviceSink plays blocks on the default output device. Write blocks until
// the device has buffer space for the data.
type DeviceSink struct {
	stream *portaudio.Stream
	buf    []int16
}

// OpenDevice opens and starts a mono 16-bit output stream on the default
// device with framesPerBuffer samples per device write.
func OpenDevice(framesPerBuffer int) (*DeviceSink, error) {
	if framesPerBuffer <= 0 {
		framesPerBuffer = FrameSize
	}
	s := &DeviceSink{buf: make([]int16, framesPerBuffer*Channels)}

	stream, err := portaudio.OpenDefaultStream(0, Channels, float64(SampleRate), framesPerBuffer, s.buf)
	if err != nil {
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start output stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *DeviceSink) Write(block []int16) error {
	for len(block) > 0 {
		n := copy(s.buf, block)
		clear(s.buf[n:])
		block = block[n:]

		// Underflow means the device ran dry before this write, e.g. after a
		// pause. The write itself still went through.
		if err := s.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			return fmt.Errorf("write output stream: %w", err)
		}
	}
	return nil
}

func (s *DeviceSink) Close() error {
	if s.stream == nil {
		return nil
	}
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	s.stream = nil
	return errors.Join(stopErr, closeErr)
}
