package main

import (
	"fmt"

	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/config"
)

// newOutput prepares the configured audio backend. The returned func opens
// one sink per track; release tears the backend down.
func newOutput(c config.Config) (open audio.OpenSinkFunc, release func(), err error) {
	switch c.Sink {
	case config.SinkPortAudio:
		if err := audio.InitDevices(); err != nil {
			return nil, nil, err
		}
		open = func() (audio.Sink, error) {
			s, err := audio.OpenDevice(c.DeviceBuffer)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		return open, audio.TerminateDevices, nil

	case config.SinkOto:
		octx, err := audio.NewOtoContext()
		if err != nil {
			return nil, nil, err
		}
		open = func() (audio.Sink, error) {
			return audio.OpenOto(octx), nil
		}
		return open, func() {}, nil

	case config.SinkNull:
		// Paced so playback and live listeners still run in real time.
		open = func() (audio.Sink, error) {
			return audio.Paced(audio.Discard, audio.FrameDuration), nil
		}
		return open, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q", c.Sink)
}
