package audio

import (
	"encoding/binary"
	"time"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitDepth      = 16
	FrameDuration = 60 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 60ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BlocksDuration returns the playback time of n decoded frames.
func BlocksDuration(n int) time.Duration {
	return time.Duration(n) * FrameDuration
}
