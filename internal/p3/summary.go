package p3

import (
	"errors"
	"io"
)

// Summary describes a whole stream.
type Summary struct {
	Frames       int
	PayloadBytes int64
	MaxPayload   int
	Empty        int           // frames with a zero-length payload
	Types        map[uint8]int // frame count per type byte
	Consumed     int64         // bytes read, including any trailing partial frame
	Truncated    bool
}

// Summarize reads r to the end. visit, if not nil, sees every frame in order;
// an error from visit stops the scan and is returned with the partial summary.
func Summarize(r io.Reader, visit func(index int, f Frame) error) (Summary, error) {
	s := Summary{Types: make(map[uint8]int)}
	fr := NewReader(r)
	for {
		f, err := fr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.Consumed = fr.Offset()
			return s, err
		}
		if visit != nil {
			if err := visit(s.Frames, f); err != nil {
				s.Consumed = fr.Offset()
				return s, err
			}
		}
		s.Frames++
		s.PayloadBytes += int64(len(f.Payload))
		s.MaxPayload = max(s.MaxPayload, len(f.Payload))
		s.Types[f.Header.Type]++
		if len(f.Payload) == 0 {
			s.Empty++
		}
	}
	s.Consumed = fr.Offset()
	s.Truncated = fr.Truncated()
	return s, nil
}
