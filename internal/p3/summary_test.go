package p3

import (
	"bytes"
	"errors"
	"testing"
)

func TestSummarize(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteFrame(1, []byte{1, 2, 3})
	w.WriteFrame(1, nil)
	w.WriteFrame(2, bytes.Repeat([]byte{9}, 40))
	buf.Write([]byte{0, 0, 0, 10, 1}) // declares 10 bytes, carries 1

	s, err := Summarize(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Frames != 3 {
		t.Errorf("Frames = %d, want 3", s.Frames)
	}
	if s.PayloadBytes != 43 || s.MaxPayload != 40 || s.Empty != 1 {
		t.Errorf("bytes/max/empty = %d/%d/%d, want 43/40/1", s.PayloadBytes, s.MaxPayload, s.Empty)
	}
	if s.Types[1] != 2 || s.Types[2] != 1 {
		t.Errorf("Types = %v, want map[1:2 2:1]", s.Types)
	}
	if !s.Truncated {
		t.Error("Truncated = false, want true")
	}
	if s.Consumed != int64(buf.Len()) {
		t.Errorf("Consumed = %d, want whole input %d", s.Consumed, buf.Len())
	}
}

func TestSummarizeVisitStops(t *testing.T) {
	data := buildStream(t, []byte{1}, []byte{2}, []byte{3})
	stop := errors.New("stop")

	var seen []byte
	s, err := Summarize(bytes.NewReader(data), func(i int, f Frame) error {
		seen = append(seen, f.Payload[0])
		if i == 1 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want stop", err)
	}
	if !bytes.Equal(seen, []byte{1, 2}) {
		t.Errorf("visited %v, want [1 2]", seen)
	}
	if s.Frames != 1 {
		t.Errorf("Frames = %d, want 1 counted before the failing frame", s.Frames)
	}
}
