package stream

import (
	"bytes"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/p3player/internal/audio"
)

func TestStreamHeader(t *testing.T) {
	h := streamHeader()
	if len(h) != 44 {
		t.Fatalf("header length = %d, want 44", len(h))
	}
	if !bytes.Equal(h[0:4], []byte("RIFF")) || !bytes.Equal(h[8:12], []byte("WAVE")) {
		t.Errorf("bad RIFF/WAVE tags: %q", h[:12])
	}
	if rate := binary.LittleEndian.Uint32(h[24:]); rate != audio.SampleRate {
		t.Errorf("sample rate = %d, want %d", rate, audio.SampleRate)
	}
	if ch := binary.LittleEndian.Uint16(h[22:]); ch != audio.Channels {
		t.Errorf("channels = %d, want %d", ch, audio.Channels)
	}
	if bits := binary.LittleEndian.Uint16(h[34:]); bits != audio.BitDepth {
		t.Errorf("bit depth = %d, want %d", bits, audio.BitDepth)
	}
	if size := binary.LittleEndian.Uint32(h[40:]); size != unknownSize {
		t.Errorf("data size = %#x, want %#x", size, uint32(unknownSize))
	}
}

func TestHTTPHandlerStreamsPCM(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(NewHTTPHandler(b, log.New(io.Discard)))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want audio/wav", ct)
	}

	header := make([]byte, 44)
	if _, err := io.ReadFull(resp.Body, header); err != nil {
		t.Fatalf("read header: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for b.ListenerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	block := make([]int16, audio.FrameSamples)
	block[0] = 0x0102
	block[len(block)-1] = -2
	b.Publish(block)

	pcm := make([]byte, audio.FrameBytes)
	if _, err := io.ReadFull(resp.Body, pcm); err != nil {
		t.Fatalf("read pcm: %v", err)
	}
	if !bytes.Equal(pcm, audio.SamplesToBytes(block)) {
		t.Error("streamed PCM does not match published block")
	}
}
