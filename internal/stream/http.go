package stream

import (
	"encoding/binary"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/p3player/internal/audio"
)

// HTTPHandler serves the live player output as an open-ended WAV stream.
type HTTPHandler struct {
	broadcaster *Broadcaster
	log         *log.Logger
}

// NewHTTPHandler creates an HTTP stream handler.
func NewHTTPHandler(b *Broadcaster, logger *log.Logger) *HTTPHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPHandler{broadcaster: b, log: logger.WithPrefix("http")}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	h.log.Info("listener connected", "total", h.broadcaster.ListenerCount())
	defer h.log.Info("listener disconnected")

	if _, err := w.Write(streamHeader()); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.done:
			return
		case block := <-listener.C:
			if _, err := w.Write(audio.SamplesToBytes(block)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// unknownSize marks the RIFF and data chunk lengths of a live stream.
const unknownSize = 0xFFFFFFFF

// streamHeader is a 44-byte PCM WAV header with unknown lengths.
func streamHeader() []byte {
	h := make([]byte, 44)
	copy(h[0:], "RIFF")
	binary.LittleEndian.PutUint32(h[4:], unknownSize)
	copy(h[8:], "WAVE")
	copy(h[12:], "fmt ")
	binary.LittleEndian.PutUint32(h[16:], 16)
	binary.LittleEndian.PutUint16(h[20:], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:], audio.Channels)
	binary.LittleEndian.PutUint32(h[24:], audio.SampleRate)
	binary.LittleEndian.PutUint32(h[28:], audio.SampleRate*audio.Channels*audio.BitDepth/8)
	binary.LittleEndian.PutUint16(h[32:], audio.Channels*audio.BitDepth/8)
	binary.LittleEndian.PutUint16(h[34:], audio.BitDepth)
	copy(h[36:], "data")
	binary.LittleEndian.PutUint32(h[40:], unknownSize)
	return h
}
