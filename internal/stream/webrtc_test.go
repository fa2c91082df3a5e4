package stream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestWebRTCHandlerRejectsBadRequests(t *testing.T) {
	h := NewWebRTCHandler(NewBroadcaster(), 24000, log.New(io.Discard))

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"preflight", http.MethodOptions, "", http.StatusOK},
		{"get", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"garbage offer", http.MethodPost, "not json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/offer", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if h.PeerCount() != 0 {
		t.Errorf("PeerCount = %d, want 0", h.PeerCount())
	}
}
