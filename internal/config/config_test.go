package config

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

var envVars = []string{
	"P3_SINK", "P3_DEVICE_BUFFER", "P3_LOOP", "P3_PORT", "P3_WATCH_DIR",
	"P3_WEBRTC", "P3_WEBRTC_BITRATE", "P3_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sink != SinkPortAudio {
		t.Errorf("Sink = %q, want portaudio", cfg.Sink)
	}
	if cfg.DeviceBuffer != 960 {
		t.Errorf("DeviceBuffer = %d, want 960", cfg.DeviceBuffer)
	}
	if cfg.Loop {
		t.Error("Loop = true, want false")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.WatchDir != "" {
		t.Errorf("WatchDir = %q, want empty", cfg.WatchDir)
	}
	if !cfg.WebRTC {
		t.Error("WebRTC = false, want true")
	}
	if cfg.WebRTCBitrate != 24000 {
		t.Errorf("WebRTCBitrate = %d, want 24000", cfg.WebRTCBitrate)
	}
	if cfg.Level() != log.InfoLevel {
		t.Errorf("Level = %v, want info", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("P3_SINK", "null")
	t.Setenv("P3_DEVICE_BUFFER", "480")
	t.Setenv("P3_LOOP", "true")
	t.Setenv("P3_PORT", "3000")
	t.Setenv("P3_WATCH_DIR", "/srv/p3")
	t.Setenv("P3_WEBRTC", "false")
	t.Setenv("P3_WEBRTC_BITRATE", "16000")
	t.Setenv("P3_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sink != SinkNull {
		t.Errorf("Sink = %q, want null", cfg.Sink)
	}
	if cfg.DeviceBuffer != 480 {
		t.Errorf("DeviceBuffer = %d, want 480", cfg.DeviceBuffer)
	}
	if !cfg.Loop {
		t.Error("Loop = false, want true")
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.WatchDir != "/srv/p3" {
		t.Errorf("WatchDir = %q, want /srv/p3", cfg.WatchDir)
	}
	if cfg.WebRTC {
		t.Error("WebRTC = true, want false")
	}
	if cfg.WebRTCBitrate != 16000 {
		t.Errorf("WebRTCBitrate = %d, want 16000", cfg.WebRTCBitrate)
	}
	if cfg.Level() != log.DebugLevel {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"P3_PORT", "not-a-number", "Port"},
		{"P3_PORT", "70000", "P3_PORT"},
		{"P3_SINK", "alsa", "P3_SINK"},
		{"P3_DEVICE_BUFFER", "0", "P3_DEVICE_BUFFER"},
		{"P3_LOG_LEVEL", "loud", "P3_LOG_LEVEL"},
		{"P3_LOOP", "maybe", "Loop"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load accepted %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestParseLeavesValidationToCaller(t *testing.T) {
	clearEnv(t)
	t.Setenv("P3_SINK", "alsa")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted sink alsa")
	}
	cfg.Sink = SinkNull
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after override: %v", err)
	}

	t.Setenv("P3_PORT", "not-a-number")
	if _, err := Parse(); err == nil {
		t.Error("Parse accepted P3_PORT=not-a-number")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/.env", []byte("P3_PORT=9090\nP3_SINK=oto\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("P3_SINK", "null") // environment wins over .env
	t.Chdir(dir)
	t.Cleanup(func() {
		os.Unsetenv("P3_PORT")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 from .env", cfg.Port)
	}
	if cfg.Sink != SinkNull {
		t.Errorf("Sink = %q, want null from environment", cfg.Sink)
	}
}
