package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Output sink names accepted in P3_SINK.
const (
	SinkPortAudio = "portaudio"
	SinkOto       = "oto"
	SinkNull      = "null"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Audio output
	Sink         string `env:"P3_SINK" envDefault:"portaudio"`
	DeviceBuffer int    `env:"P3_DEVICE_BUFFER" envDefault:"960"` // frames per device buffer

	// Playback
	Loop bool `env:"P3_LOOP" envDefault:"false"`

	// Server
	Port          int    `env:"P3_PORT" envDefault:"8080"`
	WatchDir      string `env:"P3_WATCH_DIR"`
	WebRTC        bool   `env:"P3_WEBRTC" envDefault:"true"`
	WebRTCBitrate int    `env:"P3_WEBRTC_BITRATE" envDefault:"24000"`

	LogLevel string `env:"P3_LOG_LEVEL" envDefault:"info"`
}

// Load is Parse followed by Validate.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads .env from the working directory, if present, and then the
// environment. Variables already set in the environment win over .env.
// Only syntax is checked; callers that override fields call Validate after.
func Parse() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	switch c.Sink {
	case SinkPortAudio, SinkOto, SinkNull:
	default:
		return fmt.Errorf("P3_SINK: unknown sink %q (want portaudio, oto or null)", c.Sink)
	}
	if c.DeviceBuffer <= 0 {
		return fmt.Errorf("P3_DEVICE_BUFFER must be positive, got %d", c.DeviceBuffer)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("P3_PORT out of range: %d", c.Port)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("P3_LOG_LEVEL: %w", err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
