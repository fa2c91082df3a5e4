package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTone(t *testing.T, path string, samples int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data := make([]int, samples)
	for i := range data {
		data[i] = (i%40 - 20) * 500
	}
	enc := wav.NewEncoder(f, audio.SampleRate, 16, 1, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: audio.SampleRate},
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEncodeInfoExportPlay(t *testing.T) {
	t.Setenv("P3_SINK", "null")
	dir := t.TempDir()
	in := filepath.Join(dir, "tone.wav")
	track := filepath.Join(dir, "tone.p3")
	back := filepath.Join(dir, "back.wav")
	writeTone(t, in, audio.FrameSamples*3)

	out, err := run(t, "encode", in, track)
	if err != nil {
		t.Fatalf("encode: %v\n%s", err, out)
	}

	out, err = run(t, "info", "--decode", track)
	if err != nil {
		t.Fatalf("info: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Frames:    3") || !strings.Contains(out, "Decode:    ok") {
		t.Errorf("info output:\n%s", out)
	}

	out, err = run(t, "export", track, back)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	f, err := os.Open(back)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pcm, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("read exported wav: %v", err)
	}
	if n := len(pcm.Data); n != audio.FrameSamples*3 {
		t.Errorf("exported %d samples, want %d", n, audio.FrameSamples*3)
	}

	out, err = run(t, track)
	if err != nil {
		t.Fatalf("play: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Now playing: "+track) || !strings.Contains(out, "Playback completed") {
		t.Errorf("play output:\n%s", out)
	}
}

func TestPlayMissingFile(t *testing.T) {
	t.Setenv("P3_SINK", "null")
	missing := filepath.Join(t.TempDir(), "missing.p3")

	out, err := run(t, missing)
	if err == nil {
		t.Fatal("playing a missing file succeeded")
	}
	if strings.Contains(out, "Now playing") {
		t.Errorf("announced a file that could not be opened:\n%s", out)
	}
}

func TestSinkFlagOverridesBadEnv(t *testing.T) {
	t.Setenv("P3_SINK", "bogus")
	t.Cleanup(func() { rootCmd.PersistentFlags().Set("sink", config.SinkNull) })
	dir := t.TempDir()
	in := filepath.Join(dir, "tone.wav")
	track := filepath.Join(dir, "tone.p3")
	writeTone(t, in, audio.FrameSamples)

	if out, err := run(t, "--sink", "null", "encode", in, track); err != nil {
		t.Fatalf("encode: %v\n%s", err, out)
	}
	out, err := run(t, "--sink", "null", track)
	if err != nil {
		t.Fatalf("play with --sink null: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Playback completed") {
		t.Errorf("play output:\n%s", out)
	}

	if _, err := run(t, "--sink", "bogus", track); err == nil || !strings.Contains(err.Error(), "P3_SINK") {
		t.Errorf("--sink bogus: err = %v, want unknown sink", err)
	}
}
