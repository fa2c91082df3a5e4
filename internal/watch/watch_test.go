package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsStream(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"song.p3", true},
		{"SONG.P3", true},
		{"song.p3.tmp", false},
		{"song.wav", false},
		{"p3", false},
	}
	for _, tt := range tests {
		if got := IsStream(tt.name); got != tt.want {
			t.Errorf("IsStream(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScanSorted(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.p3"))
	touch(t, filepath.Join(dir, "a.p3"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "sub.p3"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{filepath.Join(dir, "a.p3"), filepath.Join(dir, "b.p3")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Scan = %v, want %v", got, want)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Scan of missing dir returned nil error")
	}
}

func TestDirAddsExistingThenNew(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.p3"))
	touch(t, filepath.Join(dir, "a.p3"))

	added := make(chan string, 10)
	add := func(path string) error {
		added <- path
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Dir(ctx, dir, add, log.New(io.Discard)) }()

	next := func() string {
		t.Helper()
		select {
		case p := <-added:
			return p
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for added track")
			return ""
		}
	}

	if got := next(); got != filepath.Join(dir, "a.p3") {
		t.Errorf("first = %s, want a.p3", got)
	}
	if got := next(); got != filepath.Join(dir, "b.p3") {
		t.Errorf("second = %s, want b.p3", got)
	}

	touch(t, filepath.Join(dir, "ignored.txt"))
	touch(t, filepath.Join(dir, "c.p3"))
	if got := next(); got != filepath.Join(dir, "c.p3") {
		t.Errorf("third = %s, want c.p3", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Dir returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dir did not return after cancel")
	}
	if len(added) != 0 {
		t.Errorf("unexpected extra tracks: %d", len(added))
	}
}

func TestDirKeepsGoingWhenAddFails(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.p3"))
	touch(t, filepath.Join(dir, "b.p3"))

	calls := make(chan string, 10)
	add := func(path string) error {
		calls <- path
		return errors.New("rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Dir(ctx, dir, add, log.New(io.Discard))

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("add called %d times, want 2", i)
		}
	}
}

func TestDirMissing(t *testing.T) {
	err := Dir(context.Background(), filepath.Join(t.TempDir(), "nope"), func(string) error { return nil }, nil)
	if err == nil {
		t.Error("Dir on missing directory returned nil error")
	}
}
