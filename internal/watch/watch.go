// Package watch feeds P3 files from a directory into the playlist.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Ext is the file extension that marks a P3 stream.
const Ext = ".p3"

// AddFunc receives the path of each discovered stream.
type AddFunc func(path string) error

// Dir calls add for every P3 file already in dir, in name order, then for
// every P3 file created in dir until ctx ends. Each path is added once.
func Dir(ctx context.Context, dir string, add AddFunc, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch before scanning so a file created in between is not missed.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	offer := func(path string) {
		if seen[path] || !IsStream(path) {
			return
		}
		seen[path] = true
		if err := add(path); err != nil {
			logger.Warn("could not add track", "path", path, "error", err)
			return
		}
		logger.Info("track added", "path", path)
	}

	existing, err := Scan(dir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		offer(path)
	}
	logger.Info("watching dir", "dir", dir, "tracks", len(existing))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			offer(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

// Scan lists the P3 files in dir sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsStream(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// IsStream reports whether name has the P3 extension, in any case.
func IsStream(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}
