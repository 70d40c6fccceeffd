// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher restarts the backend when its executable or entry script
// changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wingedpig/liteclaw/internal/events"
)

// DefaultCooldown is the minimum time between two change notifications.
const DefaultCooldown = 5 * time.Second

// BinaryWatcher publishes binary.changed when a watched file is written or
// replaced. Parent directories are watched rather than the files themselves,
// so a build tool that renames a new file into place is still seen.
type BinaryWatcher struct {
	mu        sync.RWMutex
	bus       events.EventBus
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]bool // watched file paths
	dirs      map[string]int  // directory -> number of watched files in it
	cooldown  time.Duration
	lastFired time.Time
	closed    bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewBinaryWatcher creates a watcher. bus may be nil, in which case changes
// are only logged.
func NewBinaryWatcher(bus events.EventBus, debounce time.Duration) (*BinaryWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &BinaryWatcher{
		bus:       bus,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(debounce),
		files:     make(map[string]bool),
		dirs:      make(map[string]int),
		cooldown:  DefaultCooldown,
		closeCh:   make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// SetCooldown changes the minimum time between notifications.
func (w *BinaryWatcher) SetCooldown(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cooldown = d
}

// Watch adds files to the watch set. Files whose directory cannot be watched
// are skipped with a warning.
func (w *BinaryWatcher) Watch(paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if w.files[abs] {
			continue
		}

		dir := filepath.Dir(abs)
		if w.dirs[dir] == 0 {
			if err := w.watcher.Add(dir); err != nil {
				log.Printf("Warning: cannot watch %s: %v", abs, err)
				continue
			}
		}
		w.dirs[dir]++
		w.files[abs] = true
	}
	return nil
}

// Watching returns the watched file paths.
func (w *BinaryWatcher) Watching() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]string, 0, len(w.files))
	for path := range w.files {
		result = append(result, path)
	}
	return result
}

// Close stops the watcher and releases resources.
func (w *BinaryWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *BinaryWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher: %v", err)
		}
	}
}

func (w *BinaryWatcher) handleEvent(event fsnotify.Event) {
	// Chmod fires when the executable is run; reacting to it would loop.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.RLock()
	watched := w.files[event.Name]
	w.mu.RUnlock()

	if watched {
		path := event.Name
		w.debouncer.Trigger(func() { w.fire(path) })
	}
}

func (w *BinaryWatcher) fire(path string) {
	w.mu.Lock()
	if !w.lastFired.IsZero() && time.Since(w.lastFired) < w.cooldown {
		w.mu.Unlock()
		return
	}
	w.lastFired = time.Now()
	w.mu.Unlock()

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	log.Printf("Backend file changed: %s", path)
	if w.bus != nil {
		w.bus.Publish(context.Background(), events.Event{
			Type: events.EventBinaryChanged,
			Payload: map[string]interface{}{
				"path":     path,
				"mod_time": modTime.Format(time.RFC3339),
			},
		})
	}
}

// Targets returns the files whose change should restart the backend: the
// resolved executable plus any arguments naming existing regular files,
// relative paths taken from workDir.
func Targets(command []string, workDir string) []string {
	if len(command) == 0 {
		return nil
	}

	var targets []string
	if !strings.ContainsRune(command[0], filepath.Separator) {
		if exe, err := exec.LookPath(command[0]); err == nil {
			targets = append(targets, exe)
		}
	} else if isFile(resolve(command[0], workDir)) {
		targets = append(targets, resolve(command[0], workDir))
	}
	for _, arg := range command[1:] {
		if path := resolve(arg, workDir); isFile(path) {
			targets = append(targets, path)
		}
	}
	return targets
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func resolve(path, workDir string) string {
	if filepath.IsAbs(path) || workDir == "" {
		return path
	}
	return filepath.Join(workDir, path)
}
