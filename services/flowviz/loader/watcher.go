// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeOp classifies a watched file event.
type ChangeOp int

const (
	// OpCreate indicates a new file appeared.
	OpCreate ChangeOp = iota
	// OpWrite indicates file content changed.
	OpWrite
	// OpRemove indicates a file was deleted.
	OpRemove
	// OpRename indicates a file was moved.
	OpRename
)

// String returns a human-readable operation name.
func (op ChangeOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one observed mutation of a watched configuration file. Path
// is relative to the watch root with forward-slash separators, matching
// the keys a Load of the same root produces.
type Change struct {
	Path string
	Op   ChangeOp
	Time time.Time
}

// ChangeHandler receives a debounced, deduplicated batch of changes.
type ChangeHandler func(changes []Change)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// DebounceWindow batches rapid event bursts (editor saves, project
	// builds) into a single handler call. Default: 200ms.
	DebounceWindow time.Duration

	// Extensions are the watched file extensions. Default: [".xml"]
	Extensions []string

	// ExcludeDirs are directory names never watched.
	ExcludeDirs []string

	// BufferSize is the pending change buffer. Events beyond it are
	// dropped rather than blocking the event loop. Default: 1024.
	BufferSize int

	// Logger receives watch diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultWatcherOptions returns sensible defaults.
func DefaultWatcherOptions() WatcherOptions {
	base := DefaultOptions()
	return WatcherOptions{
		DebounceWindow: 200 * time.Millisecond,
		Extensions:     base.Extensions,
		ExcludeDirs:    base.ExcludeDirs,
		BufferSize:     1024,
		Logger:         slog.Default(),
	}
}

// Watcher reports configuration file changes under a project root.
//
// Changes are debounced and deduplicated before delivery, so one save
// that fires several filesystem events reaches the handler once.
//
// # Thread Safety
//
// Start and Stop are safe to call from any goroutine. Stop is
// idempotent. The handler runs on the watcher's own goroutine.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	handler ChangeHandler
	options WatcherOptions

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// NewWatcher creates a watcher for root. A nil opts uses defaults.
func NewWatcher(root string, handler ChangeHandler, opts *WatcherOptions) (*Watcher, error) {
	options := DefaultWatcherOptions()
	if opts != nil {
		if opts.DebounceWindow > 0 {
			options.DebounceWindow = opts.DebounceWindow
		}
		if len(opts.Extensions) > 0 {
			options.Extensions = opts.Extensions
		}
		if len(opts.ExcludeDirs) > 0 {
			options.ExcludeDirs = opts.ExcludeDirs
		}
		if opts.BufferSize > 0 {
			options.BufferSize = opts.BufferSize
		}
		if opts.Logger != nil {
			options.Logger = opts.Logger
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	return &Watcher{
		root:    root,
		fsw:     fsw,
		handler: handler,
		options: options,
		changes: make(chan Change, options.BufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching root and all non-excluded subdirectories.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started for %s", w.root)
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return fmt.Errorf("watching %s: %w", w.root, err)
	}

	go w.processEvents()
	go w.debounceLoop()

	w.options.Logger.Debug("file watcher started", slog.String("root", w.root))
	return nil
}

// Stop halts watching and flushes any pending batch.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// addRecursive registers dir and every non-excluded subdirectory.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && matchesExcluded(d.Name(), w.options.ExcludeDirs) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// processEvents converts filesystem events into pending changes.
func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.options.Logger.Warn("file watcher error", slog.String("error", err.Error()))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)

	// New directories need their own watches before any file events
	// inside them can arrive.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !matchesExcluded(base, w.options.ExcludeDirs) {
				_ = w.addRecursive(event.Name)
			}
			return
		}
	}

	if !matchesExtension(base, w.options.Extensions) {
		return
	}

	change := Change{
		Path: w.relPath(event.Name),
		Op:   convertOp(event.Op),
		Time: time.Now(),
	}

	select {
	case w.changes <- change:
	default:
		w.options.Logger.Warn("change buffer full, dropping event",
			slog.String("file", change.Path))
	}
}

// debounceLoop batches changes until the window goes quiet, then hands
// the deduplicated batch to the handler.
func (w *Watcher) debounceLoop() {
	var pending []Change
	timer := time.NewTimer(w.options.DebounceWindow)
	timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := dedupeChanges(pending)
		pending = nil
		if w.handler != nil {
			w.handler(batch)
		}
	}

	for {
		select {
		case change := <-w.changes:
			pending = append(pending, change)
			timer.Reset(w.options.DebounceWindow)
		case <-timer.C:
			flush()
		case <-w.done:
			timer.Stop()
			flush()
			return
		}
	}
}

// relPath converts an absolute event path to a root-relative
// forward-slash path.
func (w *Watcher) relPath(abs string) string {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// convertOp maps an fsnotify operation to a ChangeOp.
func convertOp(op fsnotify.Op) ChangeOp {
	switch {
	case op&fsnotify.Create != 0:
		return OpCreate
	case op&fsnotify.Write != 0:
		return OpWrite
	case op&fsnotify.Remove != 0:
		return OpRemove
	case op&fsnotify.Rename != 0:
		return OpRename
	default:
		return OpWrite
	}
}

// dedupeChanges keeps the newest change per path, preserving first-seen
// order.
func dedupeChanges(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	result := make([]Change, 0, len(changes))

	for _, change := range changes {
		if i, ok := seen[change.Path]; ok {
			if change.Time.After(result[i].Time) {
				result[i] = change
			}
			continue
		}
		seen[change.Path] = len(result)
		result = append(result, change)
	}

	return result
}
