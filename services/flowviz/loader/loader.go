// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader reads Mule configuration files from disk and watches
// them for changes.
//
// This package owns all project I/O for the flow pipeline: it walks a
// project root, filters to configuration files, skips build and metadata
// directories, and produces the path-to-content map the graph builder
// consumes. Paths in that map are always relative to the root with
// forward-slash separators so graphs are comparable across platforms.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Default loader configuration values.
const (
	// DefaultMaxFileSize is the per-file size cap (10 MiB). Larger files
	// are skipped, not failed.
	DefaultMaxFileSize = 10 << 20

	// DefaultMaxFiles caps how many files one load may collect.
	DefaultMaxFiles = 5000

	// DefaultConcurrency bounds parallel file reads.
	DefaultConcurrency = 8
)

// ErrTooManyFiles is returned when a project exceeds the file limit.
var ErrTooManyFiles = errors.New("project exceeds file limit")

// Options configures project loading.
type Options struct {
	// Extensions are the file extensions loaded, lowercase with dot.
	// Default: [".xml"]
	Extensions []string

	// ExcludeDirs are directory names skipped during the walk, matched
	// against the directory's base name (glob patterns allowed).
	// Default: target, .git, .mule, .settings, .idea, node_modules
	ExcludeDirs []string

	// MaxFileSize is the per-file size cap in bytes.
	MaxFileSize int64

	// MaxFiles caps how many files are collected before the load fails
	// with ErrTooManyFiles.
	MaxFiles int

	// Concurrency bounds parallel file reads.
	Concurrency int

	// Logger receives skip diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Extensions:  []string{".xml"},
		ExcludeDirs: []string{"target", ".git", ".mule", ".settings", ".idea", "node_modules"},
		MaxFileSize: DefaultMaxFileSize,
		MaxFiles:    DefaultMaxFiles,
		Concurrency: DefaultConcurrency,
		Logger:      slog.Default(),
	}
}

// Option is a functional option for configuring the Loader.
type Option func(*Options)

// WithExtensions sets the loaded file extensions.
func WithExtensions(exts ...string) Option {
	return func(o *Options) {
		o.Extensions = exts
	}
}

// WithExcludeDirs sets the skipped directory names.
func WithExcludeDirs(dirs ...string) Option {
	return func(o *Options) {
		o.ExcludeDirs = dirs
	}
}

// WithMaxFileSize sets the per-file size cap in bytes.
func WithMaxFileSize(n int64) Option {
	return func(o *Options) {
		o.MaxFileSize = n
	}
}

// WithMaxFiles sets the file count limit.
func WithMaxFiles(n int) Option {
	return func(o *Options) {
		o.MaxFiles = n
	}
}

// WithConcurrency sets the parallel read limit.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Loader reads project configuration files.
//
// # Thread Safety
//
// Loader is stateless and safe for concurrent use; every Load call
// operates on its own result.
type Loader struct {
	options Options
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}
	if options.MaxFiles <= 0 {
		options.MaxFiles = DefaultMaxFiles
	}
	if options.MaxFileSize <= 0 {
		options.MaxFileSize = DefaultMaxFileSize
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Loader{options: options}
}

// LoadResult holds one load pass's files and diagnostics.
type LoadResult struct {
	// Files maps forward-slash relative path to raw file content.
	Files map[string]string

	// Skipped lists files passed over for exceeding the size cap.
	Skipped []string

	// Errors lists per-file read failures as "path: error". Read
	// failures never fail the load.
	Errors []string

	// BytesRead is the total content size loaded.
	BytesRead int64
}

// candidate is one file selected by the walk, pending read.
type candidate struct {
	abs string
	rel string
}

// Load walks root and reads every matching file.
//
// The walk collects candidate paths first, then reads them with bounded
// concurrency. Individual read failures land in LoadResult.Errors; a
// non-nil error is returned only for an unreadable root, cancellation,
// or blowing the file limit.
func (l *Loader) Load(ctx context.Context, root string) (*LoadResult, error) {
	candidates, err := l.collect(ctx, root)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		Files: make(map[string]string, len(candidates)),
	}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.options.Concurrency)

	for _, c := range candidates {
		c := c
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			info, err := os.Stat(c.abs)
			if err == nil && info.Size() > l.options.MaxFileSize {
				mu.Lock()
				result.Skipped = append(result.Skipped, c.rel)
				mu.Unlock()
				l.options.Logger.Warn("skipping oversized file",
					slog.String("file", c.rel),
					slog.Int64("size_bytes", info.Size()),
				)
				return nil
			}

			data, err := os.ReadFile(c.abs)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", c.rel, err))
				mu.Unlock()
				return nil
			}

			mu.Lock()
			result.Files[c.rel] = string(data)
			result.BytesRead += int64(len(data))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	sort.Strings(result.Skipped)
	sort.Strings(result.Errors)
	return result, nil
}

// collect walks root and returns the files worth reading.
func (l *Loader) collect(ctx context.Context, root string) ([]candidate, error) {
	var candidates []candidate

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, but an unreadable root is
			// a real failure.
			if path == root {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != root && l.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !l.wantedFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if len(candidates) >= l.options.MaxFiles {
			return ErrTooManyFiles
		}
		candidates = append(candidates, candidate{abs: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	return candidates, nil
}

// wantedFile reports whether the base name carries a loaded extension.
func (l *Loader) wantedFile(name string) bool {
	return matchesExtension(name, l.options.Extensions)
}

// excludedDir reports whether a directory base name is skipped.
func (l *Loader) excludedDir(name string) bool {
	return matchesExcluded(name, l.options.ExcludeDirs)
}

func matchesExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

func matchesExcluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if name == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
