/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package discovery resolves a glob pattern to candidate bank files.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PatternError reports a pattern that cannot be used for discovery.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Options tunes discovery.
type Options struct {
	// SidecarExt files are descriptors, never candidates.
	SidecarExt string
}

// Discover returns the regular files matching pattern, as absolute cleaned
// paths, deduplicated and sorted.
//
// "**" matches any number of directories. An empty pattern or one matching
// nothing yields an empty result. Entries that cannot be stat'ed, such as
// dangling symlinks, are left out.
func Discover(pattern string, opts Options) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return []string{}, nil
	}
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, &PatternError{Pattern: pattern, Err: doublestar.ErrBadPattern}
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	seen := make(map[string]struct{}, len(matches))
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if opts.SidecarExt != "" && strings.EqualFold(filepath.Ext(m), opts.SidecarExt) {
			continue
		}
		if fi, err := os.Stat(m); err != nil || fi.IsDir() {
			continue
		}
		abs, err := filepath.Abs(m)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		paths = append(paths, abs)
	}

	sort.Strings(paths)
	return paths, nil
}
