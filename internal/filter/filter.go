/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package filter narrows a catalog to a view through an ordered chain of
// predicates. Every filter in a chain must match (logical AND).
package filter

import (
	"fmt"

	"github.com/friendsincode/bankscope/internal/models"
)

// Kind tags a filter variant. Front ends switch on it to pick an editor.
type Kind string

const (
	KindName     Kind = "name"
	KindLanguage Kind = "language"
)

// Scope selects which records a filter constrains.
type Scope uint8

const (
	ScopeBundles Scope = 1 << iota
	ScopeMedia

	ScopeAll = ScopeBundles | ScopeMedia
)

func (s Scope) Bundles() bool { return s&ScopeBundles != 0 }
func (s Scope) Media() bool   { return s&ScopeMedia != 0 }

// MediaOnly reports whether the filter constrains media but not bundles.
func (s Scope) MediaOnly() bool { return s.Media() && !s.Bundles() }

func scopeOf(bundles, media bool) Scope {
	var s Scope
	if bundles {
		s |= ScopeBundles
	}
	if media {
		s |= ScopeMedia
	}
	return s
}

// Filter is an editable predicate configuration.
//
// Configure validates the current parameters and returns a matcher bound to
// them; later edits to the filter do not affect a matcher already returned.
type Filter interface {
	fmt.Stringer
	Kind() Kind
	Scope() Scope
	Configure() (Matcher, error)
	Spec() Spec
}

// Matcher is a configured filter, ready to test records.
type Matcher interface {
	MatchBundle(b *models.Bundle) bool
	MatchMedia(m *models.MediaEntry) bool
}

// ConfigError reports a filter whose parameters cannot be used.
type ConfigError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("filter %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Chain is an ordered, AND-combined list of filters.
type Chain []Filter

// View is the subset of a catalog that satisfies a chain.
type View struct {
	ScanID     string          `json:"scan_id" yaml:"scan_id"`
	Bundles    []models.Bundle `json:"banks" yaml:"banks"`
	TotalSize  int64           `json:"size" yaml:"size"`
	MediaCount int             `json:"media_count" yaml:"media_count"`
}

// Record returns the view in the same generic shape as models.Catalog.Record.
func (v *View) Record() map[string]any {
	c := models.Catalog{Bundles: v.Bundles, TotalSize: v.TotalSize}
	return c.Record()
}

type stage struct {
	matcher Matcher
	scope   Scope
}

// Apply returns the view of catalog selected by chain. The catalog is not
// modified; bundles whose media list is narrowed are copied.
//
// A bundle is kept when every bundle-scoped filter matches it. Its media are
// kept when every media-scoped filter matches them. When the chain holds a
// media-only filter, a bundle left without media is dropped.
func Apply(catalog *models.Catalog, chain Chain) (*View, error) {
	view := &View{Bundles: []models.Bundle{}}
	if catalog == nil {
		return view, nil
	}
	view.ScanID = catalog.ScanID

	var bundleStages, mediaStages []stage
	mediaOnly := false
	for i, f := range chain {
		m, err := f.Configure()
		if err != nil {
			return nil, &ConfigError{Index: i, Kind: f.Kind(), Err: err}
		}
		st := stage{matcher: m, scope: f.Scope()}
		if st.scope.Bundles() {
			bundleStages = append(bundleStages, st)
		}
		if st.scope.Media() {
			mediaStages = append(mediaStages, st)
		}
		if st.scope.MediaOnly() {
			mediaOnly = true
		}
	}

	for i := range catalog.Bundles {
		b := &catalog.Bundles[i]
		if !matchAllBundle(bundleStages, b) {
			continue
		}
		if len(mediaStages) == 0 {
			view.Bundles = append(view.Bundles, *b)
			continue
		}

		kept := make([]models.MediaEntry, 0, len(b.Media))
		for j := range b.Media {
			if matchAllMedia(mediaStages, &b.Media[j]) {
				kept = append(kept, b.Media[j])
			}
		}
		if mediaOnly && len(kept) == 0 {
			continue
		}
		narrowed := *b
		narrowed.Media = kept
		view.Bundles = append(view.Bundles, narrowed)
	}

	view.TotalSize = models.TotalSize(view.Bundles)
	for i := range view.Bundles {
		view.MediaCount += len(view.Bundles[i].Media)
	}
	return view, nil
}

func matchAllBundle(stages []stage, b *models.Bundle) bool {
	for _, st := range stages {
		if !st.matcher.MatchBundle(b) {
			return false
		}
	}
	return true
}

func matchAllMedia(stages []stage, m *models.MediaEntry) bool {
	for _, st := range stages {
		if !st.matcher.MatchMedia(m) {
			return false
		}
	}
	return true
}
