/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"

	"github.com/friendsincode/bankscope/internal/models"
)

// NameFilter matches record names against a glob or a regular expression.
//
// A name matches when either the full name or the name without its extension
// matches, so "boss_*" and "boss_intro" both select "boss_intro.bnk".
type NameFilter struct {
	Pattern       string
	CaseSensitive bool
	UseRegex      bool
	Bundles       bool
	Media         bool
}

// NewNameFilter returns a filter that matches every name of bundles and media.
func NewNameFilter() *NameFilter {
	return &NameFilter{
		Pattern: "*",
		Bundles: true,
		Media:   true,
	}
}

func (f *NameFilter) Kind() Kind   { return KindName }
func (f *NameFilter) Scope() Scope { return scopeOf(f.Bundles, f.Media) }

func (f *NameFilter) String() string {
	mode := "glob"
	if f.UseRegex {
		mode = "regex"
	}
	cs := ""
	if f.CaseSensitive {
		cs = ", case-sensitive"
	}
	return fmt.Sprintf("name %s %q%s [%s]", mode, f.Pattern, cs, scopeLabel(f.Scope()))
}

// Configure compiles the pattern. An empty pattern matches everything.
func (f *NameFilter) Configure() (Matcher, error) {
	pattern := f.Pattern
	if pattern == "" {
		return matchEverything{}, nil
	}

	if f.UseRegex {
		if !f.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", f.Pattern, err)
		}
		return nameMatcher{match: re.MatchString}, nil
	}

	// A Caser is stateful, so each matcher gets its own.
	var fold cases.Caser
	if !f.CaseSensitive {
		fold = cases.Fold()
		pattern = fold.String(pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob %q: %w", f.Pattern, doublestar.ErrBadPattern)
	}
	caseSensitive := f.CaseSensitive
	return nameMatcher{match: func(name string) bool {
		if !caseSensitive {
			name = fold.String(name)
		}
		ok, _ := doublestar.Match(pattern, name)
		return ok
	}}, nil
}

func (f *NameFilter) Spec() Spec {
	bundles, media := f.Bundles, f.Media
	return Spec{
		Kind:          KindName,
		Pattern:       f.Pattern,
		CaseSensitive: f.CaseSensitive,
		UseRegex:      f.UseRegex,
		Bundles:       &bundles,
		Media:         &media,
	}
}

type nameMatcher struct {
	match func(string) bool
}

func (m nameMatcher) matchName(name string) bool {
	if m.match(name) {
		return true
	}
	if ext := filepath.Ext(name); ext != "" && ext != name {
		return m.match(strings.TrimSuffix(name, ext))
	}
	return false
}

func (m nameMatcher) MatchBundle(b *models.Bundle) bool     { return m.matchName(b.Name) }
func (m nameMatcher) MatchMedia(e *models.MediaEntry) bool { return m.matchName(e.Name) }

type matchEverything struct{}

func (matchEverything) MatchBundle(*models.Bundle) bool     { return true }
func (matchEverything) MatchMedia(*models.MediaEntry) bool { return true }

func scopeLabel(s Scope) string {
	switch {
	case s.Bundles() && s.Media():
		return "banks+media"
	case s.Bundles():
		return "banks"
	case s.Media():
		return "media"
	default:
		return "none"
	}
}
