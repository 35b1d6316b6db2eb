/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package filter

import (
	"fmt"
	"strings"

	"github.com/friendsincode/bankscope/internal/models"
)

// LanguageFilter keeps records whose language tag is one of Languages.
// Tags compare exactly; "" selects shared, unlocalized records.
//
// An empty Languages set matches every record, so a freshly added filter
// changes nothing until a language is picked.
type LanguageFilter struct {
	Languages []string
	Bundles   bool
	Media     bool
}

// NewLanguageFilter returns a filter on bundles and media accepting languages.
func NewLanguageFilter(languages ...string) *LanguageFilter {
	return &LanguageFilter{
		Languages: languages,
		Bundles:   true,
		Media:     true,
	}
}

func (f *LanguageFilter) Kind() Kind   { return KindLanguage }
func (f *LanguageFilter) Scope() Scope { return scopeOf(f.Bundles, f.Media) }

func (f *LanguageFilter) String() string {
	langs := make([]string, len(f.Languages))
	for i, l := range f.Languages {
		if l == "" {
			l = "(shared)"
		}
		langs[i] = l
	}
	return fmt.Sprintf("language in [%s] [%s]", strings.Join(langs, ", "), scopeLabel(f.Scope()))
}

// Toggle adds lang to the accepted set, or removes it when already present.
// The set is rebuilt so a slice handed to NewLanguageFilter is left alone.
func (f *LanguageFilter) Toggle(lang string) {
	langs := make([]string, 0, len(f.Languages)+1)
	found := false
	for _, l := range f.Languages {
		if l == lang {
			found = true
			continue
		}
		langs = append(langs, l)
	}
	if !found {
		langs = append(langs, lang)
	}
	f.Languages = langs
}

func (f *LanguageFilter) Configure() (Matcher, error) {
	if len(f.Languages) == 0 {
		return matchEverything{}, nil
	}
	set := make(map[string]struct{}, len(f.Languages))
	for _, l := range f.Languages {
		set[l] = struct{}{}
	}
	return languageMatcher(set), nil
}

func (f *LanguageFilter) Spec() Spec {
	bundles, media := f.Bundles, f.Media
	langs := append([]string(nil), f.Languages...)
	return Spec{
		Kind:      KindLanguage,
		Languages: langs,
		Bundles:   &bundles,
		Media:     &media,
	}
}

type languageMatcher map[string]struct{}

func (m languageMatcher) MatchBundle(b *models.Bundle) bool {
	_, ok := m[b.Language]
	return ok
}

func (m languageMatcher) MatchMedia(e *models.MediaEntry) bool {
	_, ok := m[e.Language]
	return ok
}
