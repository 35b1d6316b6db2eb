/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec is the serialized form of a filter. Kind selects which fields apply.
// A nil Bundles or Media flag means true.
type Spec struct {
	Kind          Kind     `json:"kind" yaml:"kind"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	CaseSensitive bool     `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	UseRegex      bool     `json:"use_regex,omitempty" yaml:"use_regex,omitempty"`
	Languages     []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	Bundles       *bool    `json:"filter_banks,omitempty" yaml:"filter_banks,omitempty"`
	Media         *bool    `json:"filter_media,omitempty" yaml:"filter_media,omitempty"`
}

// Document is the on-disk layout of a filter chain.
type Document struct {
	Filters []Spec `json:"filters" yaml:"filters"`
}

// Decoder builds a filter from its spec.
type Decoder func(Spec) (Filter, error)

var decoders = map[Kind]Decoder{
	KindName: func(s Spec) (Filter, error) {
		f := NewNameFilter()
		if s.Pattern != "" {
			f.Pattern = s.Pattern
		}
		f.CaseSensitive = s.CaseSensitive
		f.UseRegex = s.UseRegex
		f.Bundles = flag(s.Bundles)
		f.Media = flag(s.Media)
		return f, nil
	},
	KindLanguage: func(s Spec) (Filter, error) {
		f := NewLanguageFilter(append([]string(nil), s.Languages...)...)
		f.Bundles = flag(s.Bundles)
		f.Media = flag(s.Media)
		return f, nil
	},
}

// RegisterKind adds a decoder for a new filter kind. It is not safe to call
// concurrently with Build.
func RegisterKind(kind Kind, dec Decoder) {
	decoders[kind] = dec
}

func flag(b *bool) bool {
	return b == nil || *b
}

// Build returns the filter described by s.
func (s Spec) Build() (Filter, error) {
	dec, ok := decoders[s.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown filter kind %q", s.Kind)
	}
	return dec(s)
}

// Specs serializes every filter in the chain.
func (c Chain) Specs() []Spec {
	out := make([]Spec, 0, len(c))
	for _, f := range c {
		out = append(out, f.Spec())
	}
	return out
}

// FromSpecs builds a chain and checks that every filter configures.
func FromSpecs(specs []Spec) (Chain, error) {
	chain := make(Chain, 0, len(specs))
	for i, s := range specs {
		f, err := s.Build()
		if err != nil {
			return nil, &ConfigError{Index: i, Kind: s.Kind, Err: err}
		}
		if _, err := f.Configure(); err != nil {
			return nil, &ConfigError{Index: i, Kind: s.Kind, Err: err}
		}
		chain = append(chain, f)
	}
	return chain, nil
}

// ParseJSON reads a chain from a JSON document. A bare array of specs is
// accepted as well as {"filters": [...]}.
func ParseJSON(data []byte) (Chain, error) {
	trimmed := bytes.TrimSpace(data)
	var doc Document
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Filters); err != nil {
			return nil, fmt.Errorf("decode filters: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	return FromSpecs(doc.Filters)
}

// ParseYAML reads a chain from a YAML document with a top-level filters list.
func ParseYAML(data []byte) (Chain, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	return FromSpecs(doc.Filters)
}

// LoadFile reads a chain from path, choosing the codec by extension.
func LoadFile(path string) (Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filters: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported filter file %q: want .json, .yaml or .yml", path)
	}
}

// MarshalYAML renders the chain as a filter document.
func (c Chain) MarshalYAML() (interface{}, error) {
	return Document{Filters: c.Specs()}, nil
}
