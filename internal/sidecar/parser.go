/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sidecar decodes the JSON descriptors written next to sound bank files.
package sidecar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/bankscope/internal/models"
)

// DefaultExt is the extension of a bank's sidecar descriptor.
const DefaultExt = ".json"

// Sidecar holds the fields a descriptor contributes to a bundle.
type Sidecar struct {
	Platform string
	Language string
	ID       string
	GUID     string
	Category string
	Media    []models.MediaEntry
}

// Apply copies the sidecar fields onto b. Filesystem fields are left alone.
func (s *Sidecar) Apply(b *models.Bundle) {
	b.Language = s.Language
	b.ID = s.ID
	b.GUID = s.GUID
	b.Category = s.Category
	b.Media = s.Media
}

// Parser reads sidecars for bundle paths.
type Parser struct {
	ext    string
	logger zerolog.Logger
}

// NewParser creates a parser looking for sidecars with the given extension.
func NewParser(ext string, logger zerolog.Logger) *Parser {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Parser{
		ext:    ext,
		logger: logger.With().Str("component", "sidecar").Logger(),
	}
}

// Ext returns the sidecar extension, including the leading dot.
func (p *Parser) Ext() string {
	return p.ext
}

// SidecarPath returns the descriptor path for a bundle path.
func SidecarPath(bundlePath, ext string) string {
	return strings.TrimSuffix(bundlePath, filepath.Ext(bundlePath)) + ext
}

// Parse locates and decodes the sidecar of bundlePath.
//
// A missing sidecar yields (nil, nil). A sidecar that cannot be read or is not
// a well-formed document yields a *ParseError. Missing keys decode as empty
// values and malformed media records are skipped with a warning.
func (p *Parser) Parse(bundlePath string) (*Sidecar, error) {
	path := SidecarPath(bundlePath, p.ext)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	records, err := doc.bankRecords()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	sc := &Sidecar{
		Platform: doc.Platform.String(),
		Media:    []models.MediaEntry{},
	}
	if doc.Platform.dropped {
		p.logger.Debug().Str("sidecar", path).Str("key", "Platform").Msg("ignoring value of unexpected type")
	}
	if len(records) == 0 {
		return sc, nil
	}

	rec, err := decodeBank(records[0])
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("SoundBanks[0]: %w", err)}
	}
	for _, key := range rec.droppedKeys() {
		p.logger.Debug().Str("sidecar", path).Str("key", key).Msg("ignoring value of unexpected type")
	}
	sc.Language = rec.Language.String()
	sc.ID = rec.ID.String()
	sc.GUID = rec.GUID.String()
	sc.Category = rec.Type.String()

	media, skipped := rec.mediaEntries(path)
	for _, e := range skipped {
		p.logger.Warn().Str("sidecar", path).Int("index", e.Index).Str("field", e.Field).Msg("skipping malformed media entry")
	}
	sc.Media = media

	return sc, nil
}
