/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/friendsincode/bankscope/internal/models"
)

// InfoFileName is the name of the project-wide descriptor the build tool writes.
const InfoFileName = "SoundbanksInfo.json"

// Info is a decoded project-wide descriptor listing every bank of a platform.
type Info struct {
	Path     string     `json:"path" yaml:"path"`
	Platform string     `json:"platform" yaml:"platform"`
	Banks    []BankInfo `json:"banks" yaml:"banks"`
	// Skipped lists media records left out because they were malformed.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// BankInfo is one bank record of a project-wide descriptor.
type BankInfo struct {
	ID        string              `json:"id" yaml:"id"`
	Type      string              `json:"type" yaml:"type"`
	GUID      string              `json:"guid" yaml:"guid"`
	Language  string              `json:"language" yaml:"language"`
	ShortName string              `json:"short_name" yaml:"short_name"`
	Path      string              `json:"path" yaml:"path"`
	Media     []models.MediaEntry `json:"media" yaml:"media"`
}

// IsInfoFile reports whether path is a regular file named like a project descriptor.
func IsInfoFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return strings.Contains(filepath.Base(path), InfoFileName)
}

// LoadInfo decodes a project-wide descriptor. Decoding follows the same rules
// as Parse: missing keys are empty and malformed media records are skipped.
func LoadInfo(path string) (*Info, error) {
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

	info := &Info{
		Path:     path,
		Platform: doc.Platform.String(),
		Banks:    make([]BankInfo, 0, len(records)),
	}
	for i, raw := range records {
		rec, err := decodeBank(raw)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("SoundBanks[%d]: %w", i, err)}
		}
		media, skipped := rec.mediaEntries(path)
		for _, e := range skipped {
			info.Skipped = append(info.Skipped, fmt.Sprintf("bank %d: %s", i, e.Error()))
		}
		info.Banks = append(info.Banks, BankInfo{
			ID:        rec.ID.String(),
			Type:      rec.Type.String(),
			GUID:      rec.GUID.String(),
			Language:  rec.Language.String(),
			ShortName: rec.ShortName.String(),
			Path:      rec.Path.String(),
			Media:     media,
		})
	}
	return info, nil
}

// Languages returns the distinct bank languages of the descriptor in first-seen order.
func (i *Info) Languages() []string {
	seen := make(map[string]bool)
	var langs []string
	for _, b := range i.Banks {
		if !seen[b.Language] {
			seen[b.Language] = true
			langs = append(langs, b.Language)
		}
	}
	return langs
}
