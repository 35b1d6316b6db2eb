/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package models holds the plain records produced by a bank scan.
package models

import (
	"sort"
	"time"
)

// CategoryMedia is the category assigned to every media entry read from a sidecar.
const CategoryMedia = "Media"

// MediaEntry is one asset packed inside a bundle, as listed by its sidecar.
type MediaEntry struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Language string `json:"language" yaml:"language"`
	ID       string `json:"id" yaml:"id"`
	Category string `json:"type" yaml:"type"`
	// Size is zero for entries read from a sidecar; only the bundle size is authoritative.
	Size int64 `json:"size" yaml:"size"`
}

// Bundle is one bank file on disk plus whatever its sidecar describes.
type Bundle struct {
	Name     string       `json:"name" yaml:"name"`
	Path     string       `json:"path" yaml:"path"`
	Size     int64        `json:"size" yaml:"size"`
	Language string       `json:"language" yaml:"language"`
	ID       string       `json:"id" yaml:"id"`
	GUID     string       `json:"guid,omitempty" yaml:"guid,omitempty"`
	Category string       `json:"type" yaml:"type"`
	Media    []MediaEntry `json:"wem_list" yaml:"wem_list"`
}

// Catalog is the result of one scan. It is not modified after construction.
type Catalog struct {
	ScanID    string    `json:"scan_id" yaml:"scan_id"`
	Pattern   string    `json:"pattern" yaml:"pattern"`
	ScannedAt time.Time `json:"scanned_at" yaml:"scanned_at"`
	Platform  string    `json:"platform,omitempty" yaml:"platform,omitempty"`
	Bundles   []Bundle  `json:"banks" yaml:"banks"`
	TotalSize int64     `json:"size" yaml:"size"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
}

// TotalSize sums every bundle size and every media size.
//
// Media sizes are added on top of their bundle without deduplication. Entries
// parsed from sidecars always carry 0, so today the result equals the sum of
// bundle sizes.
func TotalSize(bundles []Bundle) int64 {
	var total int64
	for i := range bundles {
		total += bundles[i].Size
		for j := range bundles[i].Media {
			total += bundles[i].Media[j].Size
		}
	}
	return total
}

// SortBundles orders bundles by path so that output is stable across runs.
func SortBundles(bundles []Bundle) {
	sort.SliceStable(bundles, func(i, j int) bool {
		return bundles[i].Path < bundles[j].Path
	})
}

// MediaCount returns the number of media entries across all bundles.
func (c *Catalog) MediaCount() int {
	n := 0
	for i := range c.Bundles {
		n += len(c.Bundles[i].Media)
	}
	return n
}

// Languages returns the distinct language tags seen on bundles and media, sorted.
// The empty tag is included when any record is unlocalized.
func (c *Catalog) Languages() []string {
	seen := make(map[string]bool)
	for i := range c.Bundles {
		seen[c.Bundles[i].Language] = true
		for j := range c.Bundles[i].Media {
			seen[c.Bundles[i].Media[j].Language] = true
		}
	}
	langs := make([]string, 0, len(seen))
	for l := range seen {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Record returns the entry as a generic map for callers without access to these types.
func (m MediaEntry) Record() map[string]any {
	return map[string]any{
		"name":     m.Name,
		"size":     m.Size,
		"id":       m.ID,
		"path":     m.Path,
		"type":     m.Category,
		"language": m.Language,
	}
}

// Record returns the bundle and its media as generic maps.
func (b Bundle) Record() map[string]any {
	media := make([]map[string]any, 0, len(b.Media))
	for _, m := range b.Media {
		media = append(media, m.Record())
	}
	return map[string]any{
		"name":     b.Name,
		"size":     b.Size,
		"id":       b.ID,
		"guid":     b.GUID,
		"path":     b.Path,
		"type":     b.Category,
		"language": b.Language,
		"wem_list": media,
	}
}

// Record returns the catalog as a generic map with "banks" and "size" keys.
func (c *Catalog) Record() map[string]any {
	banks := make([]map[string]any, 0, len(c.Bundles))
	for _, b := range c.Bundles {
		banks = append(banks, b.Record())
	}
	return map[string]any{
		"banks": banks,
		"size":  c.TotalSize,
	}
}
