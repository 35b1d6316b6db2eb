/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/bankscope/internal/filter"
	"github.com/friendsincode/bankscope/internal/models"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q: want table, json or yaml", s)
	}
}

// report is what scan prints: catalog metadata plus the filtered banks.
type report struct {
	ScanID     string          `json:"scan_id" yaml:"scan_id"`
	Pattern    string          `json:"pattern" yaml:"pattern"`
	Platform   string          `json:"platform,omitempty" yaml:"platform,omitempty"`
	ScannedAt  time.Time       `json:"scanned_at" yaml:"scanned_at"`
	Skipped    int             `json:"skipped" yaml:"skipped"`
	Banks      []models.Bundle `json:"banks" yaml:"banks"`
	Size       int64           `json:"size" yaml:"size"`
	MediaCount int             `json:"media_count" yaml:"media_count"`
}

func newReport(cat *models.Catalog, view *filter.View) report {
	return report{
		ScanID:     cat.ScanID,
		Pattern:    cat.Pattern,
		Platform:   cat.Platform,
		ScannedAt:  cat.ScannedAt,
		Skipped:    cat.Skipped,
		Banks:      view.Bundles,
		Size:       view.TotalSize,
		MediaCount: view.MediaCount,
	}
}

func render(w io.Writer, format outputFormat, cat *models.Catalog, view *filter.View, showMedia bool) error {
	rep := newReport(cat, view)
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return renderTable(w, rep, showMedia)
	}
}

func renderTable(w io.Writer, rep report, showMedia bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLANGUAGE\tID\tTYPE\tMEDIA\tSIZE\tPATH")
	for _, b := range rep.Banks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.Name, orDash(b.Language), orDash(b.ID), orDash(b.Category), len(b.Media), humanSize(b.Size), b.Path)
		if !showMedia {
			continue
		}
		for _, m := range b.Media {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t\t\t%s\n", m.Name, orDash(m.Language), orDash(m.ID), m.Category, m.Path)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	summary := fmt.Sprintf("%d bank(s), %d media, %s", len(rep.Banks), rep.MediaCount, humanSize(rep.Size))
	if rep.Skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", rep.Skipped)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// humanSize formats a byte count with binary units.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
