/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/friendsincode/bankscope/internal/catalog"
	"github.com/friendsincode/bankscope/internal/filter"
	"github.com/friendsincode/bankscope/internal/logbuffer"
)

var (
	scanWorkers   int
	scanFormat    string
	scanOutput    string
	scanNames     []string
	scanRegex     bool
	scanCase      bool
	scanLangs     []string
	scanMediaOnly bool
	scanFilters   string
	scanShowMedia bool
)

var scanCmd = &cobra.Command{
	Use:   "scan PATTERN",
	Short: "Scan bank files matching a glob pattern",
	Long: `scan expands PATTERN (with ** matching any number of directories), reads the
sidecar of every matching bank, and prints the catalog narrowed by the given
filters. Banks that cannot be read are skipped and listed on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.IntVarP(&scanWorkers, "workers", "w", 0, "Parallel workers (default: BANKSCOPE_WORKERS or one per CPU)")
	f.StringVarP(&scanFormat, "format", "f", "table", "Output format: table, json or yaml")
	f.StringVarP(&scanOutput, "output", "o", "", "Output file (default: stdout)")
	f.StringArrayVar(&scanNames, "name", nil, "Name pattern filter (repeatable, all must match)")
	f.BoolVar(&scanRegex, "regex", false, "Treat --name patterns as regular expressions")
	f.BoolVar(&scanCase, "case-sensitive", false, "Match --name patterns case-sensitively")
	f.StringSliceVar(&scanLangs, "lang", nil, "Keep only these languages (comma separated, repeatable)")
	f.BoolVar(&scanMediaOnly, "media-only", false, "Apply --name and --lang to media entries only")
	f.StringVar(&scanFilters, "filters", "", "Filter chain file (.json, .yaml); default BANKSCOPE_FILTERS_FILE")
	f.BoolVar(&scanShowMedia, "media", false, "List media entries under each bank in table output")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	format, err := parseFormat(scanFormat)
	if err != nil {
		return err
	}

	if scanFilters != "" {
		cfg.FiltersFile = scanFilters
	}
	chain, err := cfg.LoadFilters()
	if err != nil {
		return err
	}
	flags, err := flagFilters()
	if err != nil {
		return err
	}
	chain = append(chain, flags...)

	workers := cfg.Workers
	if scanWorkers > 0 {
		workers = scanWorkers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := catalog.New(catalog.Options{Workers: workers, SidecarExt: cfg.SidecarExt}, logger)
	cat, err := svc.Scan(ctx, args[0])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	view, err := filter.Apply(cat, chain)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scanOutput != "" {
		file, err := os.Create(scanOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := render(out, format, cat, view, scanShowMedia); err != nil {
		return err
	}

	entries := logBuf.Query(logbuffer.QueryParams{Level: "warn", ScanID: cat.ScanID, Search: "skipping bundle"})
	reportSkipped(cmd.ErrOrStderr(), cat.Skipped, entries)
	return nil
}

// flagFilters turns command line filter flags into a chain.
func flagFilters() (filter.Chain, error) {
	if scanMediaOnly && len(scanNames) == 0 && len(scanLangs) == 0 {
		return nil, errors.New("--media-only needs --name or --lang")
	}
	var chain filter.Chain
	if len(scanLangs) > 0 {
		f := filter.NewLanguageFilter(scanLangs...)
		if scanMediaOnly {
			f.Bundles = false
		}
		chain = append(chain, f)
	}
	for _, pattern := range scanNames {
		f := filter.NewNameFilter()
		f.Pattern = pattern
		f.UseRegex = scanRegex
		f.CaseSensitive = scanCase
		if scanMediaOnly {
			f.Bundles = false
		}
		chain = append(chain, f)
	}
	return chain, nil
}

// reportSkipped summarizes the bundles the scan left out. The count comes from
// the catalog; the list is read back from the captured log and may be shorter
// when the log buffer has wrapped.
func reportSkipped(w io.Writer, skipped int, entries []logbuffer.LogEntry) {
	if skipped == 0 {
		return
	}
	fmt.Fprintf(w, "skipped %d bank(s):\n", skipped)
	for _, e := range entries {
		fmt.Fprintf(w, "  %v (%v)\n", e.Fields["path"], e.Fields["reason"])
	}
	if rest := skipped - len(entries); rest > 0 {
		fmt.Fprintf(w, "  ... %d more not kept in the log buffer\n", rest)
	}
}
