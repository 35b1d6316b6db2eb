/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog builds a bank catalog from a discovery pattern.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/friendsincode/bankscope/internal/discovery"
	"github.com/friendsincode/bankscope/internal/events"
	"github.com/friendsincode/bankscope/internal/models"
	"github.com/friendsincode/bankscope/internal/sidecar"
	"github.com/friendsincode/bankscope/internal/telemetry"
)

// StatError reports a candidate whose file metadata could not be read.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("stat %s: %v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

var errNotRegular = errors.New("not a regular file")

// Options configures a Service.
type Options struct {
	// Workers bounds concurrent candidate processing. Zero means one per CPU.
	Workers int
	// SidecarExt is the descriptor extension, ".json" when empty.
	SidecarExt string
	// Bus receives scan progress events when set.
	Bus *events.Bus
}

// Service scans bank files into catalogs. It holds no per-scan state and can
// be shared between callers.
type Service struct {
	workers int
	parser  *sidecar.Parser
	bus     *events.Bus
	logger  zerolog.Logger
}

// New creates a catalog service.
func New(opts Options, logger zerolog.Logger) *Service {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Service{
		workers: workers,
		parser:  sidecar.NewParser(opts.SidecarExt, logger),
		bus:     opts.Bus,
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

// candidate is the outcome of loading one path. Exactly one of bundle and err is set.
type candidate struct {
	bundle   *models.Bundle
	platform string
	result   string
	err      error
}

// Scan discovers bank files matching pattern and aggregates them into a catalog.
//
// Only a *discovery.PatternError or a context error is returned. Candidates
// that cannot be stat'ed or whose sidecar is malformed are logged and left
// out of the catalog.
func (s *Service) Scan(ctx context.Context, pattern string) (*models.Catalog, error) {
	paths, err := discovery.Discover(pattern, discovery.Options{SidecarExt: s.parser.Ext()})
	if err != nil {
		telemetry.ScanRunsTotal.WithLabelValues("pattern_error").Inc()
		s.bus.Publish(events.EventScanFailed, events.Payload{"pattern": pattern, "error": err.Error()})
		return nil, err
	}
	return s.build(ctx, pattern, paths)
}

// Build aggregates an explicit list of candidate paths. Paths are made
// absolute and duplicates are dropped.
func (s *Service) Build(ctx context.Context, paths []string) (*models.Catalog, error) {
	seen := make(map[string]bool, len(paths))
	normalized := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		normalized = append(normalized, abs)
	}
	return s.build(ctx, "", normalized)
}

func (s *Service) build(ctx context.Context, pattern string, paths []string) (*models.Catalog, error) {
	start := time.Now()
	scanID := uuid.NewString()
	logger := s.logger.With().Str("scan_id", scanID).Logger()

	ctx, span := telemetry.StartSpan(ctx, "catalog.Scan",
		attribute.String("scan.id", scanID),
		attribute.String("scan.pattern", pattern),
		attribute.Int("scan.candidates", len(paths)),
	)

	logger.Info().Str("pattern", pattern).Int("candidates", len(paths)).Int("workers", s.workers).Msg("scan started")
	s.bus.Publish(events.EventScanStarted, events.Payload{
		"scan_id":    scanID,
		"pattern":    pattern,
		"candidates": len(paths),
	})

	results, err := s.loadAll(ctx, paths)
	if err != nil {
		telemetry.ScanRunsTotal.WithLabelValues("canceled").Inc()
		s.bus.Publish(events.EventScanFailed, events.Payload{"scan_id": scanID, "pattern": pattern, "error": err.Error()})
		logger.Warn().Err(err).Msg("scan aborted")
		telemetry.EndSpan(span, err)
		return nil, err
	}

	cat := &models.Catalog{
		ScanID:    scanID,
		Pattern:   pattern,
		ScannedAt: start.UTC(),
		Bundles:   make([]models.Bundle, 0, len(results)),
	}
	for i, r := range results {
		telemetry.ScanCandidatesTotal.WithLabelValues(r.result).Inc()
		if r.err != nil {
			cat.Skipped++
			logger.Warn().Err(r.err).Str("path", paths[i]).Str("reason", r.result).Msg("skipping bundle")
			s.bus.Publish(events.EventScanSkipped, events.Payload{
				"scan_id": scanID,
				"path":    paths[i],
				"reason":  r.result,
				"error":   r.err.Error(),
			})
			continue
		}
		if cat.Platform == "" {
			cat.Platform = r.platform
		}
		cat.Bundles = append(cat.Bundles, *r.bundle)
	}

	models.SortBundles(cat.Bundles)
	cat.TotalSize = models.TotalSize(cat.Bundles)

	elapsed := time.Since(start)
	telemetry.ScanRunsTotal.WithLabelValues("ok").Inc()
	telemetry.ScanDuration.Observe(elapsed.Seconds())
	telemetry.CatalogBundles.Set(float64(len(cat.Bundles)))
	telemetry.CatalogBytes.Set(float64(cat.TotalSize))
	span.SetAttributes(
		attribute.Int("scan.bundles", len(cat.Bundles)),
		attribute.Int("scan.skipped", cat.Skipped),
		attribute.Int64("scan.total_size", cat.TotalSize),
	)
	telemetry.EndSpan(span, nil)

	logger.Info().
		Int("bundles", len(cat.Bundles)).
		Int("media", cat.MediaCount()).
		Int("skipped", cat.Skipped).
		Int64("total_size", cat.TotalSize).
		Dur("elapsed", elapsed).
		Msg("scan complete")
	s.bus.Publish(events.EventScanCompleted, events.Payload{
		"scan_id":          scanID,
		"pattern":          pattern,
		"bundles":          len(cat.Bundles),
		"skipped":          cat.Skipped,
		"total_size":       cat.TotalSize,
		"duration_seconds": elapsed.Seconds(),
	})

	return cat, nil
}

// loadAll processes every path on the worker pool. Each worker writes only its
// own slot of the result slice.
func (s *Service) loadAll(ctx context.Context, paths []string) ([]candidate, error) {
	results := make([]candidate, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.load(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// load stats one candidate and reads its sidecar.
func (s *Service) load(path string) candidate {
	info, err := os.Stat(path)
	if err != nil {
		return candidate{result: telemetry.ResultStatError, err: &StatError{Path: path, Err: err}}
	}
	if !info.Mode().IsRegular() {
		return candidate{result: telemetry.ResultStatError, err: &StatError{Path: path, Err: errNotRegular}}
	}

	b := &models.Bundle{
		Name:  filepath.Base(path),
		Path:  path,
		Size:  info.Size(),
		Media: []models.MediaEntry{},
	}

	sc, err := s.parser.Parse(path)
	if err != nil {
		return candidate{result: telemetry.ResultParseError, err: err}
	}
	if sc == nil {
		return candidate{bundle: b, result: telemetry.ResultNoSidecar}
	}
	sc.Apply(b)
	return candidate{bundle: b, platform: sc.Platform, result: telemetry.ResultCataloged}
}
