/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package session holds the state a front end works against: the most recent
// catalog, the active filter chain and the running log of skipped bundles.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/bankscope/internal/events"
	"github.com/friendsincode/bankscope/internal/filter"
	"github.com/friendsincode/bankscope/internal/logbuffer"
	"github.com/friendsincode/bankscope/internal/models"
)

var (
	// ErrScanInProgress is returned when a scan is requested while another runs.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrFilterIndex is returned for a filter position outside the chain.
	ErrFilterIndex = errors.New("filter index out of range")
)

// Scanner produces catalogs. *catalog.Service implements it.
type Scanner interface {
	Scan(ctx context.Context, pattern string) (*models.Catalog, error)
}

// Session is safe for concurrent use.
type Session struct {
	scanner Scanner
	logs    *logbuffer.Buffer
	bus     *events.Bus
	logger  zerolog.Logger

	scanMu sync.Mutex

	mu      sync.RWMutex
	catalog *models.Catalog
	filters filter.Chain
}

// New creates a session. logs and bus may be nil.
func New(scanner Scanner, logs *logbuffer.Buffer, bus *events.Bus, logger zerolog.Logger) *Session {
	return &Session{
		scanner: scanner,
		logs:    logs,
		bus:     bus,
		logger:  logger.With().Str("component", "session").Logger(),
		filters: filter.Chain{},
	}
}

// Scan runs a scan and, on success, replaces the current catalog. A failed
// scan leaves the previous catalog in place.
func (s *Session) Scan(ctx context.Context, pattern string) (*models.Catalog, error) {
	if !s.scanMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.scanMu.Unlock()

	cat, err := s.scanner.Scan(ctx, pattern)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	return cat, nil
}

// Catalog returns the most recent catalog, or nil before the first scan.
func (s *Session) Catalog() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Filters returns a copy of the active chain. Editing the returned filters
// does not change the session.
func (s *Session) Filters() filter.Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, _ := cloneChain(s.filters)
	return out
}

// AddFilter appends f to the chain.
func (s *Session) AddFilter(f filter.Filter) error {
	c, err := cloneFilter(f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.filters = append(s.filters, c)
	n := len(s.filters)
	s.mu.Unlock()

	s.changed("add", n)
	return nil
}

// ReplaceFilter swaps the filter at index i.
func (s *Session) ReplaceFilter(i int, f filter.Filter) error {
	c, err := cloneFilter(f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if i < 0 || i >= len(s.filters) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrFilterIndex, i)
	}
	s.filters[i] = c
	n := len(s.filters)
	s.mu.Unlock()

	s.changed("replace", n)
	return nil
}

// RemoveFilter deletes the filter at index i.
func (s *Session) RemoveFilter(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.filters) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrFilterIndex, i)
	}
	s.filters = append(s.filters[:i:i], s.filters[i+1:]...)
	n := len(s.filters)
	s.mu.Unlock()

	s.changed("remove", n)
	return nil
}

// SetFilters replaces the whole chain. Nothing changes if any filter is invalid.
func (s *Session) SetFilters(chain filter.Chain) error {
	c, err := cloneChain(chain)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.filters = c
	s.mu.Unlock()

	s.changed("set", len(c))
	return nil
}

// ClearFilters empties the chain.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	s.filters = filter.Chain{}
	s.mu.Unlock()

	s.changed("clear", 0)
}

// View applies the active chain to the current catalog.
func (s *Session) View() (*filter.View, error) {
	s.mu.RLock()
	cat, chain := s.catalog, s.filters
	s.mu.RUnlock()
	return filter.Apply(cat, chain)
}

// Logs returns buffered log entries matching params.
func (s *Session) Logs(params logbuffer.QueryParams) []logbuffer.LogEntry {
	if s.logs == nil {
		return []logbuffer.LogEntry{}
	}
	return s.logs.Query(params)
}

// ClearLogs empties the log buffer.
func (s *Session) ClearLogs() {
	if s.logs != nil {
		s.logs.Clear()
	}
}

func (s *Session) changed(op string, count int) {
	s.logger.Debug().Str("op", op).Int("filters", count).Msg("filter chain changed")
	s.bus.Publish(events.EventFiltersChanged, events.Payload{"op": op, "count": count})
}

// cloneFilter round-trips f through its spec so the session owns its copy,
// and rejects filters that do not configure.
func cloneFilter(f filter.Filter) (filter.Filter, error) {
	if f == nil {
		return nil, errors.New("nil filter")
	}
	c, err := f.Spec().Build()
	if err != nil {
		return nil, err
	}
	if _, err := c.Configure(); err != nil {
		return nil, &filter.ConfigError{Kind: c.Kind(), Err: err}
	}
	return c, nil
}

func cloneChain(chain filter.Chain) (filter.Chain, error) {
	out := make(filter.Chain, 0, len(chain))
	for i, f := range chain {
		c, err := cloneFilter(f)
		if err != nil {
			var cerr *filter.ConfigError
			if errors.As(err, &cerr) {
				cerr.Index = i
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
