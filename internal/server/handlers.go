/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/bankscope/internal/discovery"
	"github.com/friendsincode/bankscope/internal/filter"
	"github.com/friendsincode/bankscope/internal/logbuffer"
	"github.com/friendsincode/bankscope/internal/session"
	"github.com/friendsincode/bankscope/internal/version"
)

type scanRequest struct {
	Pattern string `json:"pattern"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "version": version.Version}
	if cat := s.session.Catalog(); cat != nil {
		resp["scan_id"] = cat.ScanID
		resp["scanned_at"] = cat.ScannedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if !s.scanLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited")
		return
	}

	cat, err := s.session.Scan(r.Context(), req.Pattern)
	if err != nil {
		var perr *discovery.PatternError
		switch {
		case errors.As(err, &perr):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_pattern", "detail": perr.Error()})
		case errors.Is(err, session.ErrScanInProgress):
			writeError(w, http.StatusConflict, "scan_in_progress")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "scan_canceled")
		default:
			s.logger.Error().Err(err).Str("pattern", req.Pattern).Msg("scan failed")
			writeError(w, http.StatusInternalServerError, "scan_failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.session.Catalog()
	if cat == nil {
		writeError(w, http.StatusNotFound, "no_catalog")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	cat := s.session.Catalog()
	if cat == nil {
		writeJSON(w, http.StatusOK, map[string]any{"languages": []string{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": cat.Languages()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.session.View()
	if err != nil {
		writeFilterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	chain := s.session.Filters()
	descriptions := make([]string, 0, len(chain))
	for _, f := range chain {
		descriptions = append(descriptions, f.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filters":      chain.Specs(),
		"descriptions": descriptions,
	})
}

func (s *Server) handleAddFilter(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFilter(w, r)
	if !ok {
		return
	}
	if err := s.session.AddFilter(f); err != nil {
		writeFilterError(w, err)
		return
	}
	s.handleListFilters(w, r)
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var doc filter.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	chain, err := filter.FromSpecs(doc.Filters)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	if err := s.session.SetFilters(chain); err != nil {
		writeFilterError(w, err)
		return
	}
	s.handleListFilters(w, r)
}

func (s *Server) handleReplaceFilter(w http.ResponseWriter, r *http.Request) {
	index, ok := filterIndex(w, r)
	if !ok {
		return
	}
	f, ok := decodeFilter(w, r)
	if !ok {
		return
	}
	if err := s.session.ReplaceFilter(index, f); err != nil {
		writeFilterError(w, err)
		return
	}
	s.handleListFilters(w, r)
}

func (s *Server) handleRemoveFilter(w http.ResponseWriter, r *http.Request) {
	index, ok := filterIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.RemoveFilter(index); err != nil {
		writeFilterError(w, err)
		return
	}
	s.handleListFilters(w, r)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.session.ClearFilters()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := logbuffer.QueryParams{
		Level:      q.Get("level"),
		Component:  q.Get("component"),
		ScanID:     q.Get("scan_id"),
		Search:     q.Get("search"),
		Descending: q.Get("order") == "desc",
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		params.Limit = limit
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_since")
			return
		}
		params.Since = since
	}

	entries := s.session.Logs(params)
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.session.ClearLogs()
	w.WriteHeader(http.StatusNoContent)
}

func decodeFilter(w http.ResponseWriter, r *http.Request) (filter.Filter, bool) {
	var spec filter.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return nil, false
	}
	f, err := spec.Build()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_filter", "detail": err.Error()})
		return nil, false
	}
	return f, true
}

func filterIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_index")
		return 0, false
	}
	return index, true
}

func writeFilterError(w http.ResponseWriter, err error) {
	var cerr *filter.ConfigError
	switch {
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_filter", "index": cerr.Index, "detail": cerr.Error()})
	case errors.Is(err, session.ErrFilterIndex):
		writeError(w, http.StatusNotFound, "filter_not_found")
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_filter", "detail": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
