/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Candidate outcomes recorded by ScanCandidatesTotal.
const (
	ResultCataloged  = "cataloged"
	ResultStatError  = "stat_error"
	ResultParseError = "parse_error"
	ResultNoSidecar  = "no_sidecar"
)

var (
	// ScanRunsTotal counts scans by outcome (ok, pattern_error, canceled).
	ScanRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bankscope",
		Name:      "scan_runs_total",
		Help:      "Number of catalog scans by outcome.",
	}, []string{"outcome"})

	// ScanCandidatesTotal counts candidate bank files by result.
	ScanCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bankscope",
		Name:      "scan_candidates_total",
		Help:      "Candidate bank files processed, by result.",
	}, []string{"result"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bankscope",
		Name:      "scan_duration_seconds",
		Help:      "Wall time of a full catalog scan.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
	})

	CatalogBundles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bankscope",
		Name:      "catalog_bundles",
		Help:      "Bundles in the most recent catalog.",
	})

	CatalogBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bankscope",
		Name:      "catalog_size_bytes",
		Help:      "Total size of the most recent catalog.",
	})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bankscope",
		Name:      "api_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bankscope",
		Name:      "api_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bankscope",
		Name:      "api_active_connections",
		Help:      "In-flight HTTP requests.",
	})
)

// Handler exposes metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
