/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/bankscope/internal/catalog"
	"github.com/friendsincode/bankscope/internal/events"
	"github.com/friendsincode/bankscope/internal/server"
	"github.com/friendsincode/bankscope/internal/session"
	"github.com/friendsincode/bankscope/internal/telemetry"
	"github.com/friendsincode/bankscope/internal/version"
)

var (
	servePattern string
	servePort    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve catalogs and filtered views over HTTP",
	Long: `serve exposes scans, the filter chain, the skipped-bank log and a live
event stream on a local HTTP API. Use --pattern to scan once at startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePattern, "pattern", "", "Glob pattern to scan at startup")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default: BANKSCOPE_HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if servePort > 0 {
		cfg.HTTPPort = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger.Info().Str("version", version.Version).Msg("bankscope starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "bankscope",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	bus := events.NewBus()
	svc := catalog.New(catalog.Options{Workers: cfg.Workers, SidecarExt: cfg.SidecarExt, Bus: bus}, logger)
	sess := session.New(svc, logBuf, bus, logger)

	chain, err := cfg.LoadFilters()
	if err != nil {
		return err
	}
	if err := sess.SetFilters(chain); err != nil {
		return fmt.Errorf("apply startup filters: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if servePattern != "" {
		if _, err := sess.Scan(ctx, servePattern); err != nil {
			return fmt.Errorf("initial scan: %w", err)
		}
	}

	srv := server.New(cfg, sess, bus, logger)
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down gracefully...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("shutdown cleanup failed")
	}

	logger.Info().Msg("bankscope stopped")
	return nil
}
