// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package main is the entry point for the Aerocite server.
//
// Aerocite ingests drone flight session manifests, derives per-capture speed
// metrics from GPS telemetry, and runs each capture through a configurable
// speed-violation rule engine to produce penalty decisions. Decided records
// are queryable through a REST API, and borderline decisions can be resolved
// by a manual inspector review.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Storage: embedded Badger key-value store for sessions, records, rules
//  3. Penalty checker: in-process rule engine or remote HTTP endpoint,
//     optionally wrapped in a circuit breaker
//  4. Catalog coordinator and analytics pipeline
//  5. HTTP Server: REST API under /api/v1 plus a Prometheus /metrics endpoint
//
// Long-running services (HTTP server, Badger value log maintenance) run
// under a suture supervision tree, so a crash restarts the failed service
// with backoff instead of killing the process.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, BADGER_PATH, PENALTY_MODE, ...)
//   - Config file (config.yaml, or path from CONFIG_PATH)
//   - Built-in defaults
//
// # Penalty Modes
//
// The catalog can reach the penalty decision boundary two ways:
//   - local (default): the rule engine runs in-process against the
//     stored active rule set
//   - http: decisions are requested from a remote Aerocite instance via
//     POST /api/v1/penalty/check; set PENALTY_BASE_URL
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (bounded by server.timeout)
//   - Closes the Badger store
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aerocite/aerocite/internal/analytics"
	"github.com/aerocite/aerocite/internal/api"
	"github.com/aerocite/aerocite/internal/catalog"
	"github.com/aerocite/aerocite/internal/config"
	"github.com/aerocite/aerocite/internal/logging"
	"github.com/aerocite/aerocite/internal/penalty"
	"github.com/aerocite/aerocite/internal/store"
	"github.com/aerocite/aerocite/internal/supervisor"
	"github.com/aerocite/aerocite/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("penalty_mode", cfg.Penalty.Mode).
		Str("db_path", cfg.Database.Path).
		Bool("db_in_memory", cfg.Database.InMemory).
		Msg("Configuration loaded")

	db, err := store.Open(store.Options{
		Path:       cfg.Database.Path,
		InMemory:   cfg.Database.InMemory,
		SyncWrites: cfg.Database.SyncWrites,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store opened")

	sessions := store.NewSessionStore(db)
	records := store.NewRecordStore(db)
	analysis := store.NewAnalysisStore(db)
	ruleSets := store.NewRuleSetStore(db)

	penaltySvc := penalty.NewService(ruleSets)
	checker, err := buildChecker(penaltySvc, &cfg.Penalty)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build penalty checker")
	}

	coordinator := catalog.NewCoordinator(records, checker)
	analyticsSvc := analytics.NewService(sessions, analysis, coordinator)

	handler := api.NewHandler(analyticsSvc, coordinator, penaltySvc, ruleSets, db, &cfg.API)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))
	if !cfg.Database.InMemory {
		tree.AddStorageService(services.NewBadgerGCService(db, 5*time.Minute))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// buildChecker selects the penalty boundary implementation from config.
func buildChecker(svc *penalty.Service, cfg *config.PenaltyConfig) (penalty.Checker, error) {
	var checker penalty.Checker
	switch cfg.Mode {
	case "local", "":
		checker = penalty.NewLocalChecker(svc)
	case "http":
		if cfg.BaseURL == "" {
			return nil, errors.New("penalty.base_url is required in http mode")
		}
		checker = penalty.NewHTTPChecker(cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown penalty mode %q", cfg.Mode)
	}

	if cfg.Breaker.Enabled {
		checker = penalty.NewBreakerChecker(checker, cfg.Breaker)
		logging.Info().Msg("Penalty circuit breaker enabled")
	}
	return checker, nil
}
