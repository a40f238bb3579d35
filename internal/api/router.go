// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerocite/aerocite/internal/config"
	"github.com/aerocite/aerocite/internal/middleware"
)

// Router wires handlers into the chi route tree.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
}

// NewRouter creates a router for the given handler and API configuration.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// Health endpoints get a permissive rate limit so monitoring can poll
	// freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Session endpoints (analytics).
	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/", router.handler.StartSession)
		r.Get("/{sessionID}", router.handler.GetSession)
		r.Post("/{sessionID}/manifest", router.handler.SubmitManifest)
		r.Get("/{sessionID}/results", router.handler.ListResults)
	})

	// Record endpoints (catalog).
	r.Route("/api/v1/records", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/{recordID}", router.handler.GetRecord)
		r.Get("/{recordID}/status", router.handler.GetRecordStatus)
		r.Post("/{recordID}/run-check", router.handler.RunCheck)
		r.Post("/{recordID}/review", router.handler.SubmitReview)
	})

	// Rule set management.
	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/", router.handler.GetRules)
		r.Put("/", router.handler.PutRules)
	})

	// Penalty boundary endpoint for remote deployments.
	r.Route("/api/v1/penalty", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/check", router.handler.PenaltyCheck)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rateLimit returns the standard per-IP limiter, or a no-op when the
// configured request budget is zero.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow)
}
