// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package metrics provides Prometheus metrics for the pipeline: HTTP
// traffic, ingestion volume, decision outcomes, penalty boundary calls,
// and circuit breaker state. All collectors are registered on the default
// registry via promauto and exposed at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerocite_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aerocite_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aerocite_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Ingestion Metrics
	ManifestsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerocite_manifests_ingested_total",
			Help: "Total number of manifest submissions",
		},
		[]string{"result"}, // "ok", "invalid", "catalog_failed"
	)

	CapturesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aerocite_captures_processed_total",
			Help: "Total number of captures run through telemetry derivation",
		},
	)

	// Decision Metrics
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerocite_decisions_total",
			Help: "Total number of penalty decisions by decision status",
		},
		[]string{"decision_status"},
	)

	ReviewsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aerocite_reviews_submitted_total",
			Help: "Total number of accepted manual review submissions",
		},
	)

	// Penalty Boundary Metrics
	PenaltyCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerocite_penalty_calls_total",
			Help: "Total number of decision boundary calls",
		},
		[]string{"result"}, // "success", "failure"
	)

	PenaltyCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aerocite_penalty_call_duration_seconds",
			Help:    "Duration of decision boundary calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aerocite_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerocite_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerocite_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPenaltyCall records one decision boundary call outcome.
func RecordPenaltyCall(duration time.Duration, err error) {
	PenaltyCallDuration.Observe(duration.Seconds())
	if err != nil {
		PenaltyCalls.WithLabelValues("failure").Inc()
		return
	}
	PenaltyCalls.WithLabelValues("success").Inc()
}
