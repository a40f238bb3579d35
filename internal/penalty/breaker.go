// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package penalty

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/aerocite/aerocite/internal/config"
	"github.com/aerocite/aerocite/internal/logging"
	"github.com/aerocite/aerocite/internal/metrics"
	"github.com/aerocite/aerocite/internal/models"
)

// BreakerChecker wraps a Checker with a circuit breaker so a failing
// penalty endpoint cannot stall manifest ingestion.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests should exercise the wrapped Checker directly or drive the breaker
// through enough failures to trip it.
type BreakerChecker struct {
	inner Checker
	cb    *gobreaker.CircuitBreaker[*CheckResponse]
	name  string
}

// NewBreakerChecker wraps inner with a circuit breaker. The breaker opens
// after a 60% failure rate over at least 10 requests and probes recovery
// after cfg.Timeout.
func NewBreakerChecker(inner Checker, cfg config.BreakerConfig) *BreakerChecker {
	const cbName = "penalty-check"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*CheckResponse](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerChecker{inner: inner, cb: cb, name: cbName}
}

// Check implements Checker. Requests rejected by an open circuit map to
// ErrUpstreamUnavailable so callers treat them like any other boundary
// failure.
func (b *BreakerChecker) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	resp, err := b.cb.Execute(func() (*CheckResponse, error) {
		return b.inner.Check(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return resp, nil
}

// State returns the current circuit breaker state.
func (b *BreakerChecker) State() gobreaker.State {
	return b.cb.State()
}

// stateToFloat converts circuit breaker state to a numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
