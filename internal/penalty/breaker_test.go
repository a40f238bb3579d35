// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package penalty

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/aerocite/aerocite/internal/config"
	"github.com/aerocite/aerocite/internal/models"
)

// stubChecker returns canned responses for breaker tests.
type stubChecker struct {
	resp  *CheckResponse
	err   error
	calls int
}

func (s *stubChecker) Check(context.Context, *CheckRequest) (*CheckResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func breakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:     true,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	}
}

func TestBreakerCheckerPassthrough(t *testing.T) {
	stub := &stubChecker{resp: &CheckResponse{
		RecordID: "sess-1:IMG_0001.jpg",
		Status:   models.DecisionApproved,
		Amount:   50,
	}}
	breaker := NewBreakerChecker(stub, breakerConfig())

	resp, err := breaker.Check(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resp.Amount != 50 {
		t.Errorf("Amount = %v, want 50", resp.Amount)
	}
	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", breaker.State())
	}
}

func TestBreakerCheckerPropagatesFailure(t *testing.T) {
	stub := &stubChecker{err: errors.New("penalty endpoint exploded")}
	breaker := NewBreakerChecker(stub, breakerConfig())

	_, err := breaker.Check(context.Background(), validRequest())
	if err == nil || err.Error() != "penalty endpoint exploded" {
		t.Errorf("Check() error = %v, want stub error", err)
	}
}

func TestBreakerCheckerOpensAfterRepeatedFailures(t *testing.T) {
	stub := &stubChecker{err: errors.New("down")}
	breaker := NewBreakerChecker(stub, breakerConfig())

	// The breaker needs at least 10 requests before it can trip.
	for i := 0; i < 10; i++ {
		if _, err := breaker.Check(context.Background(), validRequest()); err == nil {
			t.Fatal("Check() = nil error, want failure")
		}
	}

	if breaker.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", breaker.State())
	}

	callsBefore := stub.calls
	_, err := breaker.Check(context.Background(), validRequest())
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("Check() with open circuit error = %v, want ErrUpstreamUnavailable", err)
	}
	if stub.calls != callsBefore {
		t.Errorf("open circuit still forwarded the call (%d -> %d)", callsBefore, stub.calls)
	}
}

func TestBreakerCheckerStaysClosedBelowThreshold(t *testing.T) {
	stub := &stubChecker{err: errors.New("flaky")}
	breaker := NewBreakerChecker(stub, breakerConfig())

	// Nine failures are below the minimum request count for tripping.
	for i := 0; i < 9; i++ {
		_, _ = breaker.Check(context.Background(), validRequest())
	}

	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", breaker.State())
	}
}
