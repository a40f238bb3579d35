// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package penalty

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/aerocite/aerocite/internal/metrics"
	"github.com/aerocite/aerocite/internal/models"
)

// Checker is the decision boundary between the catalog and the penalty
// service. Implementations must treat an empty or unparseable response as
// a failure, never as an absent decision.
type Checker interface {
	Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error)
}

// LocalChecker evaluates decisions in-process.
type LocalChecker struct {
	svc *Service
}

// NewLocalChecker creates a Checker backed by the in-process service.
func NewLocalChecker(svc *Service) *LocalChecker {
	return &LocalChecker{svc: svc}
}

// Check implements Checker.
func (c *LocalChecker) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	start := time.Now()
	resp, err := c.svc.Check(ctx, req)
	metrics.RecordPenaltyCall(time.Since(start), err)
	return resp, err
}

// HTTPChecker calls a remote penalty endpoint over HTTP.
type HTTPChecker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPChecker creates a Checker that POSTs check requests to
// baseURL + "/api/v1/penalty/check".
func NewHTTPChecker(baseURL string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// checkEnvelope is the API response envelope around a CheckResponse.
type checkEnvelope struct {
	Status string           `json:"status"`
	Data   *CheckResponse   `json:"data"`
	Error  *models.APIError `json:"error,omitempty"`
}

// Check implements Checker. Transport failures, non-2xx statuses, and
// empty response bodies all map to ErrUpstreamUnavailable.
func (c *HTTPChecker) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	start := time.Now()
	resp, err := c.doCheck(ctx, req)
	metrics.RecordPenaltyCall(time.Since(start), err)
	return resp, err
}

func (c *HTTPChecker) doCheck(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal check request: %w", err)
	}

	url := c.baseURL + "/api/v1/penalty/check"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build check request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", models.ErrUpstreamUnavailable, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: penalty endpoint returned %d", models.ErrUpstreamUnavailable, httpResp.StatusCode)
	}
	if len(respBody) == 0 {
		return nil, fmt.Errorf("%w: empty response body", models.ErrUpstreamUnavailable)
	}

	var envelope checkEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrUpstreamUnavailable, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: response carried no decision", models.ErrUpstreamUnavailable)
	}

	return envelope.Data, nil
}
