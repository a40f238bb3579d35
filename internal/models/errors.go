// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package models

import "errors"

// Error taxonomy for the pipeline. Every failure surfaced by the service
// packages wraps exactly one of these sentinels so callers (and the HTTP
// layer) can classify it with errors.Is without string matching.
var (
	// ErrInvalidInput marks malformed or missing required fields in a
	// capture, manifest, or review request. Caller-facing, never retried
	// automatically.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRuleConfig marks an active rule set that violates its structural
	// invariants, or a speed-over value no bracket matched. Operational
	// misconfiguration, kept distinct from bad requests.
	ErrRuleConfig = errors.New("rule configuration error")

	// ErrNotFound marks a referenced session, record, or rule set that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed marks an operation whose state precondition is
	// unmet, such as manual review against a record that is not in
	// REQUIRES_REVIEW.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrUpstreamUnavailable marks a failed or unusable decision boundary
	// call. Always recorded as PENALTY_FAILED on the record before being
	// surfaced.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
