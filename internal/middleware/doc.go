// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package middleware provides HTTP middleware for the Aerocite API:
// request ID propagation and Prometheus request instrumentation.
// Cross-cutting concerns such as CORS, panic recovery, and rate limiting
// come from the chi middleware ecosystem and are wired in the router.
package middleware
