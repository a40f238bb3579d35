// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package models defines the domain types shared across the Aerocite pipeline:
// capture sessions, manifests, per-capture analysis results, catalog records,
// penalty decisions, the error taxonomy, and the HTTP response envelope.
//
// The types here carry no behavior beyond small derivation helpers (composite
// record identifiers, status predicates). All stateful logic lives in the
// service packages (analytics, catalog, penalty) that operate on these types.
package models
