// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package supervisor builds the suture supervision tree that keeps the
// long-running parts of the service alive: the HTTP server and the Badger
// maintenance loop. Failures restart the offending service with backoff
// instead of taking the whole process down.
package supervisor
