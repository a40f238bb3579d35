// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package models

import "time"

// Session lifecycle statuses, written by the analytics service as ingestion
// stages complete. The catalog statuses are terminal for one submission but a
// session may be re-submitted, which restarts the chain at MANIFEST_PARSED.
const (
	SessionCreated           = "CREATED"
	SessionManifestParsed    = "MANIFEST_PARSED"
	SessionAnalysisSaved     = "ANALYSIS_SAVED"
	SessionCatalogSent       = "CATALOG_SENT"
	SessionCatalogCallFailed = "CATALOG_CALL_FAILED"
)

// Session is one flight/capture batch. Created at session start, mutated as
// ingestion stages complete, never deleted.
type Session struct {
	SessionID       string    `json:"session_id"`
	DroneID         string    `json:"drone_id"`
	OperatorID      string    `json:"operator_id"`
	Status          string    `json:"status"`
	PackageChecksum string    `json:"package_checksum,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Capture is one geotagged image in a session. Immutable once ingested.
// TakenAt stays a string at this layer: the telemetry deriver owns parsing
// and treats parse failures as a confidence degradation, not a type error.
type Capture struct {
	FileKey   string  `json:"file_key" validate:"required"`
	TakenAt   string  `json:"taken_at" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Manifest is the ordered capture sequence for one session, as supplied by
// the (external) manifest source. Captures are processed strictly in the
// order given here and are never re-sorted.
type Manifest struct {
	DroneID         string    `json:"drone_id,omitempty"`
	OperatorID      string    `json:"operator_id,omitempty"`
	StartTime       string    `json:"start_time,omitempty"`
	EndTime         string    `json:"end_time,omitempty"`
	PackageChecksum string    `json:"package_checksum,omitempty"`
	Captures        []Capture `json:"captures"`
}
