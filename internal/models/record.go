// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package models

import "time"

// Record lifecycle statuses, per recordId. PENALTY_DECIDED is terminal for
// the automatic pipeline; only the manual review gate changes a decided
// record afterwards. PENALTY_FAILED is re-triggerable via run-check.
const (
	RecordReceived      = "RECEIVED"
	RecordSentToPenalty = "SENT_TO_PENALTY"
	RecordDecided       = "PENALTY_DECIDED"
	RecordFailed        = "PENALTY_FAILED"
)

// Decision statuses produced by the evaluation engine. Manual review may
// set any inspector-chosen terminal label, so these constants cover the
// automatic path only and the field is deliberately not an enum.
const (
	DecisionNoViolation    = "NO_VIOLATION"
	DecisionApproved       = "APPROVED"
	DecisionRequiresReview = "REQUIRES_REVIEW"
)

// Rule codes produced by the evaluation engine.
const (
	RuleCodeNoViolation = "NO_VIOLATION"
	RuleCodeSpeedLimit  = "SPEED_LIMIT"
)

// RecordID composes the globally unique record identifier from session and
// file identity. Embedding the session id guarantees no two sessions can
// produce colliding record identifiers.
func RecordID(sessionID, fileKey string) string {
	return sessionID + ":" + fileKey
}

// AnalysisResult is the derived per-capture motion telemetry, computed once
// per capture pair and idempotently overwritten on re-ingestion of the same
// record id.
type AnalysisResult struct {
	RecordID       string    `json:"record_id"`
	SessionID      string    `json:"session_id"`
	FileKey        string    `json:"file_key"`
	DistanceMeters float64   `json:"distance_meters"`
	SpeedKmh       float64   `json:"speed_kmh"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Decision is the output of rule evaluation for one record. Evidence holds
// the self-describing audit document capturing the inputs and outputs that
// produced the decision.
type Decision struct {
	Status         string  `json:"decision_status"`
	RuleCode       string  `json:"rule_code"`
	Amount         float64 `json:"amount"`
	RequiresReview bool    `json:"requires_review"`
	Evidence       string  `json:"evidence,omitempty"`
}

// CatalogRecord is the durable decision unit addressed by RecordID. It is
// created on first ingestion of a capture, refreshed by re-ingestion,
// decided by the penalty check, and amended by manual review only while the
// decision status is REQUIRES_REVIEW.
type CatalogRecord struct {
	RecordID   string `json:"record_id"`
	SessionID  string `json:"session_id"`
	FileKey    string `json:"file_key"`
	DroneID    string `json:"drone_id"`
	OperatorID string `json:"operator_id"`

	TakenAt   string  `json:"taken_at"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`

	DistanceMeters float64 `json:"distance_meters"`
	SpeedKmh       float64 `json:"speed_kmh"`
	Confidence     float64 `json:"confidence"`

	Status           string   `json:"status"`
	Decision         Decision `json:"decision"`
	InspectorComment string   `json:"inspector_comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
