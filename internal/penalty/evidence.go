// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package penalty

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/rules"
)

// evidenceDoc is the JSON document attached to a decision. It carries
// every input and output of the evaluation so a decision can be audited
// without the record it was made for.
type evidenceDoc struct {
	RecordID            string  `json:"record_id"`
	FileKey             string  `json:"file_key"`
	DroneID             string  `json:"drone_id"`
	OperatorID          string  `json:"operator_id"`
	TakenAt             string  `json:"taken_at"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	SpeedKmh            float64 `json:"speed_kmh"`
	SpeedLimitKmh       float64 `json:"speed_limit_kmh"`
	OverKmh             float64 `json:"over_kmh"`
	Confidence          float64 `json:"confidence"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	DecisionStatus      string  `json:"decision_status"`
	RuleCode            string  `json:"rule_code"`
	RequiresReview      bool    `json:"requires_review"`
	Amount              float64 `json:"amount"`
	EvaluatedAt         string  `json:"evaluated_at"`
}

// buildEvidence renders the evidence document for a decided record.
func buildEvidence(req *CheckRequest, rs *rules.RuleSet, decision *models.Decision) (string, error) {
	over := req.SpeedKmh - rs.SpeedLimitKmh
	if over < 0 {
		over = 0
	}

	doc := evidenceDoc{
		RecordID:            req.RecordID,
		FileKey:             req.FileKey,
		DroneID:             req.DroneID,
		OperatorID:          req.OperatorID,
		TakenAt:             req.TakenAt,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		SpeedKmh:            req.SpeedKmh,
		SpeedLimitKmh:       rs.SpeedLimitKmh,
		OverKmh:             over,
		Confidence:          req.Confidence,
		ConfidenceThreshold: rs.ReviewConfidenceThreshold,
		DecisionStatus:      decision.Status,
		RuleCode:            decision.RuleCode,
		RequiresReview:      decision.RequiresReview,
		Amount:              decision.Amount,
		EvaluatedAt:         time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
