// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package penalty decides speed violation penalties for catalog records.
//
// The decision boundary is the Checker interface. LocalChecker evaluates
// in-process against the active rule set; HTTPChecker calls a remote
// penalty endpoint; BreakerChecker wraps either with a circuit breaker.
package penalty

import (
	"context"
	"fmt"

	"github.com/aerocite/aerocite/internal/logging"
	"github.com/aerocite/aerocite/internal/metrics"
	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/rules"
	"github.com/aerocite/aerocite/internal/store"
	"github.com/aerocite/aerocite/internal/validation"
)

// CheckRequest carries the telemetry facts for one record to be decided.
type CheckRequest struct {
	RecordID   string  `json:"record_id" validate:"required"`
	SessionID  string  `json:"session_id"`
	FileKey    string  `json:"file_key" validate:"required"`
	DroneID    string  `json:"drone_id"`
	OperatorID string  `json:"operator_id"`
	TakenAt    string  `json:"taken_at" validate:"required"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
	SpeedKmh   float64 `json:"speed_kmh" validate:"gte=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// CheckResponse is the decision for one record.
type CheckResponse struct {
	RecordID       string  `json:"record_id"`
	Status         string  `json:"decision_status"`
	RuleCode       string  `json:"rule_code"`
	Amount         float64 `json:"amount"`
	RequiresReview bool    `json:"requires_review"`
	Evidence       string  `json:"evidence,omitempty"`
}

// Service evaluates check requests against the active rule set.
type Service struct {
	ruleSets *store.RuleSetStore
}

// NewService creates a penalty decision service.
func NewService(ruleSets *store.RuleSetStore) *Service {
	return &Service{ruleSets: ruleSets}
}

// Check decides the penalty for one record. The active rule set is loaded
// fresh on every call so a rule set swap takes effect immediately.
func (s *Service) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, verr.Error())
	}

	stored, err := s.ruleSets.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active rule set: %w", err)
	}

	decision, err := rules.Evaluate(&stored.RuleSet, req.SpeedKmh, req.Confidence)
	if err != nil {
		return nil, err
	}

	evidence, err := buildEvidence(req, &stored.RuleSet, &decision)
	if err != nil {
		return nil, fmt.Errorf("build evidence: %w", err)
	}

	metrics.DecisionsTotal.WithLabelValues(decision.Status).Inc()
	logging.Ctx(ctx).Info().
		Str("record_id", req.RecordID).
		Str("decision_status", decision.Status).
		Float64("amount", decision.Amount).
		Bool("requires_review", decision.RequiresReview).
		Msg("Penalty decided")

	return &CheckResponse{
		RecordID:       req.RecordID,
		Status:         decision.Status,
		RuleCode:       decision.RuleCode,
		Amount:         decision.Amount,
		RequiresReview: decision.RequiresReview,
		Evidence:       evidence,
	}, nil
}
