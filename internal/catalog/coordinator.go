// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package catalog owns the record catalog: it ingests analyzed records,
// drives them through the penalty decision boundary, and applies manual
// inspector reviews.
//
// Record lifecycle: RECEIVED -> SENT_TO_PENALTY -> PENALTY_DECIDED or
// PENALTY_FAILED. A failed record stays in the catalog and can be retried
// by re-ingesting the session or through an explicit run-check.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aerocite/aerocite/internal/logging"
	"github.com/aerocite/aerocite/internal/metrics"
	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/penalty"
	"github.com/aerocite/aerocite/internal/store"
	"github.com/aerocite/aerocite/internal/validation"
)

// Coordinator ingests records and coordinates penalty decisions.
type Coordinator struct {
	records *store.RecordStore
	checker penalty.Checker
}

// NewCoordinator creates a catalog coordinator.
func NewCoordinator(records *store.RecordStore, checker penalty.Checker) *Coordinator {
	return &Coordinator{records: records, checker: checker}
}

// Import ingests a batch of analyzed records and requests a penalty
// decision for each. Returns the number of records whose decision call
// failed; those records are persisted as PENALTY_FAILED and can be
// retried later.
//
// Re-ingesting an already decided record refreshes its analysis fields
// but keeps the existing decision; no new decision call is made.
func (c *Coordinator) Import(ctx context.Context, recs []models.CatalogRecord) (int, error) {
	failed := 0
	for i := range recs {
		retried, err := c.importOne(ctx, &recs[i])
		if err != nil {
			return failed, err
		}
		if retried {
			failed++
		}
	}
	return failed, nil
}

// importOne processes a single record. The returned bool reports whether
// the decision call failed; the record is then persisted as
// PENALTY_FAILED and the batch continues.
func (c *Coordinator) importOne(ctx context.Context, rec *models.CatalogRecord) (bool, error) {
	now := time.Now().UTC()

	existing, err := c.records.Get(ctx, rec.RecordID)
	if err != nil && !isNotFound(err) {
		return false, fmt.Errorf("load record %s: %w", rec.RecordID, err)
	}

	if existing != nil && existing.Status == models.RecordDecided {
		// Already decided: persist the refreshed analysis, keep the
		// decision, and skip the boundary call.
		existing.TakenAt = rec.TakenAt
		existing.Latitude = rec.Latitude
		existing.Longitude = rec.Longitude
		existing.Altitude = rec.Altitude
		existing.DistanceMeters = rec.DistanceMeters
		existing.SpeedKmh = rec.SpeedKmh
		existing.Confidence = rec.Confidence
		existing.UpdatedAt = now
		if err := c.records.Put(ctx, existing); err != nil {
			return false, fmt.Errorf("refresh record %s: %w", rec.RecordID, err)
		}
		logging.Ctx(ctx).Debug().
			Str("record_id", rec.RecordID).
			Msg("Record already decided, analysis refreshed")
		return false, nil
	}

	if existing != nil {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}

	checkErr, err := c.decide(ctx, rec)
	if err != nil {
		return false, err
	}
	return checkErr != nil, nil
}

// decide persists the record as SENT_TO_PENALTY, calls the decision
// boundary, and persists the outcome. The pre-call write guarantees a
// crash between the call and the final write leaves a record whose state
// says a decision may exist upstream.
//
// checkErr reports a failed decision call after the record was persisted
// as PENALTY_FAILED; err reports a storage failure.
func (c *Coordinator) decide(ctx context.Context, rec *models.CatalogRecord) (checkErr, err error) {
	now := time.Now().UTC()

	rec.Status = models.RecordSentToPenalty
	rec.UpdatedAt = now
	if err := c.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist record %s before decision: %w", rec.RecordID, err)
	}

	resp, err := c.checker.Check(ctx, &penalty.CheckRequest{
		RecordID:   rec.RecordID,
		SessionID:  rec.SessionID,
		FileKey:    rec.FileKey,
		DroneID:    rec.DroneID,
		OperatorID: rec.OperatorID,
		TakenAt:    rec.TakenAt,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		SpeedKmh:   rec.SpeedKmh,
		Confidence: rec.Confidence,
	})
	if err != nil {
		rec.Status = models.RecordFailed
		rec.UpdatedAt = time.Now().UTC()
		if putErr := c.records.Put(ctx, rec); putErr != nil {
			return nil, fmt.Errorf("persist failed record %s: %w", rec.RecordID, putErr)
		}
		logging.Ctx(ctx).Warn().Err(err).
			Str("record_id", rec.RecordID).
			Msg("Penalty decision call failed")
		return err, nil
	}

	rec.Status = models.RecordDecided
	rec.Decision = models.Decision{
		Status:         resp.Status,
		RuleCode:       resp.RuleCode,
		Amount:         resp.Amount,
		RequiresReview: resp.RequiresReview,
		Evidence:       resp.Evidence,
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := c.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist decided record %s: %w", rec.RecordID, err)
	}
	return nil, nil
}

// RunCheck re-runs the penalty decision for a stored record. The stored
// telemetry fields are validated first; invalid stored state means the
// record cannot be re-checked until it is re-ingested with good data.
func (c *Coordinator) RunCheck(ctx context.Context, recordID string) (*models.CatalogRecord, error) {
	rec, err := c.records.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	req := penalty.CheckRequest{
		RecordID:   rec.RecordID,
		SessionID:  rec.SessionID,
		FileKey:    rec.FileKey,
		DroneID:    rec.DroneID,
		OperatorID: rec.OperatorID,
		TakenAt:    rec.TakenAt,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		SpeedKmh:   rec.SpeedKmh,
		Confidence: rec.Confidence,
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, fmt.Errorf("%w: stored record fields invalid: %s", models.ErrPreconditionFailed, verr.Error())
	}

	checkErr, err := c.decide(ctx, rec)
	if err != nil {
		return nil, err
	}
	if checkErr != nil {
		// The failure is already durable on the record; surface it so an
		// explicit retry is never silently swallowed.
		return nil, checkErr
	}
	return rec, nil
}

// ReviewRequest carries an inspector's manual review of a record whose
// decision requires review. DecisionStatus and InspectorComment always
// overwrite the stored values; Amount is applied only when present, and
// RuleCode only when present and non-blank. DecisionStatus is deliberately
// not restricted to an enum: the inspector may choose any terminal label.
type ReviewRequest struct {
	DecisionStatus   string   `json:"decision_status" validate:"required"`
	RuleCode         *string  `json:"rule_code,omitempty"`
	Amount           *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	InspectorComment string   `json:"inspector_comment" validate:"required"`
}

// SubmitReview applies a manual review. Only records whose decision is
// REQUIRES_REVIEW may be reviewed.
func (c *Coordinator) SubmitReview(ctx context.Context, recordID string, review *ReviewRequest) (*models.CatalogRecord, error) {
	if verr := validation.ValidateStruct(review); verr != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, verr.Error())
	}

	rec, err := c.records.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if rec.Decision.Status != models.DecisionRequiresReview {
		return nil, fmt.Errorf("%w: record %s has decision status %s, review requires %s",
			models.ErrPreconditionFailed, recordID, rec.Decision.Status, models.DecisionRequiresReview)
	}

	rec.Decision.Status = review.DecisionStatus
	rec.Decision.RequiresReview = false
	if review.RuleCode != nil && *review.RuleCode != "" {
		rec.Decision.RuleCode = *review.RuleCode
	}
	if review.Amount != nil {
		rec.Decision.Amount = *review.Amount
	}
	rec.InspectorComment = review.InspectorComment
	rec.UpdatedAt = time.Now().UTC()

	if err := c.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist reviewed record %s: %w", recordID, err)
	}

	metrics.ReviewsSubmitted.Inc()
	logging.Ctx(ctx).Info().
		Str("record_id", recordID).
		Str("decision_status", rec.Decision.Status).
		Msg("Manual review applied")

	return rec, nil
}

// GetRecord returns a catalog record by ID.
func (c *Coordinator) GetRecord(ctx context.Context, recordID string) (*models.CatalogRecord, error) {
	return c.records.Get(ctx, recordID)
}

// RecordStatus is the compact processing status view of a record.
type RecordStatus struct {
	RecordID       string    `json:"record_id"`
	Status         string    `json:"status"`
	DecisionStatus string    `json:"decision_status,omitempty"`
	RequiresReview bool      `json:"requires_review"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GetRecordStatus returns the processing status of a record.
func (c *Coordinator) GetRecordStatus(ctx context.Context, recordID string) (*RecordStatus, error) {
	rec, err := c.records.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return &RecordStatus{
		RecordID:       rec.RecordID,
		Status:         rec.Status,
		DecisionStatus: rec.Decision.Status,
		RequiresReview: rec.Decision.RequiresReview,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
