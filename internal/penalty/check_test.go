// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package penalty

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/rules"
	"github.com/aerocite/aerocite/internal/store"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return db
}

func ptr(v float64) *float64 { return &v }

func testRuleSet() rules.RuleSet {
	return rules.RuleSet{
		SpeedLimitKmh:             60,
		ReviewConfidenceThreshold: 0.8,
		Brackets: []rules.Bracket{
			{FromOverKmh: 0, ToOverKmh: ptr(10.0), Amount: 0},
			{FromOverKmh: 10, ToOverKmh: ptr(20.0), Amount: 50},
			{FromOverKmh: 20, ToOverKmh: nil, Amount: 150},
		},
	}
}

func newTestService(t *testing.T) (*Service, *store.RuleSetStore) {
	t.Helper()
	db := openTestDB(t)
	ruleSets := store.NewRuleSetStore(db)
	if _, err := ruleSets.PutActive(context.Background(), testRuleSet(), "abc123"); err != nil {
		t.Fatalf("put active rule set: %v", err)
	}
	return NewService(ruleSets), ruleSets
}

func validRequest() *CheckRequest {
	return &CheckRequest{
		RecordID:   "sess-1:IMG_0001.jpg",
		SessionID:  "sess-1",
		FileKey:    "IMG_0001.jpg",
		DroneID:    "drone-42",
		OperatorID: "op-7",
		TakenAt:    "2026-03-01T10:00:00Z",
		Latitude:   55.75,
		Longitude:  37.61,
		SpeedKmh:   75,
		Confidence: 1,
	}
}

func TestCheckDecisions(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name           string
		speedKmh       float64
		confidence     float64
		wantStatus     string
		wantRuleCode   string
		wantAmount     float64
		wantNeedReview bool
	}{
		{
			name:         "under the limit",
			speedKmh:     50,
			confidence:   1,
			wantStatus:   models.DecisionNoViolation,
			wantRuleCode: models.RuleCodeNoViolation,
			wantAmount:   0,
		},
		{
			name:         "exactly at the limit",
			speedKmh:     60,
			confidence:   1,
			wantStatus:   models.DecisionNoViolation,
			wantRuleCode: models.RuleCodeNoViolation,
			wantAmount:   0,
		},
		{
			name:         "first bracket",
			speedKmh:     65,
			confidence:   1,
			wantStatus:   models.DecisionApproved,
			wantRuleCode: models.RuleCodeSpeedLimit,
			wantAmount:   0,
		},
		{
			name:         "middle bracket",
			speedKmh:     75,
			confidence:   1,
			wantStatus:   models.DecisionApproved,
			wantRuleCode: models.RuleCodeSpeedLimit,
			wantAmount:   50,
		},
		{
			name:         "open-ended bracket",
			speedKmh:     95,
			confidence:   1,
			wantStatus:   models.DecisionApproved,
			wantRuleCode: models.RuleCodeSpeedLimit,
			wantAmount:   150,
		},
		{
			name:           "low confidence requires review",
			speedKmh:       75,
			confidence:     0.5,
			wantStatus:     models.DecisionRequiresReview,
			wantRuleCode:   models.RuleCodeSpeedLimit,
			wantAmount:     50,
			wantNeedReview: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.SpeedKmh = tt.speedKmh
			req.Confidence = tt.confidence

			resp, err := svc.Check(context.Background(), req)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}

			if resp.RecordID != req.RecordID {
				t.Errorf("RecordID = %q, want %q", resp.RecordID, req.RecordID)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.RuleCode != tt.wantRuleCode {
				t.Errorf("RuleCode = %q, want %q", resp.RuleCode, tt.wantRuleCode)
			}
			if resp.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", resp.Amount, tt.wantAmount)
			}
			if resp.RequiresReview != tt.wantNeedReview {
				t.Errorf("RequiresReview = %v, want %v", resp.RequiresReview, tt.wantNeedReview)
			}
		})
	}
}

func TestCheckEvidenceDocument(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Check(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	for _, want := range []string{
		`"record_id":"sess-1:IMG_0001.jpg"`,
		`"file_key":"IMG_0001.jpg"`,
		`"drone_id":"drone-42"`,
		`"operator_id":"op-7"`,
		`"taken_at":"2026-03-01T10:00:00Z"`,
		`"latitude":55.75`,
		`"longitude":37.61`,
		`"speed_kmh":75`,
		`"speed_limit_kmh":60`,
		`"over_kmh":15`,
		`"decision_status":"APPROVED"`,
		`"rule_code":"SPEED_LIMIT"`,
		`"requires_review":false`,
		`"amount":50`,
	} {
		if !strings.Contains(resp.Evidence, want) {
			t.Errorf("Evidence missing %s: %s", want, resp.Evidence)
		}
	}
}

func TestCheckInvalidRequest(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*CheckRequest)
	}{
		{"missing record ID", func(r *CheckRequest) { r.RecordID = "" }},
		{"missing file key", func(r *CheckRequest) { r.FileKey = "" }},
		{"missing taken at", func(r *CheckRequest) { r.TakenAt = "" }},
		{"latitude out of range", func(r *CheckRequest) { r.Latitude = 91 }},
		{"longitude out of range", func(r *CheckRequest) { r.Longitude = 181 }},
		{"negative speed", func(r *CheckRequest) { r.SpeedKmh = -5 }},
		{"confidence above one", func(r *CheckRequest) { r.Confidence = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.Check(context.Background(), req)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Check() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCheckNoActiveRuleSet(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(store.NewRuleSetStore(db))

	_, err := svc.Check(context.Background(), validRequest())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Check() error = %v, want ErrNotFound", err)
	}
}

func TestCheckRuleSetSwapTakesEffectImmediately(t *testing.T) {
	svc, ruleSets := newTestService(t)

	req := validRequest() // 75 km/h, 15 over
	resp, err := svc.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resp.Amount != 50 {
		t.Fatalf("Amount = %v, want 50", resp.Amount)
	}

	// Double every bracket amount and swap the active rule set.
	rs := testRuleSet()
	for i := range rs.Brackets {
		rs.Brackets[i].Amount *= 2
	}
	if _, err := ruleSets.PutActive(context.Background(), rs, "def456"); err != nil {
		t.Fatalf("swap active rule set: %v", err)
	}

	resp, err = svc.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check() after swap error = %v", err)
	}
	if resp.Amount != 100 {
		t.Errorf("Amount after swap = %v, want 100", resp.Amount)
	}
}
