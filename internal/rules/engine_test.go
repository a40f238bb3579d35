// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package rules

import (
	"errors"
	"math"
	"testing"

	"github.com/aerocite/aerocite/internal/models"
)

func f(v float64) *float64 { return &v }

// testRuleSet is the reference rule set: 60 km/h limit, 0.8 review
// threshold, brackets [0,10)->0, [10,20)->50, [20,inf)->150.
func testRuleSet() *RuleSet {
	return &RuleSet{
		SpeedLimitKmh:             60,
		ReviewConfidenceThreshold: 0.8,
		Brackets: []Bracket{
			{FromOverKmh: 0, ToOverKmh: f(10), Amount: 0},
			{FromOverKmh: 10, ToOverKmh: f(20), Amount: 50},
			{FromOverKmh: 20, Amount: 150},
		},
	}
}

func TestEvaluate_NoViolation(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
	}{
		{"well under limit", 6.67},
		{"exactly at limit", 60},
		{"zero speed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Evaluate(testRuleSet(), tt.speed, 1)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			want := models.Decision{
				Status:         models.DecisionNoViolation,
				RuleCode:       models.RuleCodeNoViolation,
				Amount:         0,
				RequiresReview: false,
			}
			if d != want {
				t.Errorf("Evaluate() = %+v, want %+v", d, want)
			}
		})
	}
}

func TestEvaluate_BracketSelection(t *testing.T) {
	tests := []struct {
		name       string
		speed      float64
		wantAmount float64
	}{
		{"over in first bracket", 65, 0},
		{"boundary of second bracket", 70, 50},
		{"inside second bracket", 75.5, 50},
		{"boundary of open bracket", 80, 150},
		{"deep in open bracket", 216, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Evaluate(testRuleSet(), tt.speed, 1)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if d.Amount != tt.wantAmount {
				t.Errorf("amount = %v, want %v", d.Amount, tt.wantAmount)
			}
			if d.RuleCode != models.RuleCodeSpeedLimit {
				t.Errorf("rule code = %q, want SPEED_LIMIT", d.RuleCode)
			}
			if d.Status != models.DecisionApproved {
				t.Errorf("status = %q, want APPROVED", d.Status)
			}
		})
	}
}

func TestEvaluate_ReviewThreshold(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		wantReview bool
		wantStatus string
	}{
		{"confidence above threshold", 1, false, models.DecisionApproved},
		{"confidence at threshold", 0.8, false, models.DecisionApproved},
		{"confidence below threshold", 1.0 / 3.0, true, models.DecisionRequiresReview},
		{"zero confidence", 0, true, models.DecisionRequiresReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Evaluate(testRuleSet(), 216, tt.confidence)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if d.RequiresReview != tt.wantReview {
				t.Errorf("requires_review = %v, want %v", d.RequiresReview, tt.wantReview)
			}
			if d.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", d.Status, tt.wantStatus)
			}
			if d.Amount != 150 {
				t.Errorf("amount = %v, want 150", d.Amount)
			}
		})
	}
}

func TestRuleSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RuleSet)
		wantErr bool
	}{
		{"valid reference set", func(rs *RuleSet) {}, false},
		{"zero speed limit", func(rs *RuleSet) { rs.SpeedLimitKmh = 0 }, true},
		{"negative speed limit", func(rs *RuleSet) { rs.SpeedLimitKmh = -10 }, true},
		{"NaN speed limit", func(rs *RuleSet) { rs.SpeedLimitKmh = math.NaN() }, true},
		{"threshold above one", func(rs *RuleSet) { rs.ReviewConfidenceThreshold = 1.5 }, true},
		{"threshold below zero", func(rs *RuleSet) { rs.ReviewConfidenceThreshold = -0.1 }, true},
		{"no brackets", func(rs *RuleSet) { rs.Brackets = nil }, true},
		{"first bracket not at zero", func(rs *RuleSet) { rs.Brackets[0].FromOverKmh = 5 }, true},
		{"gap between brackets", func(rs *RuleSet) { rs.Brackets[1].FromOverKmh = 12 }, true},
		{"overlap between brackets", func(rs *RuleSet) { rs.Brackets[1].ToOverKmh = f(25) }, true},
		{"bounded last bracket", func(rs *RuleSet) { rs.Brackets[2].ToOverKmh = f(100) }, true},
		{"unbounded middle bracket", func(rs *RuleSet) { rs.Brackets[1].ToOverKmh = nil }, true},
		{"negative amount", func(rs *RuleSet) { rs.Brackets[1].Amount = -50 }, true},
		{"non-finite amount", func(rs *RuleSet) { rs.Brackets[2].Amount = math.Inf(1) }, true},
		{"empty interval", func(rs *RuleSet) { rs.Brackets[0].ToOverKmh = f(0) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := testRuleSet()
			tt.mutate(rs)
			err := rs.Validate()
			if tt.wantErr {
				if !errors.Is(err, models.ErrRuleConfig) {
					t.Errorf("Validate() error = %v, want ErrRuleConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestEvaluate_PartitionCoversEverything(t *testing.T) {
	// For a valid rule set, every over >= 0 matches exactly one bracket.
	rs := testRuleSet()
	for over := 0.0; over < 200; over += 0.37 {
		matches := 0
		for _, b := range rs.Brackets {
			if over >= b.FromOverKmh && (b.ToOverKmh == nil || over < *b.ToOverKmh) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("over=%v matched %d brackets, want exactly 1", over, matches)
		}
	}
}

func TestEvaluate_InvalidRuleSetSurfacesRuleConfig(t *testing.T) {
	rs := testRuleSet()
	rs.Brackets[1].FromOverKmh = 12 // introduce a gap

	_, err := Evaluate(rs, 216, 1)
	if !errors.Is(err, models.ErrRuleConfig) {
		t.Errorf("Evaluate() error = %v, want ErrRuleConfig", err)
	}
}
