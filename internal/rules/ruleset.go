// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package rules holds the externally supplied rule set and the evaluation
// engine that turns a speed-over-limit value into a penalty decision.
//
// The engine is stateless: it receives the active RuleSet as an explicit
// argument and never reads it from storage itself, so the caller controls
// exactly which version of the rules a decision is made against.
package rules

import (
	"fmt"
	"math"
	"sort"

	"github.com/aerocite/aerocite/internal/models"
)

// ActiveRuleSetName is the fixed logical name the active rule set is stored
// under. Upload/versioning of rule documents is handled outside the engine.
const ActiveRuleSetName = "active"

// Bracket maps a half-open interval [FromOverKmh, ToOverKmh) of speed over
// the limit to a fixed monetary amount. A nil ToOverKmh means the interval
// is open-ended; exactly the last bracket of a valid rule set has it.
type Bracket struct {
	FromOverKmh float64  `json:"from_over_kmh"`
	ToOverKmh   *float64 `json:"to_over_kmh,omitempty"`
	Amount      float64  `json:"amount"`
}

// RuleSet is the externally supplied violation rule configuration: a speed
// limit, a review-confidence threshold, and an ordered bracket table that
// partitions [0, inf) of speed-over-limit into fine amounts.
type RuleSet struct {
	SpeedLimitKmh             float64   `json:"speed_limit_kmh"`
	ReviewConfidenceThreshold float64   `json:"review_confidence_threshold"`
	Brackets                  []Bracket `json:"brackets"`
}

// Validate checks the structural invariants a rule set must satisfy before
// it may become active: positive finite speed limit, threshold in [0,1],
// and brackets that form a contiguous gap-free partition of [0, inf) with
// exactly the last bracket unbounded. Any violation is a
// models.ErrRuleConfig.
func (rs *RuleSet) Validate() error {
	if !isFinite(rs.SpeedLimitKmh) || rs.SpeedLimitKmh <= 0 {
		return fmt.Errorf("%w: speed_limit_kmh must be finite and > 0, got %v", models.ErrRuleConfig, rs.SpeedLimitKmh)
	}
	if !isFinite(rs.ReviewConfidenceThreshold) || rs.ReviewConfidenceThreshold < 0 || rs.ReviewConfidenceThreshold > 1 {
		return fmt.Errorf("%w: review_confidence_threshold must be in [0,1], got %v", models.ErrRuleConfig, rs.ReviewConfidenceThreshold)
	}
	if len(rs.Brackets) == 0 {
		return fmt.Errorf("%w: at least one bracket is required", models.ErrRuleConfig)
	}

	sorted := make([]Bracket, len(rs.Brackets))
	copy(sorted, rs.Brackets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FromOverKmh < sorted[j].FromOverKmh })

	if sorted[0].FromOverKmh != 0 {
		return fmt.Errorf("%w: brackets must start at 0, first from_over_kmh=%v", models.ErrRuleConfig, sorted[0].FromOverKmh)
	}

	for i, b := range sorted {
		if !isFinite(b.FromOverKmh) || b.FromOverKmh < 0 {
			return fmt.Errorf("%w: bracket[%d]: from_over_kmh must be finite and >= 0", models.ErrRuleConfig, i)
		}
		if !isFinite(b.Amount) || b.Amount < 0 {
			return fmt.Errorf("%w: bracket[%d]: amount must be finite and >= 0", models.ErrRuleConfig, i)
		}

		last := i == len(sorted)-1
		if last {
			if b.ToOverKmh != nil {
				return fmt.Errorf("%w: last bracket must have an open upper bound", models.ErrRuleConfig)
			}
			continue
		}

		if b.ToOverKmh == nil {
			return fmt.Errorf("%w: bracket[%d]: only the last bracket may omit to_over_kmh", models.ErrRuleConfig, i)
		}
		if !isFinite(*b.ToOverKmh) || *b.ToOverKmh <= b.FromOverKmh {
			return fmt.Errorf("%w: bracket[%d]: to_over_kmh must be finite and > from_over_kmh", models.ErrRuleConfig, i)
		}
		if next := sorted[i+1].FromOverKmh; *b.ToOverKmh != next {
			return fmt.Errorf("%w: brackets have a gap or overlap between %v and %v", models.ErrRuleConfig, *b.ToOverKmh, next)
		}
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
