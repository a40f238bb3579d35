// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package rules

import (
	"fmt"

	"github.com/aerocite/aerocite/internal/models"
)

// Evaluate produces exactly one decision for the given telemetry input
// against one rule set.
//
// When the speed does not exceed the limit the decision is NO_VIOLATION
// with a zero amount and no bracket lookup occurs. Otherwise the unique
// bracket covering the over-limit value supplies the amount; because a
// valid rule set partitions [0, inf), a missing bracket means the rule set
// is malformed and is reported as models.ErrRuleConfig, not as an input
// error.
func Evaluate(rs *RuleSet, speedKmh, confidence float64) (models.Decision, error) {
	if err := rs.Validate(); err != nil {
		return models.Decision{}, err
	}

	over := speedKmh - rs.SpeedLimitKmh
	if over <= 0 {
		return models.Decision{
			Status:         models.DecisionNoViolation,
			RuleCode:       models.RuleCodeNoViolation,
			Amount:         0,
			RequiresReview: false,
		}, nil
	}

	amount, ok := amountForOver(rs, over)
	if !ok {
		return models.Decision{}, fmt.Errorf("%w: no bracket matched over_kmh=%v", models.ErrRuleConfig, over)
	}

	requiresReview := confidence < rs.ReviewConfidenceThreshold
	status := models.DecisionApproved
	if requiresReview {
		status = models.DecisionRequiresReview
	}

	return models.Decision{
		Status:         status,
		RuleCode:       models.RuleCodeSpeedLimit,
		Amount:         amount,
		RequiresReview: requiresReview,
	}, nil
}

func amountForOver(rs *RuleSet, over float64) (float64, bool) {
	for _, b := range rs.Brackets {
		if over >= b.FromOverKmh && (b.ToOverKmh == nil || over < *b.ToOverKmh) {
			return b.Amount, true
		}
	}
	return 0, false
}
