package models

import (
	"strings"
	"time"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
)

// Goal is a target number of focus seconds per period, effective from a date
// onward until a goal with a later EffectiveFrom supersedes it.
type Goal struct {
	AnonID        string     `json:"anon_id"`
	PeriodType    PeriodType `json:"period_type"`
	TargetSeconds int64      `json:"target_seconds"`
	EffectiveFrom string     `json:"effective_from"` // YYYY-MM-DD
	CreatedAt     time.Time  `json:"created_at"`
}

func (g *Goal) Validate() error {
	if strings.TrimSpace(g.AnonID) == "" {
		return apperrors.Validation("anon id cannot be empty")
	}
	if !g.PeriodType.Valid() {
		return apperrors.Validation("invalid period type %q", g.PeriodType)
	}
	if g.TargetSeconds <= 0 {
		return apperrors.Validation("target seconds must be positive, got %d", g.TargetSeconds)
	}
	if _, err := time.Parse("2006-01-02", g.EffectiveFrom); err != nil {
		return apperrors.Validation("invalid effective-from date %q (expected YYYY-MM-DD)", g.EffectiveFrom)
	}
	return nil
}

// GoalProgress reports achievement independently of whether a goal exists:
// Target and Progress are nil when there is no active goal.
type GoalProgress struct {
	PeriodType PeriodType `json:"period_type"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Target     *int64     `json:"target_seconds"`
	Achieved   int64      `json:"achieved_seconds"`
	Progress   *float64   `json:"progress"`
}

// ProgressRatio is achieved/target capped to [0, 1]. A non-positive target
// yields 0.
func ProgressRatio(achieved, target int64) float64 {
	if target <= 0 || achieved <= 0 {
		return 0
	}
	if achieved >= target {
		return 1
	}
	return float64(achieved) / float64(target)
}
