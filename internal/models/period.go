package models

import (
	"strings"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
)

// PeriodType is the cadence a goal is measured over.
type PeriodType string

const (
	PeriodDaily   PeriodType = "DAILY"
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodMonthly PeriodType = "MONTHLY"
)

// PeriodTypes lists every accepted period type in display order.
var PeriodTypes = []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly}

func (p PeriodType) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// ParsePeriodType accepts a period type in any case and rejects anything else.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", apperrors.Validation("invalid period type %q (expected DAILY, WEEKLY or MONTHLY)", s)
	}
	return p, nil
}

// NormalizePeriodType is the lenient variant used for progress reads:
// unrecognized values fall back to DAILY.
func NormalizePeriodType(s string) PeriodType {
	p, err := ParsePeriodType(s)
	if err != nil {
		return PeriodDaily
	}
	return p
}

// Granularity selects how daily aggregates are grouped in reports.
type Granularity string

const (
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityWeekly, GranularityMonthly:
		return g, nil
	}
	return "", apperrors.Validation("invalid granularity %q (expected weekly or monthly)", s)
}

// RankingWindow is the date range a leaderboard is computed over.
type RankingWindow string

const (
	WindowWeekly  RankingWindow = "weekly"
	WindowOverall RankingWindow = "overall"
)

func ParseRankingWindow(s string) (RankingWindow, error) {
	switch w := RankingWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowWeekly, WindowOverall:
		return w, nil
	}
	return "", apperrors.Validation("invalid ranking window %q (expected weekly or overall)", s)
}
