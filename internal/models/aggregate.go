package models

// DailyAggregate is the running total of focus seconds for one user on one date.
type DailyAggregate struct {
	AnonID       string `json:"anon_id"`
	Date         string `json:"date"` // YYYY-MM-DD in the configured zone
	TotalSeconds int64  `json:"total_seconds"`
}

// PeriodAggregate is a week or month bucket of daily aggregates. Only
// periods with at least one aggregate row are ever produced.
type PeriodAggregate struct {
	Period       string `json:"period"` // "2025-W36" or "2025-09"
	TotalSeconds int64  `json:"total_seconds"`
	DayCount     int    `json:"day_count"`
}

// DailySummary is the total for a single date, zero when nothing was recorded.
type DailySummary struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"total_seconds"`
}

// PeriodReport is a PeriodAggregate with the per-active-day average.
type PeriodReport struct {
	Period           string `json:"period"`
	TotalSeconds     int64  `json:"total_seconds"`
	ActiveDayCount   int    `json:"active_day_count"`
	AvgSecondsPerDay int64  `json:"avg_seconds_per_day"`
}

// NewPeriodReport derives the average with integer division. A bucket with no
// active days averages to zero.
func NewPeriodReport(agg PeriodAggregate) PeriodReport {
	var avg int64
	if agg.DayCount > 0 {
		avg = agg.TotalSeconds / int64(agg.DayCount)
	}
	return PeriodReport{
		Period:           agg.Period,
		TotalSeconds:     agg.TotalSeconds,
		ActiveDayCount:   agg.DayCount,
		AvgSecondsPerDay: avg,
	}
}
