package storage

import (
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/models"
)

// PeriodLabel returns the bucket label of a YYYY-MM-DD date.
func PeriodLabel(date string, g models.Granularity) (string, error) {
	day, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return "", err
	}
	if g == models.GranularityMonthly {
		return calendar.MonthLabel(day), nil
	}
	return calendar.ISOWeekLabel(day), nil
}

// Bucket groups date-ordered daily aggregates into week or month buckets,
// keeping the order in which buckets first appear. Days with a zero total
// still count as active, matching a row-count over the table.
func Bucket(days []models.DailyAggregate, g models.Granularity) ([]models.PeriodAggregate, error) {
	var out []models.PeriodAggregate
	index := make(map[string]int)

	for _, d := range days {
		label, err := PeriodLabel(d.Date, g)
		if err != nil {
			return nil, err
		}
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, models.PeriodAggregate{Period: label})
		}
		out[i].TotalSeconds += d.TotalSeconds
		out[i].DayCount++
	}

	return out, nil
}
