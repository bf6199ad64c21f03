package reports

import (
	"context"
	"strings"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

// Report is a periodic report together with the window it covers.
// Periods without any recorded day are absent rather than zero-filled.
type Report struct {
	Granularity models.Granularity    `json:"granularity"`
	From        string                `json:"from"`
	To          string                `json:"to"`
	Periods     []models.PeriodReport `json:"periods"`
}

type Engine struct {
	store    storage.AggregateStore
	resolver *calendar.Resolver
}

func New(store storage.AggregateStore, resolver *calendar.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

// GetDailySummary returns the user's total for date, or today when date is
// empty. Dates without a recorded aggregate report zero.
func (e *Engine) GetDailySummary(ctx context.Context, anonID, date string) (models.DailySummary, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return models.DailySummary{}, apperrors.Validation("user id is required")
	}

	if strings.TrimSpace(date) == "" {
		date = e.resolver.TodayString()
	} else {
		day, err := e.resolver.ParseDate(date)
		if err != nil {
			return models.DailySummary{}, err
		}
		date = day.Format(constants.DateFormat)
	}

	total, err := e.store.SumRange(ctx, anonID, date, date)
	if err != nil {
		return models.DailySummary{}, err
	}
	return models.DailySummary{Date: date, TotalSeconds: total}, nil
}

// GetPeriodicReport buckets the last count weeks or months, ending today.
func (e *Engine) GetPeriodicReport(ctx context.Context, anonID, granularity string, count int) (Report, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return Report{}, apperrors.Validation("user id is required")
	}
	g, err := models.ParseGranularity(granularity)
	if err != nil {
		return Report{}, err
	}

	window := e.resolver.RelativeWindow(g, count)
	buckets, err := e.store.BucketRange(ctx, anonID, window.From, window.To, g)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Granularity: g,
		From:        window.From,
		To:          window.To,
		Periods:     make([]models.PeriodReport, 0, len(buckets)),
	}
	for _, b := range buckets {
		report.Periods = append(report.Periods, models.NewPeriodReport(b))
	}
	return report, nil
}
