// Package calendar turns the clock into zone-anchored calendar dates and
// resolves period types and relative period counts into inclusive date
// windows. All dates are YYYY-MM-DD strings in the resolver's zone.
package calendar

import (
	"strings"
	"time"

	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

// Window is an inclusive date range.
type Window struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Resolver struct {
	clock Clock
	loc   *time.Location
}

func NewResolver(clock Clock, loc *time.Location) *Resolver {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{clock: clock, loc: loc}
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant in the resolver's zone.
func (r *Resolver) Now() time.Time {
	return r.clock.Now().In(r.loc)
}

// Today returns midnight of the current calendar day in the resolver's zone.
func (r *Resolver) Today() time.Time {
	return midnight(r.Now())
}

// TodayString is Today formatted as YYYY-MM-DD.
func (r *Resolver) TodayString() string {
	return r.Today().Format(constants.DateFormat)
}

// DateOf returns the calendar date an instant falls on in the resolver's zone.
func (r *Resolver) DateOf(t time.Time) string {
	return t.In(r.loc).Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD date as midnight in the resolver's zone.
func (r *Resolver) ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc), nil
}

// DayBounds returns [start, end) of the given date in the resolver's zone.
func (r *Resolver) DayBounds(date string) (time.Time, time.Time, error) {
	start, err := r.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// WindowStart returns the first day of the period containing day:
// the day itself for DAILY, its ISO Monday for WEEKLY, the first of the
// month for MONTHLY. Unknown period types behave like DAILY.
func WindowStart(p models.PeriodType, day time.Time) time.Time {
	day = midnight(day)
	switch p {
	case models.PeriodWeekly:
		return mondayOf(day)
	case models.PeriodMonthly:
		return firstOfMonth(day)
	default:
		return day
	}
}

// PeriodWindow is [WindowStart(p, today), today].
func (r *Resolver) PeriodWindow(p models.PeriodType) Window {
	today := r.Today()
	return window(WindowStart(p, today), today)
}

// ClampCount bounds a caller supplied period count. Non-positive counts take
// the default; counts above the per-granularity maximum are capped.
func ClampCount(g models.Granularity, count int) int {
	if count <= 0 {
		count = constants.DefaultPeriodCount
	}
	limit := constants.MaxWeeks
	if g == models.GranularityMonthly {
		limit = constants.MaxMonths
	}
	if count > limit {
		count = limit
	}
	return count
}

// RelativeWindow resolves "the last count weeks/months" ending today. The
// current partial period counts as one of them.
func (r *Resolver) RelativeWindow(g models.Granularity, count int) Window {
	count = ClampCount(g, count)
	today := r.Today()

	var from time.Time
	switch g {
	case models.GranularityMonthly:
		from = firstOfMonth(today).AddDate(0, -(count - 1), 0)
	default:
		from = mondayOf(today).AddDate(0, 0, -7*(count-1))
	}
	return window(from, today)
}

func window(from, to time.Time) Window {
	if from.After(to) {
		from = to
	}
	return Window{
		From: from.Format(constants.DateFormat),
		To:   to.Format(constants.DateFormat),
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func firstOfMonth(day time.Time) time.Time {
	y, m, _ := day.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, day.Location())
}
