package postgres

import (
	"context"
	"fmt"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

func (s *Store) IncrementDaily(ctx context.Context, anonID, date string, seconds int64) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO daily_aggregates (anon_id, target_date, total_seconds)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (anon_id, target_date)
		DO UPDATE SET total_seconds = daily_aggregates.total_seconds + EXCLUDED.total_seconds
	`, anonID, date, seconds)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperrors.Integrity("failed to increment aggregate", err)
		}
		return fmt.Errorf("failed to increment aggregate: %w", err)
	}
	return nil
}

func (s *Store) SumRange(ctx context.Context, anonID, from, to string) (int64, error) {
	var total int64
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_seconds), 0)::bigint
		FROM daily_aggregates
		WHERE anon_id = $1 AND target_date BETWEEN $2::date AND $3::date
	`, anonID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum aggregates: %w", err)
	}
	return total, nil
}

func (s *Store) DailyRange(ctx context.Context, anonID, from, to string) ([]models.DailyAggregate, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT anon_id, to_char(target_date, 'YYYY-MM-DD'), total_seconds
		FROM daily_aggregates
		WHERE anon_id = $1 AND target_date BETWEEN $2::date AND $3::date
		ORDER BY target_date ASC
	`, anonID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregates: %w", err)
	}
	defer rows.Close()

	days := []models.DailyAggregate{}
	for rows.Next() {
		var d models.DailyAggregate
		if err := rows.Scan(&d.AnonID, &d.Date, &d.TotalSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aggregates: %w", err)
	}
	return days, nil
}

// Week labels use the ISO year (IYYY) so late-December days land in week 1
// of the following year.
var bucketFormats = map[models.Granularity]string{
	models.GranularityWeekly:  `IYYY-"W"IW`,
	models.GranularityMonthly: `YYYY-MM`,
}

func (s *Store) BucketRange(ctx context.Context, anonID, from, to string, g models.Granularity) ([]models.PeriodAggregate, error) {
	format, ok := bucketFormats[g]
	if !ok {
		return nil, apperrors.Validation("invalid granularity %q", g)
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT to_char(target_date, $4) AS period,
		       SUM(total_seconds)::bigint,
		       COUNT(*)
		FROM daily_aggregates
		WHERE anon_id = $1 AND target_date BETWEEN $2::date AND $3::date
		GROUP BY period
		ORDER BY MIN(target_date) ASC
	`, anonID, from, to, format)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket aggregates: %w", err)
	}
	defer rows.Close()

	buckets := []models.PeriodAggregate{}
	for rows.Next() {
		var b models.PeriodAggregate
		if err := rows.Scan(&b.Period, &b.TotalSeconds, &b.DayCount); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate buckets: %w", err)
	}
	return buckets, nil
}
