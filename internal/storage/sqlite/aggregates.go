package sqlite

import (
	"context"
	"fmt"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

func (s *Store) IncrementDaily(ctx context.Context, anonID, date string, seconds int64) error {
	// Single-statement upsert: concurrent closes on the same day both land.
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO daily_aggregates (anon_id, target_date, total_seconds)
		VALUES (?, ?, ?)
		ON CONFLICT(anon_id, target_date)
		DO UPDATE SET total_seconds = daily_aggregates.total_seconds + excluded.total_seconds
	`, anonID, date, seconds)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Integrity("failed to increment aggregate", err)
		}
		return fmt.Errorf("failed to increment aggregate: %w", err)
	}
	return nil
}

func (s *Store) SumRange(ctx context.Context, anonID, from, to string) (int64, error) {
	var total int64
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_seconds), 0)
		FROM daily_aggregates
		WHERE anon_id = ? AND target_date BETWEEN ? AND ?
	`, anonID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum aggregates: %w", err)
	}
	return total, nil
}

func (s *Store) DailyRange(ctx context.Context, anonID, from, to string) ([]models.DailyAggregate, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT anon_id, target_date, total_seconds
		FROM daily_aggregates
		WHERE anon_id = ? AND target_date BETWEEN ? AND ?
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

// BucketRange groups in Go: SQLite's strftime has no ISO week-year.
func (s *Store) BucketRange(ctx context.Context, anonID, from, to string, g models.Granularity) ([]models.PeriodAggregate, error) {
	days, err := s.DailyRange(ctx, anonID, from, to)
	if err != nil {
		return nil, err
	}
	buckets, err := storage.Bucket(days, g)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket aggregates: %w", err)
	}
	if buckets == nil {
		buckets = []models.PeriodAggregate{}
	}
	return buckets, nil
}
