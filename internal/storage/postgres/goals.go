package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

const goalColumns = `anon_id, period_type, target_seconds, to_char(effective_from, 'YYYY-MM-DD'), created_at`

func (s *Store) UpsertGoal(ctx context.Context, goal models.Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO user_goals (anon_id, period_type, target_seconds, effective_from, created_at)
		VALUES ($1, $2, $3, $4::date, $5)
		ON CONFLICT (anon_id, period_type, effective_from)
		DO UPDATE SET target_seconds = EXCLUDED.target_seconds
	`, goal.AnonID, string(goal.PeriodType), goal.TargetSeconds, goal.EffectiveFrom, utc(goal.CreatedAt))
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperrors.Integrity("failed to save goal", err)
		}
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func scanGoal(row rowScanner) (models.Goal, error) {
	var g models.Goal
	var period string
	if err := row.Scan(&g.AnonID, &period, &g.TargetSeconds, &g.EffectiveFrom, &g.CreatedAt); err != nil {
		return models.Goal{}, err
	}
	g.PeriodType = models.PeriodType(period)
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}

func (s *Store) ActiveGoal(ctx context.Context, anonID string, period models.PeriodType, today string) (*models.Goal, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM user_goals
		WHERE anon_id = $1 AND period_type = $2 AND effective_from <= $3::date
		ORDER BY effective_from DESC
		LIMIT 1
	`, anonID, string(period), today)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active goal: %w", err)
	}
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, anonID string) ([]models.Goal, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM user_goals
		WHERE anon_id = $1
		ORDER BY period_type ASC, effective_from DESC
	`, anonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return goals, nil
}
