package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

func (s *Store) UpsertGoal(ctx context.Context, goal models.Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO user_goals (anon_id, period_type, target_seconds, effective_from, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(anon_id, period_type, effective_from)
		DO UPDATE SET target_seconds = excluded.target_seconds
	`, goal.AnonID, string(goal.PeriodType), goal.TargetSeconds, goal.EffectiveFrom, formatTime(goal.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Integrity("failed to save goal", err)
		}
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func scanGoal(row rowScanner) (models.Goal, error) {
	var g models.Goal
	var period, createdAtStr string
	if err := row.Scan(&g.AnonID, &period, &g.TargetSeconds, &g.EffectiveFrom, &createdAtStr); err != nil {
		return models.Goal{}, err
	}
	g.PeriodType = models.PeriodType(period)
	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return models.Goal{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	g.CreatedAt = createdAt
	return g, nil
}

func (s *Store) ActiveGoal(ctx context.Context, anonID string, period models.PeriodType, today string) (*models.Goal, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT anon_id, period_type, target_seconds, effective_from, created_at
		FROM user_goals
		WHERE anon_id = ? AND period_type = ? AND effective_from <= ?
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
		SELECT anon_id, period_type, target_seconds, effective_from, created_at
		FROM user_goals
		WHERE anon_id = ?
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
