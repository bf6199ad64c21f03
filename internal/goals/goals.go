// Package goals stores focus targets and measures progress toward them.
package goals

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/logger"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

type Store interface {
	storage.Transactor
	storage.GoalStore
	storage.AggregateStore
	storage.UserStore
}

type Engine struct {
	store    Store
	resolver *calendar.Resolver
}

func New(store Store, resolver *calendar.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

// SaveGoal upserts the goal keyed by (user, period type, effective-from) and
// returns the goal that is active today after the write. effectiveFrom
// defaults to today. The user is registered if it is new.
func (e *Engine) SaveGoal(ctx context.Context, anonID, periodType string, targetSeconds int64, effectiveFrom string) (*models.Goal, error) {
	period, err := models.ParsePeriodType(periodType)
	if err != nil {
		return nil, err
	}

	today := e.resolver.TodayString()
	if strings.TrimSpace(effectiveFrom) == "" {
		effectiveFrom = today
	} else {
		day, err := e.resolver.ParseDate(effectiveFrom)
		if err != nil {
			return nil, err
		}
		effectiveFrom = day.Format(constants.DateFormat)
	}

	now := e.resolver.Now().Truncate(time.Second)
	goal := models.Goal{
		AnonID:        strings.TrimSpace(anonID),
		PeriodType:    period,
		TargetSeconds: targetSeconds,
		EffectiveFrom: effectiveFrom,
		CreatedAt:     now,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	var active *models.Goal
	err = e.store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := e.store.EnsureUser(ctx, goal.AnonID, now); err != nil {
			return err
		}
		if err := e.store.UpsertGoal(ctx, goal); err != nil {
			return err
		}
		active, err = e.store.ActiveGoal(ctx, goal.AnonID, period, today)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Goal saved", "anon_id", goal.AnonID, "period", period, "target", targetSeconds, "effective_from", effectiveFrom)
	return active, nil
}

// GetActiveGoal returns the goal in force today for the period type, or nil.
func (e *Engine) GetActiveGoal(ctx context.Context, anonID, periodType string) (*models.Goal, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	period, err := models.ParsePeriodType(periodType)
	if err != nil {
		return nil, err
	}
	return e.store.ActiveGoal(ctx, anonID, period, e.resolver.TodayString())
}

// GetProgress sums the current period up to today and compares it with the
// active goal. Unrecognized period types are measured as DAILY.
func (e *Engine) GetProgress(ctx context.Context, anonID, periodType string) (models.GoalProgress, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return models.GoalProgress{}, apperrors.Validation("user id is required")
	}

	period := models.NormalizePeriodType(periodType)
	window := e.resolver.PeriodWindow(period)

	achieved, err := e.store.SumRange(ctx, anonID, window.From, window.To)
	if err != nil {
		return models.GoalProgress{}, err
	}

	progress := models.GoalProgress{
		PeriodType: period,
		From:       window.From,
		To:         window.To,
		Achieved:   achieved,
	}

	goal, err := e.store.ActiveGoal(ctx, anonID, period, window.To)
	if err != nil {
		return models.GoalProgress{}, err
	}
	if goal != nil {
		target := goal.TargetSeconds
		ratio := models.ProgressRatio(achieved, target)
		progress.Target = &target
		progress.Progress = &ratio
	}
	return progress, nil
}

// ListGoals returns every goal the user has saved, including superseded ones.
func (e *Engine) ListGoals(ctx context.Context, anonID string) ([]models.Goal, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	return e.store.ListGoals(ctx, anonID)
}
