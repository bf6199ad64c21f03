package memory

import (
	"context"
	"sort"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

func (s *Store) UpsertGoal(ctx context.Context, goal models.Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}

	defer s.lock(ctx)()
	if _, ok := s.st.users[goal.AnonID]; !ok {
		return apperrors.Integrity("failed to save goal", errMissingUser(goal.AnonID))
	}

	key := goalKey{anonID: goal.AnonID, period: goal.PeriodType, effectiveFrom: goal.EffectiveFrom}
	if existing, ok := s.st.goals[key]; ok {
		existing.TargetSeconds = goal.TargetSeconds
		s.st.goals[key] = existing
		return nil
	}
	goal.CreatedAt = stamp(goal.CreatedAt)
	s.st.goals[key] = goal
	return nil
}

func (s *Store) ActiveGoal(ctx context.Context, anonID string, period models.PeriodType, today string) (*models.Goal, error) {
	defer s.lock(ctx)()

	var best *models.Goal
	for k, g := range s.st.goals {
		if k.anonID != anonID || k.period != period || k.effectiveFrom > today {
			continue
		}
		if best == nil || k.effectiveFrom > best.EffectiveFrom {
			g := g
			best = &g
		}
	}
	return best, nil
}

func (s *Store) ListGoals(ctx context.Context, anonID string) ([]models.Goal, error) {
	defer s.lock(ctx)()

	goals := []models.Goal{}
	for k, g := range s.st.goals {
		if k.anonID == anonID {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool {
		if goals[i].PeriodType != goals[j].PeriodType {
			return goals[i].PeriodType < goals[j].PeriodType
		}
		return goals[i].EffectiveFrom > goals[j].EffectiveFrom
	})
	return goals, nil
}
