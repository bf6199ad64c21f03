package goals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage/memory"
)

// Wednesday 2025-09-03 10:00 in Seoul
var now = time.Date(2025, 9, 3, 1, 0, 0, 0, time.UTC)

func setupEngine(t *testing.T) (*Engine, *memory.Store, *calendar.FixedClock) {
	t.Helper()
	loc, err := calendar.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	store := memory.New()
	clock := calendar.NewFixedClock(now)
	return New(store, calendar.NewResolver(clock, loc)), store, clock
}

func TestSaveGoalDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := setupEngine(t)

	goal, err := engine.SaveGoal(ctx, "A", "daily", 7200, "")
	if err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}
	if goal == nil {
		t.Fatal("SaveGoal returned no active goal")
	}
	if goal.EffectiveFrom != "2025-09-03" || goal.PeriodType != models.PeriodDaily || goal.TargetSeconds != 7200 {
		t.Errorf("goal = %+v", goal)
	}

	// The user is registered as a side effect
	if p, _ := store.GetUser(ctx, "A"); p == nil {
		t.Error("SaveGoal should register the user")
	}
}

func TestSaveGoalValidation(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t)

	tests := []struct {
		name          string
		anonID        string
		periodType    string
		target        int64
		effectiveFrom string
	}{
		{"blank user", " ", "DAILY", 60, ""},
		{"unknown period", "A", "YEARLY", 60, ""},
		{"zero target", "A", "DAILY", 0, ""},
		{"negative target", "A", "WEEKLY", -5, ""},
		{"bad date", "A", "MONTHLY", 60, "2025/09/01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.SaveGoal(ctx, tt.anonID, tt.periodType, tt.target, tt.effectiveFrom)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("SaveGoal error = %v, want validation", err)
			}
		})
	}
}

func TestSaveGoalReturnsActiveGoal(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t)

	if _, err := engine.SaveGoal(ctx, "A", "WEEKLY", 36000, "2025-09-01"); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}

	// A future goal is stored but today's goal stays active
	active, err := engine.SaveGoal(ctx, "A", "WEEKLY", 50000, "2025-10-01")
	if err != nil {
		t.Fatalf("SaveGoal(future) failed: %v", err)
	}
	if active == nil || active.TargetSeconds != 36000 {
		t.Errorf("active goal = %+v, want the 2025-09-01 goal", active)
	}

	// Overwriting the same key changes the target only
	active, err = engine.SaveGoal(ctx, "A", "weekly", 40000, "2025-09-01")
	if err != nil {
		t.Fatalf("SaveGoal(overwrite) failed: %v", err)
	}
	if active == nil || active.TargetSeconds != 40000 || active.EffectiveFrom != "2025-09-01" {
		t.Errorf("active goal = %+v", active)
	}

	all, err := engine.ListGoals(ctx, "A")
	if err != nil || len(all) != 2 {
		t.Errorf("ListGoals = %v, %v; want 2 goals", all, err)
	}
}

func TestSaveGoalIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t)

	first, err := engine.SaveGoal(ctx, "A", "DAILY", 3600, "2025-09-02")
	if err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}
	second, err := engine.SaveGoal(ctx, "A", "DAILY", 3600, "2025-09-02")
	if err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}
	if *first != *second {
		t.Errorf("repeat save changed state: %+v vs %+v", first, second)
	}
}

func TestGetActiveGoal(t *testing.T) {
	ctx := context.Background()
	engine, _, clock := setupEngine(t)

	got, err := engine.GetActiveGoal(ctx, "A", "DAILY")
	if err != nil || got != nil {
		t.Fatalf("GetActiveGoal before save = %v, %v", got, err)
	}

	if _, err := engine.SaveGoal(ctx, "A", "DAILY", 3600, "2025-09-01"); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}
	if _, err := engine.SaveGoal(ctx, "A", "DAILY", 5400, "2025-09-10"); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}

	got, err = engine.GetActiveGoal(ctx, "A", "daily")
	if err != nil || got == nil || got.TargetSeconds != 3600 {
		t.Errorf("GetActiveGoal = %+v, %v; want 3600", got, err)
	}

	clock.Set(time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC))
	got, err = engine.GetActiveGoal(ctx, "A", "DAILY")
	if err != nil || got == nil || got.TargetSeconds != 5400 {
		t.Errorf("GetActiveGoal after supersede = %+v, %v; want 5400", got, err)
	}

	if _, err := engine.GetActiveGoal(ctx, "A", "hourly"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("GetActiveGoal(hourly) error = %v, want validation", err)
	}
}

func TestGetProgressWithoutSessions(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := setupEngine(t)

	if _, err := engine.SaveGoal(ctx, "A", "DAILY", 7200, ""); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}

	progress, err := engine.GetProgress(ctx, "A", "DAILY")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if progress.Target == nil || *progress.Target != 7200 {
		t.Errorf("Target = %v, want 7200", progress.Target)
	}
	if progress.Achieved != 0 {
		t.Errorf("Achieved = %d, want 0", progress.Achieved)
	}
	if progress.Progress == nil || *progress.Progress != 0 {
		t.Errorf("Progress = %v, want 0.0", progress.Progress)
	}
}

func TestGetProgressWindows(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := setupEngine(t)

	if _, err := store.EnsureUser(ctx, "A", now); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	for date, seconds := range map[string]int64{
		"2025-08-31": 1000, // previous week and month
		"2025-09-01": 2000, // Monday
		"2025-09-02": 3000,
		"2025-09-03": 4000, // today
	} {
		if err := store.IncrementDaily(ctx, "A", date, seconds); err != nil {
			t.Fatalf("IncrementDaily failed: %v", err)
		}
	}
	if _, err := engine.SaveGoal(ctx, "A", "WEEKLY", 6000, "2025-09-01"); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}

	tests := []struct {
		periodType   string
		wantPeriod   models.PeriodType
		wantFrom     string
		wantAchieved int64
		wantProgress *float64
	}{
		{"DAILY", models.PeriodDaily, "2025-09-03", 4000, nil},
		{"weekly", models.PeriodWeekly, "2025-09-01", 9000, ptr(1.0)},
		{"Monthly", models.PeriodMonthly, "2025-09-01", 9000, nil},
		{"fortnightly", models.PeriodDaily, "2025-09-03", 4000, nil},
		{"", models.PeriodDaily, "2025-09-03", 4000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.periodType, func(t *testing.T) {
			got, err := engine.GetProgress(ctx, "A", tt.periodType)
			if err != nil {
				t.Fatalf("GetProgress failed: %v", err)
			}
			if got.PeriodType != tt.wantPeriod || got.From != tt.wantFrom || got.To != "2025-09-03" {
				t.Errorf("window = %s [%s, %s]", got.PeriodType, got.From, got.To)
			}
			if got.Achieved != tt.wantAchieved {
				t.Errorf("Achieved = %d, want %d", got.Achieved, tt.wantAchieved)
			}
			switch {
			case tt.wantProgress == nil && (got.Progress != nil || got.Target != nil):
				t.Errorf("expected no goal, got target=%v progress=%v", got.Target, got.Progress)
			case tt.wantProgress != nil && (got.Progress == nil || *got.Progress != *tt.wantProgress):
				t.Errorf("Progress = %v, want %v", got.Progress, *tt.wantProgress)
			}
		})
	}
}

func TestGetProgressPartial(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := setupEngine(t)

	if _, err := engine.SaveGoal(ctx, "A", "DAILY", 8000, ""); err != nil {
		t.Fatalf("SaveGoal failed: %v", err)
	}
	if err := store.IncrementDaily(ctx, "A", "2025-09-03", 2000); err != nil {
		t.Fatalf("IncrementDaily failed: %v", err)
	}

	got, err := engine.GetProgress(ctx, "A", "DAILY")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if got.Progress == nil || *got.Progress != 0.25 {
		t.Errorf("Progress = %v, want 0.25", got.Progress)
	}
}

func TestGetProgressRequiresUser(t *testing.T) {
	engine, _, _ := setupEngine(t)
	if _, err := engine.GetProgress(context.Background(), "", "DAILY"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("GetProgress error = %v, want validation", err)
	}
}

func ptr(f float64) *float64 { return &f }
