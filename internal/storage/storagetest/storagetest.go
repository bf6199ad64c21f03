// Package storagetest is a backend-agnostic conformance suite for
// storage.Provider implementations.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

// Factory returns a fresh, initialized and empty store.
type Factory func(t *testing.T) storage.Provider

// Base is the reference instant used by the suite: Monday 2025-09-01 09:00 UTC.
var Base = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

// Run executes every conformance test against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Provider)
	}{
		{"EnsureUser", testEnsureUser},
		{"OpenAndFindSession", testOpenAndFindSession},
		{"SingleOpenSession", testSingleOpenSession},
		{"OpenUnknownUser", testOpenUnknownUser},
		{"CloseSession", testCloseSession},
		{"CloseIsCompareAndSet", testCloseIsCompareAndSet},
		{"SessionsStartedBetween", testSessionsStartedBetween},
		{"IncrementAndSum", testIncrementAndSum},
		{"IncrementUnknownUser", testIncrementUnknownUser},
		{"BucketRange", testBucketRange},
		{"Goals", testGoals},
		{"Nicknames", testNicknames},
		{"TopTotals", testTopTotals},
		{"TransactionRollback", testTransactionRollback},
		{"ConcurrentIncrements", testConcurrentIncrements},
		{"ConcurrentOpens", testConcurrentOpens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func mustUser(t *testing.T, s storage.Provider, anonID string) {
	t.Helper()
	if _, err := s.EnsureUser(context.Background(), anonID, Base); err != nil {
		t.Fatalf("EnsureUser(%s) failed: %v", anonID, err)
	}
}

func mustOpen(t *testing.T, s storage.Provider, anonID string, at time.Time) models.FocusSession {
	t.Helper()
	sess, err := s.OpenSession(context.Background(), anonID, at)
	if err != nil {
		t.Fatalf("OpenSession(%s) failed: %v", anonID, err)
	}
	return sess
}

func mustIncrement(t *testing.T, s storage.Provider, anonID, date string, seconds int64) {
	t.Helper()
	if err := s.IncrementDaily(context.Background(), anonID, date, seconds); err != nil {
		t.Fatalf("IncrementDaily(%s, %s) failed: %v", anonID, date, err)
	}
}

func testEnsureUser(t *testing.T, s storage.Provider) {
	ctx := context.Background()

	created, err := s.EnsureUser(ctx, "user-1", Base)
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if !created {
		t.Error("first EnsureUser should create the user")
	}

	created, err = s.EnsureUser(ctx, "user-1", Base.Add(time.Hour))
	if err != nil {
		t.Fatalf("second EnsureUser failed: %v", err)
	}
	if created {
		t.Error("second EnsureUser should be a no-op")
	}

	p, err := s.GetUser(ctx, "user-1")
	if err != nil || p == nil {
		t.Fatalf("GetUser = %v, %v", p, err)
	}
	if !p.CreatedAt.Equal(Base) {
		t.Errorf("CreatedAt = %s, want %s", p.CreatedAt, Base)
	}
	if p.Nickname != nil || p.NicknameTag != nil {
		t.Errorf("new user should have no nickname, got %+v", p)
	}

	missing, err := s.GetUser(ctx, "nobody")
	if err != nil || missing != nil {
		t.Errorf("GetUser(nobody) = %v, %v; want nil, nil", missing, err)
	}
}

func testOpenAndFindSession(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")

	open, err := s.FindOpenSession(ctx, "user-1")
	if err != nil || open != nil {
		t.Fatalf("FindOpenSession before start = %v, %v", open, err)
	}

	sess := mustOpen(t, s, "user-1", Base.Add(500*time.Millisecond))
	if sess.ID == 0 {
		t.Error("session id should be assigned")
	}
	if !sess.IsOpen() || sess.DurationSec != nil {
		t.Errorf("new session should be open: %+v", sess)
	}
	if !sess.StartedAt.Equal(Base) {
		t.Errorf("StartedAt = %s, want whole-second %s", sess.StartedAt, Base)
	}

	open, err = s.FindOpenSession(ctx, "user-1")
	if err != nil || open == nil || open.ID != sess.ID {
		t.Fatalf("FindOpenSession = %v, %v; want session %d", open, err, sess.ID)
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil || got == nil || got.AnonID != "user-1" {
		t.Errorf("GetSession = %v, %v", got, err)
	}

	missing, err := s.GetSession(ctx, sess.ID+1000)
	if err != nil || missing != nil {
		t.Errorf("GetSession(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func testSingleOpenSession(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	mustUser(t, s, "user-2")

	first := mustOpen(t, s, "user-1", Base)

	_, err := s.OpenSession(ctx, "user-1", Base.Add(time.Minute))
	if !errors.Is(err, apperrors.ErrAlreadyOpen) {
		t.Fatalf("second OpenSession error = %v, want ErrAlreadyOpen", err)
	}

	// Other users are unaffected
	mustOpen(t, s, "user-2", Base)

	// Once closed, a new session may open
	if _, closed, err := s.CloseSession(ctx, first.ID, Base.Add(time.Minute)); err != nil || !closed {
		t.Fatalf("CloseSession = %v, %v", closed, err)
	}
	mustOpen(t, s, "user-1", Base.Add(2*time.Minute))
}

func testOpenUnknownUser(t *testing.T, s storage.Provider) {
	_, err := s.OpenSession(context.Background(), "ghost", Base)
	if !errors.Is(err, apperrors.ErrIntegrity) {
		t.Fatalf("OpenSession(ghost) error = %v, want ErrIntegrity", err)
	}
}

func testCloseSession(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	sess := mustOpen(t, s, "user-1", Base)

	closedSess, closed, err := s.CloseSession(ctx, sess.ID, Base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	if !closed {
		t.Fatal("CloseSession should report closed")
	}
	if closedSess.Seconds() != 1800 {
		t.Errorf("duration = %d, want 1800", closedSess.Seconds())
	}
	if closedSess.EndedAt == nil || !closedSess.EndedAt.Equal(Base.Add(30*time.Minute)) {
		t.Errorf("EndedAt = %v", closedSess.EndedAt)
	}

	// Second close is a no-op and leaves the record untouched
	_, closed, err = s.CloseSession(ctx, sess.ID, Base.Add(time.Hour))
	if err != nil || closed {
		t.Errorf("second CloseSession = %v, %v; want false, nil", closed, err)
	}
	got, _ := s.GetSession(ctx, sess.ID)
	if got == nil || got.Seconds() != 1800 {
		t.Errorf("closed session changed: %+v", got)
	}

	_, closed, err = s.CloseSession(ctx, 999999, Base)
	if err != nil || closed {
		t.Errorf("CloseSession(unknown) = %v, %v; want false, nil", closed, err)
	}
}

func testCloseIsCompareAndSet(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	sess := mustOpen(t, s, "user-1", Base)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, closed, err := s.CloseSession(ctx, sess.ID, Base.Add(time.Minute))
			if err != nil {
				t.Errorf("CloseSession failed: %v", err)
				return
			}
			if closed {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("%d concurrent closes succeeded, want exactly 1", successes)
	}
}

func testSessionsStartedBetween(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	mustUser(t, s, "user-2")

	starts := []time.Time{
		Base.Add(2 * time.Hour),
		Base,
		Base.Add(24 * time.Hour), // next day, excluded
	}
	for _, at := range starts {
		sess := mustOpen(t, s, "user-1", at)
		if _, _, err := s.CloseSession(ctx, sess.ID, at.Add(10*time.Minute)); err != nil {
			t.Fatalf("CloseSession failed: %v", err)
		}
	}
	mustOpen(t, s, "user-2", Base.Add(time.Hour))

	from := Base.Add(-9 * time.Hour)
	got, err := s.SessionsStartedBetween(ctx, "user-1", from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("SessionsStartedBetween failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if !got[0].StartedAt.Equal(Base) || !got[1].StartedAt.Equal(Base.Add(2*time.Hour)) {
		t.Errorf("sessions not ordered by start: %s, %s", got[0].StartedAt, got[1].StartedAt)
	}

	none, err := s.SessionsStartedBetween(ctx, "nobody", from, from.Add(24*time.Hour))
	if err != nil || len(none) != 0 {
		t.Errorf("SessionsStartedBetween(nobody) = %v, %v", none, err)
	}
}

func testIncrementAndSum(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	mustUser(t, s, "user-2")

	total, err := s.SumRange(ctx, "user-1", "2025-09-01", "2025-09-30")
	if err != nil || total != 0 {
		t.Fatalf("SumRange on empty store = %d, %v; want 0, nil", total, err)
	}

	mustIncrement(t, s, "user-1", "2025-09-01", 1800)
	mustIncrement(t, s, "user-1", "2025-09-01", 600)
	mustIncrement(t, s, "user-1", "2025-09-03", 100)
	mustIncrement(t, s, "user-1", "2025-10-01", 5)
	mustIncrement(t, s, "user-2", "2025-09-01", 999)

	tests := []struct {
		from, to string
		want     int64
	}{
		{"2025-09-01", "2025-09-01", 2400},
		{"2025-09-01", "2025-09-03", 2500},
		{"2025-09-02", "2025-09-02", 0},
		{"2025-09-01", "2025-10-01", 2505},
	}
	for _, tt := range tests {
		got, err := s.SumRange(ctx, "user-1", tt.from, tt.to)
		if err != nil {
			t.Fatalf("SumRange failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("SumRange(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}

	days, err := s.DailyRange(ctx, "user-1", "2025-09-01", "2025-09-30")
	if err != nil {
		t.Fatalf("DailyRange failed: %v", err)
	}
	if len(days) != 2 || days[0].Date != "2025-09-01" || days[0].TotalSeconds != 2400 || days[1].Date != "2025-09-03" {
		t.Errorf("DailyRange = %+v", days)
	}
}

func testIncrementUnknownUser(t *testing.T, s storage.Provider) {
	err := s.IncrementDaily(context.Background(), "ghost", "2025-09-01", 10)
	if !errors.Is(err, apperrors.ErrIntegrity) {
		t.Errorf("IncrementDaily(ghost) error = %v, want ErrIntegrity", err)
	}
}

func testBucketRange(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")

	mustIncrement(t, s, "user-1", "2024-12-30", 100) // ISO 2025-W01
	mustIncrement(t, s, "user-1", "2025-01-02", 200) // 2025-W01
	mustIncrement(t, s, "user-1", "2025-01-20", 300) // 2025-W04
	mustIncrement(t, s, "user-1", "2025-02-01", 400) // 2025-W05

	weeks, err := s.BucketRange(ctx, "user-1", "2024-12-01", "2025-02-28", models.GranularityWeekly)
	if err != nil {
		t.Fatalf("BucketRange weekly failed: %v", err)
	}
	wantWeeks := []models.PeriodAggregate{
		{Period: "2025-W01", TotalSeconds: 300, DayCount: 2},
		{Period: "2025-W04", TotalSeconds: 300, DayCount: 1},
		{Period: "2025-W05", TotalSeconds: 400, DayCount: 1},
	}
	assertBuckets(t, weeks, wantWeeks)

	months, err := s.BucketRange(ctx, "user-1", "2024-12-01", "2025-02-28", models.GranularityMonthly)
	if err != nil {
		t.Fatalf("BucketRange monthly failed: %v", err)
	}
	wantMonths := []models.PeriodAggregate{
		{Period: "2024-12", TotalSeconds: 100, DayCount: 1},
		{Period: "2025-01", TotalSeconds: 500, DayCount: 2},
		{Period: "2025-02", TotalSeconds: 400, DayCount: 1},
	}
	assertBuckets(t, months, wantMonths)

	empty, err := s.BucketRange(ctx, "user-1", "2026-01-01", "2026-12-31", models.GranularityMonthly)
	if err != nil || len(empty) != 0 {
		t.Errorf("BucketRange on empty range = %+v, %v", empty, err)
	}
}

func assertBuckets(t *testing.T, got, want []models.PeriodAggregate) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d buckets %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func testGoals(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")

	goal := func(period models.PeriodType, target int64, from string) models.Goal {
		return models.Goal{AnonID: "user-1", PeriodType: period, TargetSeconds: target, EffectiveFrom: from, CreatedAt: Base}
	}

	active, err := s.ActiveGoal(ctx, "user-1", models.PeriodDaily, "2025-09-10")
	if err != nil || active != nil {
		t.Fatalf("ActiveGoal before save = %v, %v", active, err)
	}

	for _, g := range []models.Goal{
		goal(models.PeriodDaily, 3600, "2025-09-01"),
		goal(models.PeriodDaily, 7200, "2025-09-05"),
		goal(models.PeriodDaily, 9000, "2025-09-20"), // future
		goal(models.PeriodWeekly, 36000, "2025-09-01"),
	} {
		if err := s.UpsertGoal(ctx, g); err != nil {
			t.Fatalf("UpsertGoal(%+v) failed: %v", g, err)
		}
	}

	tests := []struct {
		period models.PeriodType
		today  string
		want   int64
	}{
		{models.PeriodDaily, "2025-09-01", 3600},
		{models.PeriodDaily, "2025-09-04", 3600},
		{models.PeriodDaily, "2025-09-10", 7200},
		{models.PeriodDaily, "2025-09-20", 9000},
		{models.PeriodWeekly, "2025-09-10", 36000},
	}
	for _, tt := range tests {
		got, err := s.ActiveGoal(ctx, "user-1", tt.period, tt.today)
		if err != nil || got == nil {
			t.Fatalf("ActiveGoal(%s, %s) = %v, %v", tt.period, tt.today, got, err)
		}
		if got.TargetSeconds != tt.want {
			t.Errorf("ActiveGoal(%s, %s) target = %d, want %d", tt.period, tt.today, got.TargetSeconds, tt.want)
		}
	}

	before, err := s.ActiveGoal(ctx, "user-1", models.PeriodDaily, "2025-08-31")
	if err != nil || before != nil {
		t.Errorf("ActiveGoal before first effective date = %v, %v", before, err)
	}
	monthly, err := s.ActiveGoal(ctx, "user-1", models.PeriodMonthly, "2025-09-10")
	if err != nil || monthly != nil {
		t.Errorf("ActiveGoal(MONTHLY) = %v, %v; want nil", monthly, err)
	}

	// Same key overwrites the target only
	if err := s.UpsertGoal(ctx, goal(models.PeriodDaily, 1200, "2025-09-05")); err != nil {
		t.Fatalf("UpsertGoal overwrite failed: %v", err)
	}
	got, _ := s.ActiveGoal(ctx, "user-1", models.PeriodDaily, "2025-09-10")
	if got == nil || got.TargetSeconds != 1200 || got.EffectiveFrom != "2025-09-05" {
		t.Errorf("overwritten goal = %+v", got)
	}

	all, err := s.ListGoals(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListGoals returned %d goals, want 4", len(all))
	}

	if err := s.UpsertGoal(ctx, goal(models.PeriodDaily, 0, "2025-09-01")); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("UpsertGoal(target=0) error = %v, want validation", err)
	}
	ghost := goal(models.PeriodDaily, 60, "2025-09-01")
	ghost.AnonID = "ghost"
	if err := s.UpsertGoal(ctx, ghost); !errors.Is(err, apperrors.ErrIntegrity) {
		t.Errorf("UpsertGoal(ghost) error = %v, want ErrIntegrity", err)
	}
}

func testNicknames(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	mustUser(t, s, "user-2")

	if err := s.SetNickname(ctx, "user-1", "focus_kim", "0042", Base); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}
	p, err := s.GetUser(ctx, "user-1")
	if err != nil || p == nil || p.Handle() != "focus_kim#0042" {
		t.Fatalf("GetUser after SetNickname = %+v, %v", p, err)
	}

	// The tag survives a rename
	if err := s.SetNickname(ctx, "user-1", "deep_work", "9999", Base.Add(time.Hour)); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	p, _ = s.GetUser(ctx, "user-1")
	if p.Handle() != "deep_work#0042" {
		t.Errorf("Handle after rename = %q, want deep_work#0042", p.Handle())
	}
	if !p.UpdatedAt.Equal(Base.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %s", p.UpdatedAt)
	}

	err = s.SetNickname(ctx, "user-2", "deep_work", "0001", Base)
	if !errors.Is(err, apperrors.ErrNicknameTaken) {
		t.Errorf("SetNickname(taken) error = %v, want ErrNicknameTaken", err)
	}

	owner, err := s.FindUserByNickname(ctx, "deep_work")
	if err != nil || owner == nil || owner.AnonID != "user-1" {
		t.Errorf("FindUserByNickname = %+v, %v", owner, err)
	}
	free, err := s.FindUserByNickname(ctx, "focus_kim")
	if err != nil || free != nil {
		t.Errorf("released nickname still owned: %+v, %v", free, err)
	}

	if err := s.SetNickname(ctx, "ghost", "ghosty", "0001", Base); !errors.Is(err, apperrors.ErrUnknownUser) {
		t.Errorf("SetNickname(ghost) error = %v, want ErrUnknownUser", err)
	}
}

func testTopTotals(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	for _, u := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		mustUser(t, s, u)
	}
	if err := s.SetNickname(ctx, "bravo", "bravo_b", "0007", Base); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}

	mustIncrement(t, s, "alpha", "2025-08-25", 5000) // previous week
	mustIncrement(t, s, "alpha", "2025-09-01", 100)
	mustIncrement(t, s, "bravo", "2025-09-02", 300)
	mustIncrement(t, s, "charlie", "2025-09-02", 300)
	mustIncrement(t, s, "delta", "2025-09-03", 50)
	mustIncrement(t, s, "echo", "2025-09-04", 0)

	weekly, err := s.TopTotals(ctx, models.RankingQuery{From: "2025-09-01", To: "2025-09-07", Limit: 10})
	if err != nil {
		t.Fatalf("TopTotals weekly failed: %v", err)
	}
	wantOrder := []string{"bravo", "charlie", "alpha", "delta", "echo"}
	if len(weekly) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(weekly), len(wantOrder))
	}
	for i, id := range wantOrder {
		if weekly[i].AnonID != id {
			t.Errorf("row %d = %s, want %s", i, weekly[i].AnonID, id)
		}
	}
	if weekly[0].Nickname == nil || *weekly[0].Nickname != "bravo_b" || weekly[0].NicknameTag == nil {
		t.Errorf("nickname not joined: %+v", weekly[0])
	}
	if weekly[1].Nickname != nil {
		t.Errorf("charlie should have no nickname: %+v", weekly[1])
	}
	if last := weekly[len(weekly)-1]; last.AnonID != "echo" || last.TotalSeconds != 0 {
		t.Errorf("zero-total user should rank last: %+v", last)
	}

	overall, err := s.TopTotals(ctx, models.RankingQuery{Limit: 2})
	if err != nil {
		t.Fatalf("TopTotals overall failed: %v", err)
	}
	if len(overall) != 2 || overall[0].AnonID != "alpha" || overall[0].TotalSeconds != 5100 {
		t.Errorf("overall = %+v", overall)
	}
}

func testTransactionRollback(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")
	sess := mustOpen(t, s, "user-1", Base)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, closed, err := s.CloseSession(ctx, sess.ID, Base.Add(time.Minute)); err != nil || !closed {
			return fmt.Errorf("close inside tx: %v %v", closed, err)
		}
		if err := s.IncrementDaily(ctx, "user-1", "2025-09-01", 60); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	got, _ := s.GetSession(ctx, sess.ID)
	if got == nil || !got.IsOpen() {
		t.Errorf("session should still be open after rollback: %+v", got)
	}
	total, _ := s.SumRange(ctx, "user-1", "2025-09-01", "2025-09-01")
	if total != 0 {
		t.Errorf("aggregate should be rolled back, got %d", total)
	}

	err = s.WithinTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.CloseSession(ctx, sess.ID, Base.Add(time.Minute)); err != nil {
			return err
		}
		// Nested calls join the outer transaction
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.IncrementDaily(ctx, "user-1", "2025-09-01", 60)
		})
	})
	if err != nil {
		t.Fatalf("committing WithinTx failed: %v", err)
	}
	total, _ = s.SumRange(ctx, "user-1", "2025-09-01", "2025-09-01")
	if total != 60 {
		t.Errorf("committed total = %d, want 60", total)
	}
}

func testConcurrentIncrements(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementDaily(ctx, "user-1", "2025-09-01", 10); err != nil {
				t.Errorf("IncrementDaily failed: %v", err)
			}
		}()
	}
	wg.Wait()

	total, err := s.SumRange(ctx, "user-1", "2025-09-01", "2025-09-01")
	if err != nil {
		t.Fatalf("SumRange failed: %v", err)
	}
	if total != workers*10 {
		t.Errorf("total = %d, want %d (lost updates)", total, workers*10)
	}
}

func testConcurrentOpens(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	mustUser(t, s, "user-1")

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	opened, conflicts := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.OpenSession(ctx, "user-1", Base)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				opened++
			case errors.Is(err, apperrors.ErrAlreadyOpen):
				conflicts++
			default:
				t.Errorf("unexpected OpenSession error: %v", err)
			}
		}()
	}
	wg.Wait()

	if opened != 1 || conflicts != workers-1 {
		t.Errorf("opened=%d conflicts=%d, want 1 and %d", opened, conflicts, workers-1)
	}
}
