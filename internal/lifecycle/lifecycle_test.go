package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/logger"
	"github.com/julianstephens/focusbank/internal/storage/memory"
)

func setupEngine(t *testing.T, start time.Time) (*Engine, *memory.Store, *calendar.FixedClock) {
	t.Helper()
	loc, err := calendar.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	store := memory.New()
	clock := calendar.NewFixedClock(start)
	return New(store, calendar.NewResolver(clock, loc)), store, clock
}

func kst(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := calendar.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, loc)
	if err != nil {
		t.Fatalf("bad fixture time %q: %v", value, err)
	}
	return ts
}

func register(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := store.EnsureUser(context.Background(), id, time.Now()); err != nil {
			t.Fatalf("EnsureUser(%s) failed: %v", id, err)
		}
	}
}

func daily(t *testing.T, store *memory.Store, anonID, date string) int64 {
	t.Helper()
	total, err := store.SumRange(context.Background(), anonID, date, date)
	if err != nil {
		t.Fatalf("SumRange failed: %v", err)
	}
	return total
}

func TestStartAndStopAccumulateDailyTotal(t *testing.T) {
	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "A")

	sess, err := engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Set(kst(t, "2025-09-01 09:30:00"))
	closed, err := engine.EndFocus(ctx, sess.ID)
	if err != nil {
		t.Fatalf("EndFocus failed: %v", err)
	}
	if closed.Seconds() != 1800 || closed.IsOpen() {
		t.Errorf("closed session = %+v, want 1800 seconds", closed)
	}
	if got := daily(t, store, "A", "2025-09-01"); got != 1800 {
		t.Errorf("daily total = %d, want 1800", got)
	}

	clock.Set(kst(t, "2025-09-01 09:31:00"))
	sess, err = engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("second StartFocus failed: %v", err)
	}
	clock.Set(kst(t, "2025-09-01 09:41:00"))
	if _, err := engine.EndFocus(ctx, sess.ID); err != nil {
		t.Fatalf("second EndFocus failed: %v", err)
	}
	if got := daily(t, store, "A", "2025-09-01"); got != 2400 {
		t.Errorf("daily total = %d, want 2400", got)
	}
}

func TestStartFocusErrors(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "A")

	if _, err := engine.StartFocus(ctx, "A"); err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}

	tests := []struct {
		name    string
		anonID  string
		wantErr error
		notErr  error
	}{
		{"blank user", "   ", apperrors.ErrValidation, apperrors.ErrConflict},
		{"already open", "A", apperrors.ErrAlreadyOpen, apperrors.ErrUnknownUser},
		{"unknown user", "ghost", apperrors.ErrUnknownUser, apperrors.ErrAlreadyOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.StartFocus(ctx, tt.anonID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("StartFocus(%q) error = %v, want %v", tt.anonID, err, tt.wantErr)
			}
			if errors.Is(err, tt.notErr) {
				t.Errorf("StartFocus(%q) error %v should not match %v", tt.anonID, err, tt.notErr)
			}
		})
	}

	// Rejections leave the store untouched
	sessions, err := store.SessionsStartedBetween(ctx, "ghost", time.Time{}, time.Now().AddDate(10, 0, 0))
	if err != nil || len(sessions) != 0 {
		t.Errorf("rejected start created sessions: %v, %v", sessions, err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "A")

	sess, err := engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Advance(10 * time.Minute)
	if _, err := engine.EndFocus(ctx, sess.ID); err != nil {
		t.Fatalf("EndFocus failed: %v", err)
	}

	clock.Advance(10 * time.Minute)
	_, err = engine.EndFocus(ctx, sess.ID)
	if !errors.Is(err, apperrors.ErrNotClosable) {
		t.Fatalf("second EndFocus error = %v, want NotClosable", err)
	}
	if got := daily(t, store, "A", "2025-09-01"); got != 600 {
		t.Errorf("daily total = %d, want 600 (double counted?)", got)
	}

	stored, _ := engine.GetSession(ctx, sess.ID)
	if stored == nil || stored.Seconds() != 600 {
		t.Errorf("closed session changed: %+v", stored)
	}
}

func TestStopUnknownSession(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "A")

	_, err := engine.EndFocus(ctx, 4242)
	if !errors.Is(err, apperrors.ErrNotClosable) {
		t.Fatalf("EndFocus(unknown) error = %v, want NotClosable", err)
	}
	if apperrors.KindOf(err) != apperrors.KindNotClosable {
		t.Errorf("KindOf = %s, want not-closable", apperrors.KindOf(err))
	}
	if got := daily(t, store, "A", "2025-09-01"); got != 0 {
		t.Errorf("aggregate changed: %d", got)
	}
}

func TestMidnightCrossingCreditsClosingDate(t *testing.T) {
	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 23:50:00"))
	register(t, store, "A")

	sess, err := engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Set(kst(t, "2025-09-02 00:20:00"))
	if _, err := engine.EndFocus(ctx, sess.ID); err != nil {
		t.Fatalf("EndFocus failed: %v", err)
	}

	if got := daily(t, store, "A", "2025-09-01"); got != 0 {
		t.Errorf("start day total = %d, want 0", got)
	}
	if got := daily(t, store, "A", "2025-09-02"); got != 1800 {
		t.Errorf("closing day total = %d, want 1800", got)
	}
}

func TestClosingDateUsesResolverZone(t *testing.T) {
	ctx := context.Background()
	// 15:30 UTC is 00:30 the next day in Seoul
	engine, store, clock := setupEngine(t, time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC))
	register(t, store, "A")

	sess, err := engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Set(time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC))
	if _, err := engine.EndFocus(ctx, sess.ID); err != nil {
		t.Fatalf("EndFocus failed: %v", err)
	}
	if got := daily(t, store, "A", "2025-09-02"); got != 1800 {
		t.Errorf("2025-09-02 total = %d, want 1800", got)
	}
}

// failingStore rejects every aggregate write.
type failingStore struct {
	*memory.Store
}

func (f failingStore) IncrementDaily(ctx context.Context, anonID, date string, seconds int64) error {
	return errors.New("disk full")
}

func TestStopRollsBackWhenAggregateFails(t *testing.T) {
	ctx := context.Background()
	loc, _ := calendar.LoadLocation("Asia/Seoul")
	store := memory.New()
	register(t, store, "A")
	clock := calendar.NewFixedClock(kst(t, "2025-09-01 09:00:00"))
	engine := New(failingStore{store}, calendar.NewResolver(clock, loc))

	sess, err := engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Advance(time.Minute)

	if _, err := engine.EndFocus(ctx, sess.ID); err == nil {
		t.Fatal("EndFocus should fail when the aggregate write fails")
	}
	open, err := engine.CurrentSession(ctx, "A")
	if err != nil || open == nil || open.ID != sess.ID {
		t.Errorf("session should still be open after rollback: %+v, %v", open, err)
	}
}

func TestConcurrentStartsOpenExactlyOne(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "A")

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	opened, conflicts := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.StartFocus(ctx, "A")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				opened++
			case errors.Is(err, apperrors.ErrAlreadyOpen):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if opened != 1 || conflicts != workers-1 {
		t.Errorf("opened=%d conflicts=%d, want 1 and %d", opened, conflicts, workers-1)
	}
}

func TestConcurrentStopsCountOnce(t *testing.T) {
	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "A")

	sess, err := engine.StartFocus(ctx, "A")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Advance(5 * time.Minute)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	stopped, notClosable := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.EndFocus(ctx, sess.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				stopped++
			case errors.Is(err, apperrors.ErrNotClosable):
				notClosable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if stopped != 1 || notClosable != workers-1 {
		t.Errorf("stopped=%d notClosable=%d, want 1 and %d", stopped, notClosable, workers-1)
	}
	if got := daily(t, store, "A", "2025-09-01"); got != 300 {
		t.Errorf("daily total = %d, want 300", got)
	}
}

func TestAggregateMatchesClosedSessions(t *testing.T) {
	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 08:00:00"))
	users := []string{"A", "B", "C"}
	register(t, store, users...)

	want := map[string]map[string]int64{}
	open := map[string]int64{}
	for step := 0; step < 30; step++ {
		u := users[step%len(users)]
		clock.Advance(time.Duration(7+step) * time.Minute)
		if id, ok := open[u]; ok {
			closed, err := engine.EndFocus(ctx, id)
			if err != nil {
				t.Fatalf("EndFocus failed: %v", err)
			}
			date := engine.resolver.DateOf(*closed.EndedAt)
			if want[u] == nil {
				want[u] = map[string]int64{}
			}
			want[u][date] += closed.Seconds()
			delete(open, u)
			continue
		}
		sess, err := engine.StartFocus(ctx, u)
		if err != nil {
			t.Fatalf("StartFocus failed: %v", err)
		}
		open[u] = sess.ID
	}

	for u, days := range want {
		var expected int64
		for date, seconds := range days {
			if got := daily(t, store, u, date); got != seconds {
				t.Errorf("%s on %s = %d, want %d", u, date, got, seconds)
			}
			expected += seconds
		}
		total, err := store.SumRange(ctx, u, "2025-01-01", "2025-12-31")
		if err != nil || total != expected {
			t.Errorf("%s range total = %d, %v; want %d", u, total, err, expected)
		}
	}
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 23:40:00"))
	register(t, store, "A")

	starts := []string{"2025-09-01 23:40:00", "2025-09-02 00:30:00", "2025-09-02 10:00:00"}
	for _, at := range starts {
		clock.Set(kst(t, at))
		sess, err := engine.StartFocus(ctx, "A")
		if err != nil {
			t.Fatalf("StartFocus failed: %v", err)
		}
		clock.Advance(10 * time.Minute)
		if _, err := engine.EndFocus(ctx, sess.ID); err != nil {
			t.Fatalf("EndFocus failed: %v", err)
		}
	}

	sessions, err := engine.ListSessions(ctx, "A", "2025-09-02")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if !sessions[0].StartedAt.Equal(kst(t, "2025-09-02 00:30:00")) {
		t.Errorf("first session started at %s", sessions[0].StartedAt)
	}

	tests := []struct {
		name   string
		anonID string
		date   string
	}{
		{"blank user", "", "2025-09-02"},
		{"bad date", "A", "09/02/2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.ListSessions(ctx, tt.anonID, tt.date); !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("ListSessions error = %v, want validation", err)
			}
		})
	}
}

func TestLifecycleLogsCarrySessionFields(t *testing.T) {
	var buf bytes.Buffer
	if err := logger.Init(logger.Config{Output: &buf}); err != nil {
		t.Fatalf("logger.Init failed: %v", err)
	}
	t.Cleanup(func() { logger.Logger = nil })

	ctx := context.Background()
	engine, store, clock := setupEngine(t, kst(t, "2025-09-01 09:00:00"))
	register(t, store, "anon-log")

	sess, err := engine.StartFocus(ctx, "anon-log")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := engine.EndFocus(ctx, sess.ID); err != nil {
		t.Fatalf("EndFocus failed: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	tests := []struct {
		msg    string
		fields []string
	}{
		{"Session opened", []string{"anon_id=anon-log", "session_id=1"}},
		{"Session closed", []string{"session_id=1", "anon_id=anon-log", "date=2025-09-01", "seconds=60"}},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			var line string
			for _, l := range lines {
				if strings.Contains(l, tt.msg) {
					line = l
					break
				}
			}
			if line == "" {
				t.Fatalf("no %q entry in %q", tt.msg, buf.String())
			}
			for _, f := range tt.fields {
				if !strings.Contains(line, f) {
					t.Errorf("%q missing %s", line, f)
				}
			}
		})
	}
}
