package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/focusbank/internal/cli/clitest"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

func seed(t *testing.T) *clitest.Harness {
	t.Helper()
	h := clitest.New(t)
	bg := context.Background()
	h.Ctx.Profiles.WithTagGenerator(func() string { return "0042" })

	record := func(user string, at time.Time, d time.Duration) {
		h.Clock.Set(at)
		sess, err := h.Ctx.Sessions.StartFocus(bg, user)
		if err != nil {
			t.Fatalf("StartFocus(%s) failed: %v", user, err)
		}
		h.Clock.Advance(d)
		if _, err := h.Ctx.Sessions.EndFocus(bg, sess.ID); err != nil {
			t.Fatalf("EndFocus(%s) failed: %v", user, err)
		}
	}

	for _, id := range []string{"user-aaaa1111", "user-bbbb2222", "user-cccc3333"} {
		if _, _, err := h.Ctx.Profiles.RegisterUser(bg, id); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}
	}
	if _, err := h.Ctx.Profiles.SetNickname(bg, "user-bbbb2222", "haneul"); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}

	lastWeek := time.Date(2025, 8, 27, 1, 0, 0, 0, time.UTC)
	record("user-aaaa1111", lastWeek, 5*time.Hour)
	record("user-bbbb2222", clitest.Start, 2*time.Hour)
	record("user-cccc3333", clitest.Start.Add(3*time.Hour), time.Hour)
	h.Clock.Set(clitest.Start.Add(6 * time.Hour))
	h.Output()
	return h
}

func TestWeeklyRanking(t *testing.T) {
	h := seed(t)
	h.Ctx.JSON = true

	if err := (&RankingShowCmd{Limit: 10, Window: "weekly"}).Run(h.Ctx); err != nil {
		t.Fatalf("ranking failed: %v", err)
	}
	var entries []models.RankingEntry
	if err := json.Unmarshal([]byte(h.Output()), &entries); err != nil {
		t.Fatalf("ranking output is not JSON: %v", err)
	}
	want := []models.RankingEntry{
		{Rank: 1, AnonID: "user-bbbb2222", DisplayName: "haneul#0042", TotalSeconds: 7200},
		{Rank: 2, AnonID: "user-cccc3333", DisplayName: "anon-3333", TotalSeconds: 3600},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestOverallRankingText(t *testing.T) {
	h := seed(t)

	if err := (&RankingShowCmd{Limit: 2, Window: "overall"}).Run(h.Ctx); err != nil {
		t.Fatalf("ranking failed: %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "Overall ranking") {
		t.Errorf("missing title in %q", out)
	}
	first := strings.Index(out, "anon-1111")
	second := strings.Index(out, "haneul#0042")
	if first < 0 || second < 0 || first > second {
		t.Errorf("expected anon-1111 ahead of haneul#0042 in %q", out)
	}
	if strings.Contains(out, "anon-3333") {
		t.Errorf("limit 2 should drop the third entry: %q", out)
	}
}

func TestRankingEmptyAndInvalid(t *testing.T) {
	h := clitest.New(t)

	if err := (&RankingShowCmd{Limit: 10, Window: "weekly"}).Run(h.Ctx); err != nil {
		t.Fatalf("ranking failed: %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "Weekly ranking 2025-09-01 .. 2025-09-03") || !strings.Contains(out, "Nobody has focused yet.") {
		t.Errorf("unexpected output %q", out)
	}

	err := (&RankingShowCmd{Limit: 10, Window: "daily"}).Run(h.Ctx)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}
