package sessions

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

func register(t *testing.T, h *clitest.Harness, id string) {
	t.Helper()
	if _, _, err := h.Ctx.Profiles.RegisterUser(context.Background(), id); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
}

func TestStartStopFlow(t *testing.T) {
	h := clitest.New(t)
	register(t, h, "anon-cli")

	if err := (&StartCmd{User: "anon-cli"}).Run(h.Ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Session #1 started") {
		t.Errorf("unexpected start output: %q", out)
	}

	err := (&StartCmd{User: "anon-cli"}).Run(h.Ctx)
	if !errors.Is(err, apperrors.ErrAlreadyOpen) {
		t.Fatalf("second start error = %v, want ErrAlreadyOpen", err)
	}
	if apperrors.ExitCode(err) != 3 {
		t.Errorf("exit code = %d, want 3", apperrors.ExitCode(err))
	}

	h.Clock.Advance(25 * time.Minute)
	if err := (&CurrentCmd{User: "anon-cli"}).Run(h.Ctx); err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "25m 00s") {
		t.Errorf("unexpected current output: %q", out)
	}

	h.Clock.Advance(5 * time.Minute)
	if err := (&StopCmd{User: "anon-cli"}).Run(h.Ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "closed: 30m 00s") || !strings.Contains(out, "Total on 2025-09-03") {
		t.Errorf("unexpected stop output: %q", out)
	}

	err = (&StopCmd{ID: 1}).Run(h.Ctx)
	if !errors.Is(err, apperrors.ErrNotClosable) {
		t.Fatalf("repeat stop error = %v, want ErrNotClosable", err)
	}
	if apperrors.ExitCode(err) != 4 {
		t.Errorf("exit code = %d, want 4", apperrors.ExitCode(err))
	}
}

func TestStopWithoutOpenSession(t *testing.T) {
	h := clitest.New(t)
	register(t, h, "anon-idle")

	tests := []struct {
		name     string
		cmd      StopCmd
		target   error
		exitCode int
	}{
		{"no id or user", StopCmd{}, apperrors.ErrValidation, 2},
		{"nothing open", StopCmd{User: "anon-idle"}, apperrors.ErrNotClosable, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(h.Ctx)
			if !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
			if got := apperrors.ExitCode(err); got != tt.exitCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.exitCode)
			}
		})
	}
}

func TestStartUnknownUser(t *testing.T) {
	h := clitest.New(t)
	err := (&StartCmd{User: "anon-ghost"}).Run(h.Ctx)
	if !errors.Is(err, apperrors.ErrUnknownUser) {
		t.Fatalf("error = %v, want ErrUnknownUser", err)
	}
}

func TestShowAndListJSON(t *testing.T) {
	h := clitest.New(t)
	register(t, h, "anon-json")
	h.Ctx.JSON = true

	if err := (&StartCmd{User: "anon-json"}).Run(h.Ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.Output()
	h.Clock.Advance(10 * time.Minute)
	if err := (&StopCmd{ID: 1}).Run(h.Ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	var stopped struct {
		Session models.FocusSession `json:"session"`
		Day     models.DailySummary `json:"day"`
	}
	if err := json.Unmarshal([]byte(h.Output()), &stopped); err != nil {
		t.Fatalf("stop output is not JSON: %v", err)
	}
	if stopped.Session.Seconds() != 600 || stopped.Day.TotalSeconds != 600 || stopped.Day.Date != "2025-09-03" {
		t.Errorf("unexpected stop result %+v", stopped)
	}

	if err := (&ShowCmd{ID: 1}).Run(h.Ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var shown models.FocusSession
	if err := json.Unmarshal([]byte(h.Output()), &shown); err != nil {
		t.Fatalf("show output is not JSON: %v", err)
	}
	if shown.ID != 1 || shown.IsOpen() {
		t.Errorf("unexpected session %+v", shown)
	}

	if err := (&ListCmd{User: "anon-json"}).Run(h.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var list []models.FocusSession
	if err := json.Unmarshal([]byte(h.Output()), &list); err != nil {
		t.Fatalf("list output is not JSON: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 session today, got %d", len(list))
	}

	if err := (&ListCmd{User: "anon-json", Date: "2025-09-02"}).Run(h.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := strings.TrimSpace(h.Output()); out != "[]" {
		t.Errorf("empty day should print [], got %q", out)
	}
}

func TestShowMissingSession(t *testing.T) {
	h := clitest.New(t)
	err := (&ShowCmd{ID: 42}).Run(h.Ctx)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestListRejectsBadDate(t *testing.T) {
	h := clitest.New(t)
	register(t, h, "anon-date")
	err := (&ListCmd{User: "anon-date", Date: "09/03/2025"}).Run(h.Ctx)
	if apperrors.ExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2 (err %v)", apperrors.ExitCode(err), err)
	}
}
