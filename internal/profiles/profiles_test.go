package profiles

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/storage/memory"
)

func setupEngine(t *testing.T, tags ...string) (*Engine, *calendar.FixedClock) {
	t.Helper()
	clock := calendar.NewFixedClock(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	engine := New(memory.New(), calendar.NewResolver(clock, time.UTC))
	if len(tags) > 0 {
		engine.WithTagGenerator(func() string {
			tag := tags[0]
			if len(tags) > 1 {
				tags = tags[1:]
			}
			return tag
		})
	}
	return engine, clock
}

func TestValidNickname(t *testing.T) {
	tests := []struct {
		nickname string
		want     bool
	}{
		{"ab", true},
		{"focus_kim", true},
		{"집중왕", true},
		{"Mix한글_123", true},
		{"sixteen_chars_ok", true},
		{"a", false},
		{"seventeen_chars_x", false},
		{"has space", false},
		{"dash-name", false},
		{"emoji🔥", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.nickname, func(t *testing.T) {
			if got := ValidNickname(tt.nickname); got != tt.want {
				t.Errorf("ValidNickname(%q) = %v, want %v", tt.nickname, got, tt.want)
			}
		})
	}
}

func TestRandomTag(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}$`)
	for i := 0; i < 200; i++ {
		tag := RandomTag()
		if !re.MatchString(tag) || tag == "0000" {
			t.Fatalf("RandomTag() = %q, want 0001..9999", tag)
		}
	}
}

func TestNewAnonID(t *testing.T) {
	id := NewAnonID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewAnonID() = %q is not a uuid: %v", id, err)
	}
	if NewAnonID() == id {
		t.Error("NewAnonID() returned the same id twice")
	}
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	engine, clock := setupEngine(t)

	profile, created, err := engine.RegisterUser(ctx, " user-1 ")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if !created || profile.AnonID != "user-1" {
		t.Errorf("RegisterUser = %+v, %v", profile, created)
	}

	clock.Advance(time.Hour)
	again, created, err := engine.RegisterUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("second RegisterUser failed: %v", err)
	}
	if created {
		t.Error("second RegisterUser should not create")
	}
	if !again.CreatedAt.Equal(profile.CreatedAt) {
		t.Errorf("CreatedAt changed: %s -> %s", profile.CreatedAt, again.CreatedAt)
	}

	if _, _, err := engine.RegisterUser(ctx, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("RegisterUser(\"\") error = %v, want validation", err)
	}
}

func TestSetNickname(t *testing.T) {
	ctx := context.Background()
	engine, _ := setupEngine(t, "0042", "1234")

	// Unregistered users are registered on first nickname
	profile, err := engine.SetNickname(ctx, "user-1", "  focus_kim ")
	if err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}
	if profile.Handle() != "focus_kim#0042" {
		t.Errorf("Handle = %q, want focus_kim#0042", profile.Handle())
	}

	// Same nickname again is a no-op
	profile, err = engine.SetNickname(ctx, "user-1", "focus_kim")
	if err != nil || profile.Handle() != "focus_kim#0042" {
		t.Errorf("repeat SetNickname = %v, %v", profile, err)
	}

	// Renaming keeps the tag
	profile, err = engine.SetNickname(ctx, "user-1", "집중왕")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if profile.Handle() != "집중왕#0042" {
		t.Errorf("Handle after rename = %q", profile.Handle())
	}
}

func TestSetNicknameErrors(t *testing.T) {
	ctx := context.Background()
	engine, _ := setupEngine(t)

	if _, err := engine.SetNickname(ctx, "owner", "taken_name"); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}

	tests := []struct {
		name     string
		anonID   string
		nickname string
		wantErr  error
	}{
		{"taken", "other", "taken_name", apperrors.ErrNicknameTaken},
		{"invalid format", "other", "x", apperrors.ErrValidation},
		{"blank user", "", "fresh_name", apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.SetNickname(ctx, tt.anonID, tt.nickname)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetNickname error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// A taken nickname leaves the other user without one
	p, err := engine.GetProfile(ctx, "other")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p != nil && p.Nickname != nil {
		t.Errorf("other user got a nickname: %+v", p)
	}
}

func TestCheckNickname(t *testing.T) {
	ctx := context.Background()
	engine, _ := setupEngine(t)

	if _, err := engine.SetNickname(ctx, "owner", "taken_name"); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}

	tests := []struct {
		nickname   string
		available  bool
		wantReason string
	}{
		{"free_name", true, ""},
		{" taken_name ", false, constants.ReasonDuplicate},
		{"no spaces allowed", false, constants.ReasonInvalidFormat},
		{strings.Repeat("a", 17), false, constants.ReasonInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.nickname, func(t *testing.T) {
			got, err := engine.CheckNickname(ctx, tt.nickname)
			if err != nil {
				t.Fatalf("CheckNickname failed: %v", err)
			}
			if got.Available != tt.available || got.Reason != tt.wantReason {
				t.Errorf("CheckNickname(%q) = %+v", tt.nickname, got)
			}
			if got.Nickname != strings.TrimSpace(tt.nickname) {
				t.Errorf("Nickname = %q, want trimmed input", got.Nickname)
			}
		})
	}
}

func TestGetProfileMissing(t *testing.T) {
	engine, _ := setupEngine(t)
	p, err := engine.GetProfile(context.Background(), "nobody")
	if err != nil || p != nil {
		t.Errorf("GetProfile(nobody) = %v, %v; want nil, nil", p, err)
	}
}
