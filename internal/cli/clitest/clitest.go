// Package clitest builds command contexts backed by the in-memory store.
package clitest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/config"
	"github.com/julianstephens/focusbank/internal/storage"
	"github.com/julianstephens/focusbank/internal/storage/memory"
)

// Start is Wednesday 2025-09-03 10:00 in Seoul.
var Start = time.Date(2025, 9, 3, 1, 0, 0, 0, time.UTC)

type Harness struct {
	Ctx   *cli.Context
	Out   *bytes.Buffer
	Clock *calendar.FixedClock
}

// New returns a context over a fresh memory store with a fixed Seoul clock.
func New(t *testing.T) *Harness {
	t.Helper()
	return NewWithStore(t, memory.New(), config.BackendMemory)
}

// NewWithStore is New over an already initialized store.
func NewWithStore(t *testing.T, store storage.Provider, backend config.Backend) *Harness {
	t.Helper()
	loc, err := calendar.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	cfg := config.Resolved{
		Config:   config.Config{DB: store.GetConfigPath(), Timezone: "Asia/Seoul"},
		Backend:  backend,
		Source:   config.SourceFlag,
		Location: loc,
	}
	clock := calendar.NewFixedClock(Start)
	ctx := cli.NewContext(cfg, store, clock)
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	return &Harness{Ctx: ctx, Out: out, Clock: clock}
}

// Output returns and clears everything written so far.
func (h *Harness) Output() string {
	s := h.Out.String()
	h.Out.Reset()
	return s
}
