package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/focusbank/internal/backup"
	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/config"
	"github.com/julianstephens/focusbank/internal/goals"
	"github.com/julianstephens/focusbank/internal/lifecycle"
	"github.com/julianstephens/focusbank/internal/logger"
	"github.com/julianstephens/focusbank/internal/profiles"
	"github.com/julianstephens/focusbank/internal/ranking"
	"github.com/julianstephens/focusbank/internal/reports"
	"github.com/julianstephens/focusbank/internal/storage"
	"github.com/julianstephens/focusbank/internal/storage/memory"
	"github.com/julianstephens/focusbank/internal/storage/postgres"
	"github.com/julianstephens/focusbank/internal/storage/sqlite"
)

// Context is handed to every command's Run method.
type Context struct {
	Config   config.Resolved
	Store    storage.Provider
	Resolver *calendar.Resolver

	Sessions *lifecycle.Engine
	Goals    *goals.Engine
	Reports  *reports.Engine
	Ranking  *ranking.Engine
	Profiles *profiles.Engine

	JSON bool
	Out  io.Writer
	In   io.Reader
}

// NewContext wires the engines around store. A nil clock uses the system clock.
func NewContext(cfg config.Resolved, store storage.Provider, clock calendar.Clock) *Context {
	resolver := calendar.NewResolver(clock, cfg.Location)
	return &Context{
		Config:   cfg,
		Store:    store,
		Resolver: resolver,
		Sessions: lifecycle.New(store, resolver),
		Goals:    goals.New(store, resolver),
		Reports:  reports.New(store, resolver),
		Ranking:  ranking.New(store, resolver),
		Profiles: profiles.New(store, resolver),
		Out:      os.Stdout,
		In:       os.Stdin,
	}
}

// NewStore returns the provider selected by the resolved database setting.
func NewStore(cfg config.Resolved) storage.Provider {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New()
	case config.BackendPostgres:
		return postgres.New(cfg.DB)
	default:
		return sqlite.NewStore(cfg.DB)
	}
}

// Migrator is implemented by the SQL providers.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}

// IsFileBacked reports whether the store lives in a local SQLite file that
// the backup manager can copy.
func (c *Context) IsFileBacked() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// BackupManager returns the manager for the SQLite file, or nil for other backends.
func (c *Context) BackupManager() *backup.Manager {
	if !c.IsFileBacked() {
		return nil
	}
	return backup.NewManager(c.Store.GetConfigPath())
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := c.BackupManager()
	if mgr == nil {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Render prints v as indented JSON in --json mode and calls text otherwise.
func (c *Context) Render(v any, text func(w io.Writer)) error {
	if c.JSON {
		enc := json.NewEncoder(c.out())
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		return nil
	}
	text(c.out())
	return nil
}

// Printf writes human-readable output. It is silent in --json mode.
func (c *Context) Printf(format string, args ...any) {
	if c.JSON {
		return
	}
	fmt.Fprintf(c.out(), format, args...)
}

// Confirm asks a yes/no question on the context's input.
func (c *Context) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out(), "%s [y/N]: ", prompt)
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
