package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/config"
	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/keyring"
	"github.com/julianstephens/focusbank/internal/migration"
)

type DoctorCmd struct{}

// CheckResult is one diagnostic line.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // ok, fail, warn, skip
	Message string `json:"message,omitempty"`
}

type schemaReporter interface {
	SchemaStatus() (migration.Status, error)
}

type dbHolder interface {
	GetDB() *sql.DB
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Running diagnostics...\n\n")

	var results []CheckResult
	record := func(name string, err error, warnOnly bool) {
		r := CheckResult{Name: name, Status: "ok"}
		if err != nil {
			r.Status = "fail"
			if warnOnly {
				r.Status = "warn"
			}
			r.Message = err.Error()
		}
		results = append(results, r)
		printResult(ctx, r)
	}

	dbErr := checkDBReachable(ctx)
	record("Database reachable", dbErr, false)

	if dbErr != nil {
		r := CheckResult{Name: "Schema version", Status: "skip", Message: "database not reachable"}
		results = append(results, r)
		printResult(ctx, r)
	} else {
		record("Schema version", checkSchemaVersion(ctx), false)
	}

	record("Clock/timezone", checkClockTimezone(ctx), false)
	record("OS keyring", checkKeyring(ctx), true)

	if ctx.IsFileBacked() {
		record("Backups present", checkBackupsPresent(ctx), true)
	}

	failed := false
	for _, r := range results {
		if r.Status == "fail" {
			failed = true
		}
	}

	if err := ctx.Render(results, func(_ io.Writer) {}); err != nil {
		return err
	}

	ctx.Printf("\n")
	if failed {
		ctx.Printf("Diagnostics completed with errors.\n")
		return errors.New("one or more health checks failed")
	}
	ctx.Printf("All diagnostics passed!\n")
	return nil
}

func printResult(ctx *cli.Context, r CheckResult) {
	switch r.Status {
	case "ok":
		ctx.Printf("%s %s: OK\n", cli.OKStyle.Render("✓"), r.Name)
	case "warn":
		ctx.Printf("%s %s: WARNING\n   %s\n", cli.WarnStyle.Render("⚠"), r.Name, r.Message)
	case "skip":
		ctx.Printf("⊘ %s: SKIPPED (%s)\n", r.Name, r.Message)
	default:
		ctx.Printf("❌ %s: FAIL\n   Error: %s\n", r.Name, r.Message)
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	holder, ok := ctx.Store.(dbHolder)
	if !ok {
		return nil
	}
	db := holder.GetDB()
	if db == nil {
		return errors.New("database connection is nil")
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	reporter, ok := ctx.Store.(schemaReporter)
	if !ok {
		// The in-memory store has no schema
		return nil
	}
	st, err := reporter.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Resolver.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	ctx.Printf("   Zone %s, today is %s\n", ctx.Resolver.Location(), ctx.Resolver.TodayString())
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if ctx.Config.Source == config.SourceKeyring {
		// The connection string was just read from it
		return nil
	}
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; PostgreSQL credentials must come from .pgpass or the environment")
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}
