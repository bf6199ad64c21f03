package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/cli/backups"
	"github.com/julianstephens/focusbank/internal/cli/goals"
	"github.com/julianstephens/focusbank/internal/cli/profiles"
	"github.com/julianstephens/focusbank/internal/cli/ranking"
	"github.com/julianstephens/focusbank/internal/cli/reports"
	"github.com/julianstephens/focusbank/internal/cli/sessions"
	"github.com/julianstephens/focusbank/internal/cli/system"
	"github.com/julianstephens/focusbank/internal/config"
	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	DB        string `help:"SQLite path, ':memory:', or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use the OS keyring, .pgpass or PGPASSWORD instead. Defaults to the keyring, then ~/.config/focusbank/focusbank.db." env:"FOCUSBANK_DB"`
	Timezone  string `name:"tz" help:"IANA zone that defines calendar days, weeks and months." env:"FOCUSBANK_TZ" default:"Asia/Seoul"`
	ConfigDir string `help:"Directory for the default database, logs and backups." default:"~/.config/focusbank"`
	Debug     bool   `help:"Enable debug logging to stderr." env:"FOCUSBANK_DEBUG"`
	JSON      bool   `name:"json" help:"Print results as JSON."`

	Init    system.InitCmd    `cmd:"" help:"Initialize focusbank storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups (SQLite only)."`

	User    profiles.UserCmd    `cmd:"" help:"Manage anonymous identities."`
	Profile profiles.ProfileCmd `cmd:"" help:"Manage nicknames and profiles."`
	Session sessions.SessionCmd `cmd:"" help:"Start, stop and inspect focus sessions."`
	Focus   sessions.FocusCmd   `cmd:"" help:"Start a session and show a live timer."`
	Goal    goals.GoalCmd       `cmd:"" help:"Manage focus goals."`
	Report  reports.ReportCmd   `cmd:"" help:"Daily, weekly and monthly focus reports."`
	Ranking ranking.RankingCmd  `cmd:"" help:"Leaderboards."`
}

// These commands manage storage themselves instead of requiring an
// initialized, up-to-date database.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Focus session tracker with daily totals, goals and rankings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"ranking_limit": strconv.Itoa(constants.DefaultRankingLimit),
		},
	)

	cfg, err := config.Resolve(config.Config{
		DB:        CLI.DB,
		Timezone:  CLI.Timezone,
		Debug:     CLI.Debug,
		ConfigDir: CLI.ConfigDir,
	})
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Configuration resolved", "backend", cfg.Backend, "source", cfg.Source, "tz", cfg.Timezone)

	store := cli.NewStore(cfg)
	appCtx := cli.NewContext(cfg, store, nil)
	appCtx.JSON = CLI.JSON

	command := strings.Fields(ctx.Command())
	if len(command) > 0 && !skipLoad[command[0]] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	apperrors.Fatal(err)
}
