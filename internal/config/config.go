// Package config resolves the global settings every command runs with.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/keyring"
	"github.com/julianstephens/focusbank/internal/storage/memory"
	"github.com/julianstephens/focusbank/internal/storage/postgres"
)

// Source records where the database setting came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceKeyring Source = "keyring"
	SourceDefault Source = "default"
)

// Backend names the storage implementation a database setting selects.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// Config holds the global flags. Environment fallbacks are applied by the
// flag parser before Resolve runs.
type Config struct {
	DB        string
	Timezone  string
	Debug     bool
	ConfigDir string
}

// Resolved is a validated Config ready to open a store with.
type Resolved struct {
	Config
	Backend  Backend
	Source   Source
	Location *time.Location
}

// Resolve expands paths, validates the timezone and picks the database. An
// empty DB setting falls back to a connection string stored in the OS keyring
// and then to the SQLite file in the config directory.
func Resolve(cfg Config) (Resolved, error) {
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Dir(constants.DefaultConfigPath)
	}
	dir, err := ExpandHome(cfg.ConfigDir)
	if err != nil {
		return Resolved{}, err
	}
	cfg.ConfigDir = dir

	loc, err := calendar.LoadLocation(cfg.Timezone)
	if err != nil {
		return Resolved{}, err
	}
	if cfg.Timezone == "" {
		cfg.Timezone = constants.DefaultTimezone
	}

	r := Resolved{Config: cfg, Location: loc, Source: SourceFlag}

	if strings.TrimSpace(cfg.DB) == "" {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			r.DB = connStr
			r.Source = SourceKeyring
		case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
			r.DB = filepath.Join(cfg.ConfigDir, filepath.Base(constants.DefaultConfigPath))
			r.Source = SourceDefault
		default:
			return Resolved{}, err
		}
	}

	switch {
	case r.DB == memory.DSN:
		r.Backend = BackendMemory
	case postgres.IsConnString(r.DB):
		r.Backend = BackendPostgres
		// The keyring is encrypted storage, so only flags and the
		// environment must stay free of passwords.
		if r.Source != SourceKeyring {
			if _, err := postgres.ValidateConnString(r.DB); err != nil {
				return Resolved{}, err
			}
		}
	default:
		r.Backend = BackendSQLite
		path, err := ExpandHome(r.DB)
		if err != nil {
			return Resolved{}, err
		}
		r.DB = path
	}

	return r, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
