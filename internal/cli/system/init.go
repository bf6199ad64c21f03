package system

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.IsFileBacked() {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Keep a copy of what is about to be wiped
			ctx.PerformAutomaticBackup()
			// Close first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}

	return ctx.Render(map[string]string{"path": ctx.Store.GetConfigPath()}, func(w io.Writer) {
		fmt.Fprintf(w, "Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())
	})
}
