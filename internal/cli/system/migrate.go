package system

import (
	"fmt"

	"github.com/julianstephens/focusbank/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports SQL storage")
	}

	// Migrations rewrite the schema, so take a copy first
	ctx.PerformAutomaticBackup()

	count, err := migrator.Migrate(func(msg string) {
		ctx.Printf("%s\n", msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Printf("No migrations to apply. Database is up to date.\n")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
