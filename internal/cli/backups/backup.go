package backups

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/julianstephens/focusbank/internal/backup"
	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/logger"
)

var errNotFileBacked = errors.New("backups are only supported for SQLite storage")

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	if mgr == nil {
		return errNotFileBacked
	}

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	return ctx.Render(map[string]string{"path": backupPath}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Backup created: %s\n", filepath.Base(backupPath))
	})
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	if mgr == nil {
		return errNotFileBacked
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	return ctx.Render(backups, func(w io.Writer) {
		if len(backups) == 0 {
			fmt.Fprintln(w, "No backups found.")
			fmt.Fprintf(w, "Backups are stored in: %s\n", mgr.GetBackupDir())
			return
		}

		fmt.Fprintf(w, "Available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
		for _, b := range backups {
			sizeKB := float64(b.Size) / 1024.0
			fmt.Fprintf(w, "  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), sizeKB)
		}
		fmt.Fprintf(w, "\nBackup directory: %s\n", mgr.GetBackupDir())
	})
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := ctx.BackupManager()
	if mgr == nil {
		return errNotFileBacked
	}

	backupPath, err := mgr.ResolvePath(c.BackupFile)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Printf("⚠️  WARNING: This will replace your current database with the backup.\n")
		ctx.Printf("A backup of your current database will be created before restoring.\n")
		ctx.Printf("\nRestore from: %s\n", filepath.Base(backupPath))
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Printf("Restore cancelled.\n")
			return nil
		}
	}

	// Close the current store connection before restoring
	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database connection", "error", err)
	}

	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	if previous != "" {
		ctx.Printf("Created backup of current database: %s\n", filepath.Base(previous))
	}
	ctx.Printf("✓ Database restored successfully!\n")
	ctx.Printf("Restart any running %s processes to use the restored database.\n", constants.AppName)
	return nil
}
