package backups

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/focusbank/internal/backup"
	"github.com/julianstephens/focusbank/internal/cli/clitest"
	"github.com/julianstephens/focusbank/internal/config"
	"github.com/julianstephens/focusbank/internal/storage/sqlite"
)

func setup(t *testing.T) *clitest.Harness {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "focusbank.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h := clitest.NewWithStore(t, store, config.BackendSQLite)
	if _, _, err := h.Ctx.Profiles.RegisterUser(context.Background(), "anon-b"); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	return h
}

func record(t *testing.T, h *clitest.Harness, d time.Duration) {
	t.Helper()
	bg := context.Background()
	sess, err := h.Ctx.Sessions.StartFocus(bg, "anon-b")
	if err != nil {
		t.Fatalf("StartFocus failed: %v", err)
	}
	h.Clock.Advance(d)
	if _, err := h.Ctx.Sessions.EndFocus(bg, sess.ID); err != nil {
		t.Fatalf("EndFocus failed: %v", err)
	}
}

func TestBackupCreateAndList(t *testing.T) {
	h := setup(t)

	if err := (&BackupListCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "No backups found.") {
		t.Errorf("unexpected output %q", out)
	}

	if err := (&BackupCreateCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Backup created: focusbank-") {
		t.Errorf("unexpected output %q", out)
	}

	h.Ctx.JSON = true
	if err := (&BackupListCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var list []backup.BackupInfo
	if err := json.Unmarshal([]byte(h.Output()), &list); err != nil {
		t.Fatalf("list output is not JSON: %v", err)
	}
	if len(list) != 1 || list[0].Size == 0 {
		t.Errorf("unexpected backups %+v", list)
	}
}

func TestBackupRestore(t *testing.T) {
	h := setup(t)
	bg := context.Background()

	record(t, h, 30*time.Minute)
	path, err := h.Ctx.BackupManager().CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	record(t, h, 10*time.Minute)

	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(path), Yes: true}).Run(h.Ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "Database restored successfully") || !strings.Contains(out, "Created backup of current database") {
		t.Errorf("unexpected output %q", out)
	}

	if err := h.Ctx.Store.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	day, err := h.Ctx.Reports.GetDailySummary(bg, "anon-b", "2025-09-03")
	if err != nil {
		t.Fatalf("GetDailySummary failed: %v", err)
	}
	if day.TotalSeconds != 1800 {
		t.Errorf("restored total = %d, want 1800", day.TotalSeconds)
	}
}

func TestBackupRestoreConfirmation(t *testing.T) {
	h := setup(t)
	path, err := h.Ctx.BackupManager().CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	h.Ctx.In = strings.NewReader("n\n")
	if err := (&BackupRestoreCmd{BackupFile: path}).Run(h.Ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Restore cancelled.") {
		t.Errorf("unexpected output %q", out)
	}

	// Declining leaves the store open
	if _, err := h.Ctx.Profiles.GetProfile(context.Background(), "anon-b"); err != nil {
		t.Errorf("store should still be usable: %v", err)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	h := setup(t)
	if err := (&BackupRestoreCmd{BackupFile: "focusbank-19990101-000000.db", Yes: true}).Run(h.Ctx); err == nil {
		t.Error("restore of a missing backup should fail")
	}
}

func TestBackupsRequireSQLite(t *testing.T) {
	h := clitest.New(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"create", func() error { return (&BackupCreateCmd{}).Run(h.Ctx) }},
		{"list", func() error { return (&BackupListCmd{}).Run(h.Ctx) }},
		{"restore", func() error { return (&BackupRestoreCmd{BackupFile: "x.db", Yes: true}).Run(h.Ctx) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, errNotFileBacked) {
				t.Errorf("error = %v, want %v", err, errNotFileBacked)
			}
		})
	}
}
