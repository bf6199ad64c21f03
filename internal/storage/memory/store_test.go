package memory

import (
	"testing"

	"github.com/julianstephens/focusbank/internal/storage"
	"github.com/julianstephens/focusbank/internal/storage/storagetest"
)

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return New()
	})
}

func TestStoreConfigPath(t *testing.T) {
	if got := New().GetConfigPath(); got != DSN {
		t.Errorf("GetConfigPath() = %q, want %q", got, DSN)
	}
}
