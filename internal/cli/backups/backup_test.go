package backups

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/tracker/internal/backup"
	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(context.Background(), store, config.Config{Timezone: "UTC"})
	t.Cleanup(func() {
		ctx.Close()
		store.Close()
	})
	return ctx, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, dbPath := setupTestContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list on empty dir failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(dbPath), constants.BackupDirName))
	if err != nil {
		t.Fatalf("failed to read backup dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 backup, got %d", len(entries))
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, dbPath := setupTestContext(t)
	bg := context.Background()

	svc, _ := ctx.Service()
	tracker := models.NewTracker("Read", models.EveryDay(), constants.EmojiPalette[0], constants.ColorPalette[0])
	if err := svc.CreateTracker(bg, tracker, "Mind"); err != nil {
		t.Fatalf("failed to create tracker: %v", err)
	}

	path, err := backup.NewManager(dbPath).Create(bg)
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := svc.DeleteTracker(bg, tracker.ID); err != nil {
		t.Fatalf("failed to delete tracker: %v", err)
	}

	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(path), Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load restored database: %v", err)
	}
	defer store.Close()
	if _, err := store.GetTracker(bg, tracker.ID); err != nil {
		t.Errorf("expected restored tracker: %v", err)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&BackupRestoreCmd{BackupFile: "tracker-20200101-000000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected a missing backup to fail")
	}
}
