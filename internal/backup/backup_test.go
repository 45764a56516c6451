package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE categories (id TEXT PRIMARY KEY, title TEXT NOT NULL UNIQUE)`,
		`INSERT INTO categories (id, title) VALUES ('c1', 'Sport')`,
		`INSERT INTO categories (id, title) VALUES ('c2', 'Mind')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}
	return dbPath
}

// newTestManager returns a manager whose clock advances one second per backup.
func newTestManager(dbPath string) *Manager {
	mgr := NewManager(dbPath)
	current := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	return mgr
}

func countCategories(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatalf("failed to query database: %v", err)
	}
	return count
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	backupPath, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(backupPath) != "tracker-20240101-080001.db" {
		t.Errorf("unexpected backup name: %s", filepath.Base(backupPath))
	}
	if got := countCategories(t, backupPath); got != 2 {
		t.Errorf("expected 2 rows in backup, got %d", got)
	}
}

func TestCreateBackupWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)
	ctx := context.Background()

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.Create(ctx); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}
	// ignored: wrong prefix
	if err := os.WriteFile(filepath.Join(mgr.Dir(), "notes.db"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		path, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		name := filepath.Base(path)
		if seen[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		seen[name] = true
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 5 {
		t.Errorf("expected counter-suffixed backups to be listed, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)
	ctx := context.Background()

	backupPath, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("INSERT INTO categories (id, title) VALUES ('c3', 'Home')"); err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}
	db.Close()

	previous, err := mgr.Restore(ctx, backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := countCategories(t, dbPath); got != 2 {
		t.Errorf("expected 2 rows after restore, got %d", got)
	}
	if previous == "" {
		t.Fatal("expected the current database to be backed up before restoring")
	}
	if got := countCategories(t, previous); got != 3 {
		t.Errorf("expected pre-restore backup to hold 3 rows, got %d", got)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	if err := os.MkdirAll(mgr.Dir(), 0o700); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(mgr.Dir(), "invalid.db")
	if err := os.WriteFile(invalid, []byte("not a database"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.Restore(context.Background(), invalid); err == nil {
		t.Fatal("expected restore from an invalid file to fail")
	}
	if got := countCategories(t, dbPath); got != 2 {
		t.Errorf("database changed after failed restore: %d rows", got)
	}
}

func TestJSONBackup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tracker.json")
	if err := os.WriteFile(dbPath, []byte(`{"version":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	mgr := newTestManager(dbPath)

	backupPath, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("expected a .json backup, got %s", backupPath)
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"version":1}` {
		t.Errorf("unexpected backup content: %s", data)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	backupPath, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := mgr.Resolve(filepath.Base(backupPath))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != backupPath {
		t.Errorf("expected %s, got %s", backupPath, got)
	}
	if _, err := mgr.Resolve("tracker-19990101-000000.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
