package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage/sqlite"
	"github.com/julianstephens/tracker/internal/testutil"
)

func setupTestDB(t *testing.T, categories ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	for i, title := range categories {
		c := models.Category{ID: title, Title: title, CreatedAt: time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC)}
		if err := store.InsertCategory(context.Background(), c); err != nil {
			t.Fatalf("failed to insert category: %v", err)
		}
	}
	return dbPath
}

func countCategories(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
		t.Fatalf("failed to count categories: %v", err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t, "Work", "Home")
	clock := testutil.FixedClock()
	mgr := NewManager(dbPath, WithClock(clock))

	b, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Name != "tracker-20240110-103000.db" {
		t.Errorf("unexpected backup name %q", b.Name)
	}
	if filepath.Dir(b.Path) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written outside backup dir: %s", b.Path)
	}
	// pinned + Work + Home
	if got := countCategories(t, b.Path); got != 3 {
		t.Errorf("expected 3 categories in backup, got %d", got)
	}
}

func TestCreateSameSecondGetsSuffix(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(testutil.FixedClock()))

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Path == second.Path {
		t.Fatal("backups taken in the same second share a path")
	}
	if !strings.HasSuffix(second.Name, "-1"+constants.BackupFileSuffix) {
		t.Errorf("expected counter suffix, got %q", second.Name)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected both backups listed, got %d", len(backups))
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	clock := testutil.FixedClock()
	mgr := NewManager(dbPath, WithClock(clock), WithRetention(3))

	for i := 0; i < 5; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		clock.Advance(time.Minute)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
	// the two oldest are gone
	if backups[2].Name != "tracker-20240110-103200.db" {
		t.Errorf("oldest kept backup = %s", backups[2].Name)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups before the directory exists, got %d", len(backups))
	}

	if err := os.MkdirAll(mgr.Dir(), 0o700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "tracker-garbage.db", "tracker-20240110-103000-x.db", "habits-20240110-1030.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("foreign files were listed: %+v", backups)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t, "Work")
	clock := testutil.FixedClock()
	mgr := NewManager(dbPath, WithClock(clock))

	b, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	extra := models.Category{ID: "home", Title: "Home", CreatedAt: clock.Now()}
	if err := store.InsertCategory(context.Background(), extra); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	store.Close()
	if got := countCategories(t, dbPath); got != 3 {
		t.Fatalf("expected 3 categories before restore, got %d", got)
	}

	clock.Advance(time.Hour)
	safety, err := mgr.Restore(b.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := countCategories(t, dbPath); got != 2 {
		t.Errorf("expected 2 categories after restore, got %d", got)
	}
	if safety.Path == "" || countCategories(t, safety.Path) != 3 {
		t.Errorf("safety backup should hold the pre-restore state: %+v", safety)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("expected error restoring a corrupted backup")
	}

	// a valid SQLite file without tracker tables is rejected too
	other := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", other)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE notes (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if err := Verify(other); err == nil {
		t.Error("expected Verify to reject a foreign database")
	}

	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error restoring a missing file")
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error when the database does not exist")
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupTestDB(t)
	clock := testutil.FixedClock()
	mgr := NewManager(dbPath, WithClock(clock))

	if _, err := mgr.Resolve("latest"); err == nil {
		t.Error("expected error resolving latest with no backups")
	}

	first, _ := mgr.Create()
	clock.Advance(time.Minute)
	second, _ := mgr.Create()

	tests := []struct {
		ref  string
		want string
	}{
		{"latest", second.Path},
		{first.Name, first.Path},
		{first.Path, first.Path},
	}
	for _, tt := range tests {
		got, err := mgr.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.ref, err)
			continue
		}
		if got.Path != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got.Path, tt.want)
		}
	}

	if _, err := mgr.Resolve("nope.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
