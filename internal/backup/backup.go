package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/utils"
)

const stampLayout = "20060102-150405"

// Backup describes one snapshot file in the backup directory.
type Backup struct {
	Name      string
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager creates, lists and restores copies of a SQLite tracker database.
type Manager struct {
	dbPath    string
	backupDir string
	clock     utils.Clock
	keep      int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to stamp backup names.
func WithClock(c utils.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithRetention sets how many backups survive rotation.
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

// NewManager returns a Manager that keeps backups next to dbPath.
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		clock:     utils.RealClock{},
		keep:      constants.MaxBackups,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a new backup and prunes the oldest beyond the retention limit.
func (m *Manager) Create() (Backup, error) {
	b, err := m.create()
	if err != nil {
		return Backup{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return b, nil
}

func (m *Manager) create() (Backup, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Backup{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return Backup{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.clock.Now()
	path, err := m.freePath(now)
	if err != nil {
		return Backup{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Backup{}, fmt.Errorf("failed to back up database: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Backup{}, err
	}
	logger.Info("Backup created", "path", path, "size", info.Size())
	return Backup{Name: filepath.Base(path), Path: path, Timestamp: now, Size: info.Size()}, nil
}

// freePath picks a file name for a backup taken at t. Collisions within the
// same second get a numeric suffix.
func (m *Manager) freePath(t time.Time) (string, error) {
	stamp := t.Format(stampLayout)
	path := filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	for n := 1; n <= 100; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		name := fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, n, constants.BackupFileSuffix)
		path = filepath.Join(m.backupDir, name)
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", "file:"+src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := checkTrackerSchema(db); err != nil {
		return fmt.Errorf("source database is not usable: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		return copyFile(src, dst)
	}
	return nil
}

// List returns the backups on disk, newest first. Files that do not follow
// the naming scheme are ignored.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Backup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Backup{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Name:      entry.Name(),
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stamp) < len(stampLayout) {
		return time.Time{}, false
	}
	if rest := stamp[len(stampLayout):]; rest != "" && !isCounter(rest) {
		return time.Time{}, false
	}
	ts, err := time.Parse(stampLayout, stamp[:len(stampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func isCounter(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Resolve finds a backup by file name or path. "latest" picks the newest.
func (m *Manager) Resolve(ref string) (Backup, error) {
	backups, err := m.List()
	if err != nil {
		return Backup{}, err
	}
	if ref == "latest" {
		if len(backups) == 0 {
			return Backup{}, fmt.Errorf("no backups in %s", m.backupDir)
		}
		return backups[0], nil
	}
	for _, b := range backups {
		if b.Name == ref || b.Path == ref {
			return b, nil
		}
	}
	info, err := os.Stat(ref)
	if err != nil {
		return Backup{}, fmt.Errorf("backup %q not found", ref)
	}
	return Backup{Name: filepath.Base(ref), Path: ref, Size: info.Size()}, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Name, err)
		}
		logger.Debug("Old backup removed", "path", backups[i].Path)
	}
	return nil
}

// Restore replaces the database with the backup at path. The current
// database is backed up first and that safety copy is returned. The store
// must be closed while restoring.
func (m *Manager) Restore(path string) (Backup, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Backup{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := Verify(path); err != nil {
		return Backup{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety Backup
	if _, err := os.Stat(m.dbPath); err == nil {
		b, err := m.create()
		if err != nil {
			return Backup{}, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		safety = b
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return safety, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return safety, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Database restored", "from", path, "safety", safety.Path)
	return safety, nil
}

// Verify checks that path is a SQLite database holding the tracker tables.
func Verify(path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return checkTrackerSchema(db)
}

func checkTrackerSchema(db *sql.DB) error {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('trackers', 'categories', 'tracker_records')",
	).Scan(&n)
	if err != nil {
		return err
	}
	if n != 3 {
		return fmt.Errorf("missing tracker tables")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
