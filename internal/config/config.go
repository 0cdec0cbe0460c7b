package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/tracker/internal/constants"
)

// Config is the on-disk configuration read before any store is opened.
// User preferences that travel with the data live in the settings table.
type Config struct {
	LogDir   string         `toml:"log_dir"`
	Debug    bool           `toml:"debug"`
	Database DatabaseConfig `toml:"database"`
	Backup   BackupConfig   `toml:"backup"`
}

// DatabaseConfig selects the store. Path is a SQLite file, ":memory:", or a
// postgres connection string without a password.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// BackupConfig controls automatic backups of SQLite stores.
type BackupConfig struct {
	Keep      int  `toml:"keep"`
	OnStartup bool `toml:"on_startup"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir := ExpandHome(constants.DefaultConfigDir)
	return &Config{
		LogDir:   filepath.Join(dir, "logs"),
		Database: DatabaseConfig{Path: ExpandHome(constants.DefaultDBPath)},
		Backup:   BackupConfig{Keep: constants.MaxBackups},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r over the defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogDir = ExpandHome(cfg.LogDir)
	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	if cfg.Backup.Keep <= 0 {
		cfg.Backup.Keep = constants.MaxBackups
	}
	return cfg, nil
}

// Write encodes cfg to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(ExpandHome(path))
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := (&Manager{}).Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory as needed.
func Save(path string, cfg *Config) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := (&Manager{}).Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// IsPostgres reports whether a database path is a postgres connection string.
func IsPostgres(path string) bool {
	return strings.HasPrefix(path, "postgres://") ||
		strings.HasPrefix(path, "postgresql://") ||
		strings.Contains(path, "host=")
}
