package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/backup"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/lock"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/tracker"
	"github.com/julianstephens/tracker/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Store    storage.Provider
	Config   *config.Config
	Timezone string
	Clock    utils.Clock
	Out      io.Writer
	In       io.Reader

	svc    *tracker.Service
	reader *bufio.Reader
}

// Option configures a Context.
type Option func(*Context)

// WithClock replaces the wall clock.
func WithClock(c utils.Clock) Option { return func(ctx *Context) { ctx.Clock = c } }

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(ctx *Context) {
		ctx.In = in
		ctx.Out = out
	}
}

// WithTimezone overrides the timezone stored in settings.
func WithTimezone(tz string) Option { return func(ctx *Context) { ctx.Timezone = tz } }

// WithConfig sets the loaded configuration.
func WithConfig(cfg *config.Config) Option { return func(ctx *Context) { ctx.Config = cfg } }

// NewContext wires a command context around store.
func NewContext(store storage.Provider, opts ...Option) *Context {
	c := &Context{
		Store:  store,
		Config: config.Default(),
		Clock:  utils.RealClock{},
		Out:    os.Stdout,
		In:     os.Stdin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the tracker service, building it on first use from the
// stored settings. The store must be loaded.
func (c *Context) Service() (*tracker.Service, error) {
	if c.svc != nil {
		return c.svc, nil
	}

	tz := c.Timezone
	if tz == "" {
		settings, err := c.Store.GetSettings(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		tz = settings.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	c.svc = tracker.NewService(c.Store, tracker.WithClock(c.Clock), tracker.WithLocation(loc))
	return c.svc, nil
}

// ResetService drops the cached service so the next call rereads settings.
func (c *Context) ResetService() {
	c.svc = nil
}

// ParseDay turns a YYYY-MM-DD flag into a date in the service location.
// An empty string means today.
func (c *Context) ParseDay(s string) (time.Time, error) {
	svc, err := c.Service()
	if err != nil {
		return time.Time{}, err
	}
	if s == "" || s == "today" {
		return svc.Today(), nil
	}
	if s == "yesterday" {
		return svc.Today().AddDate(0, 0, -1), nil
	}
	d, err := utils.ParseDateInLocation(s, svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question and defaults to no.
func (c *Context) Confirm(prompt string) (bool, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	c.Printf("%s [y/N]: ", prompt)
	answer, err := c.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

// IsSQLite reports whether the store is backed by a database file.
func (c *Context) IsSQLite() bool {
	path := c.Store.GetConfigPath()
	return path != storage.MemoryPath && path != storage.PostgresPath
}

// LockDir is where the interactive session lockfile lives.
func (c *Context) LockDir() string {
	if c.IsSQLite() {
		return filepath.Dir(c.Store.GetConfigPath())
	}
	return config.ExpandHome(constants.DefaultConfigDir)
}

// RequireNoSession fails with lock.ErrLocked while another process holds the
// session lock. Call it before replacing the database file.
func (c *Context) RequireNoSession() error {
	if pid, held := lock.Held(c.LockDir()); held {
		return fmt.Errorf("%w (pid %d); close it before replacing the database", lock.ErrLocked, pid)
	}
	return nil
}

// BackupManager returns a backup manager for the SQLite database.
func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Store.GetConfigPath(),
		backup.WithClock(c.Clock),
		backup.WithRetention(c.Config.Backup.Keep),
	)
}

// PerformAutomaticBackup creates a backup and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	if _, err := c.BackupManager().Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
