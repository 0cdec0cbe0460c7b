// Package lock keeps two interactive sessions from writing the same database.
// The lockfile holds "pid|executable"; a lock whose process is gone or now
// runs a different program is stale and gets taken over.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	executableFunc  = func() string { return filepath.Base(os.Args[0]) }
	pidFunc         = os.Getpid
)

// ErrLocked is returned when another live process holds the lock.
var ErrLocked = errors.New("another tracker session is running")

// Lock is a held lockfile.
type Lock struct {
	path string
	pid  int
}

// Options tune acquisition. Zero values use the package defaults.
type Options struct {
	Wait     time.Duration
	Interval time.Duration
}

// Acquire takes the lock in dir, waiting up to the configured time for a live
// holder to go away.
func Acquire(dir string, opts Options) (*Lock, error) {
	if opts.Wait == 0 {
		opts.Wait = constants.LockAcquireWait
	}
	if opts.Interval == 0 {
		opts.Interval = constants.LockRetryInterval
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := filepath.Join(dir, constants.LockfileName)
	deadline := time.Now().Add(opts.Wait)
	for {
		l, err := tryAcquire(path)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrLocked) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(opts.Interval)
	}
}

func tryAcquire(path string) (*Lock, error) {
	pid := pidFunc()
	content := fmt.Sprintf("%d|%s", pid, executableFunc())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err == nil {
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("failed to write lockfile: %w", err)
		}
		return &Lock{path: path, pid: pid}, nil
	}
	if !os.IsExist(err) {
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}

	holder, alive := inspect(path)
	if alive {
		return nil, fmt.Errorf("%w (pid %d)", ErrLocked, holder)
	}
	logger.Warn("Removing stale lockfile", "path", path, "pid", holder)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
	}
	// lost a race with another process that also saw the stale lock
	return nil, ErrLocked
}

// inspect reads the lockfile and reports its holder and whether that process
// is still the program that wrote it.
func inspect(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	parts := strings.SplitN(strings.TrimSpace(string(content)), "|", 2)
	if len(parts) != 2 {
		return 0, false
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return 0, false
	}
	if pid == pidFunc() {
		return pid, true
	}

	proc, err := findProcessFunc(pid)
	if err != nil || proc == nil {
		return pid, false
	}
	return pid, proc.Executable() == parts[1]
}

// Held reports whether a live process other than this one holds the lock in dir.
func Held(dir string) (int, bool) {
	pid, alive := inspect(filepath.Join(dir, constants.LockfileName))
	return pid, alive && pid != pidFunc()
}

// Release removes the lockfile if this process still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(content), strconv.Itoa(l.pid)+"|") {
		return nil
	}
	return os.Remove(l.path)
}
