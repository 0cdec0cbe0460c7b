package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/tracker/internal/constants"
)

// HoldLock writes a session lockfile in dir that names the parent of the
// test binary, a live process other than this one.
func HoldLock(t *testing.T, dir string) int {
	t.Helper()
	ppid := os.Getppid()
	proc, err := ps.FindProcess(ppid)
	if err != nil || proc == nil {
		t.Skipf("cannot inspect parent process %d: %v", ppid, err)
	}
	content := fmt.Sprintf("%d|%s", ppid, proc.Executable())
	path := filepath.Join(dir, constants.LockfileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write lockfile: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })
	return ppid
}
