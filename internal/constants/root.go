package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

// FilterMode selects which trackers a visibility query keeps
type FilterMode string

const (
	AppName            = "tracker"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/tracker"
	DefaultConfigPath  = "~/.config/tracker/config.toml"
	DefaultDBPath      = "~/.config/tracker/tracker.db"
	ConnectionEnvVar   = "TRACKER_DB_CONNECTION"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tracker-"
	BackupFileSuffix = ".db"

	// Lock constants
	LockfileName      = "tracker.lock"
	LockAcquireWait   = 2 * time.Second
	LockRetryInterval = 100 * time.Millisecond

	// Filter modes
	FilterAll          FilterMode = "all"
	FilterToday        FilterMode = "today"
	FilterCompleted    FilterMode = "completed"
	FilterNotCompleted FilterMode = "not-completed"
)

const (
	StateTrackers SessionState = iota
	StateSearch
	StateAddTracker
	StateConfirmDelete
	StateStats
)

// Reserved categories. The pinned category only ever holds pinned trackers and is
// hidden from category listings; the uncategorized category receives trackers whose
// remembered category disappeared while they were pinned.
const (
	PinnedCategoryID        = "5e04d630-dfd0-420d-8f1f-9c9933c7c7f5"
	PinnedCategoryTitle     = "Pinned"
	UncategorizedCategoryID = "00000000-0000-0000-0000-000000000001"
	UncategorizedTitle      = "Uncategorized"
)

// FilterModes lists the supported filter modes in display order.
var FilterModes = []FilterMode{FilterAll, FilterToday, FilterCompleted, FilterNotCompleted}

// ParseFilterMode maps user input to a FilterMode.
func ParseFilterMode(s string) (FilterMode, bool) {
	for _, m := range FilterModes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}
