package storage

import (
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

// CheckTrackerRow reports rows that cannot be rebuilt into a tracker.
func CheckTrackerRow(t models.Tracker) error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: tracker row without id", errors.ErrConversion)
	case t.Title == "":
		return fmt.Errorf("%w: tracker %s has no title", errors.ErrConversion, t.ID)
	case t.Emoji == "":
		return fmt.Errorf("%w: tracker %s has no emoji", errors.ErrConversion, t.ID)
	case t.Color == "":
		return fmt.Errorf("%w: tracker %s has no color", errors.ErrConversion, t.ID)
	case t.CategoryID == "":
		return fmt.Errorf("%w: tracker %s has no category", errors.ErrConversion, t.ID)
	}
	return nil
}

// CheckCategoryRow reports rows that cannot be rebuilt into a category.
func CheckCategoryRow(c models.Category) error {
	if c.ID == "" || c.Title == "" {
		return fmt.Errorf("%w: category row %q is incomplete", errors.ErrConversion, c.ID)
	}
	return nil
}

// ParseTimestamp parses a stored RFC3339 timestamp, tagging failures as conversion errors.
func ParseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to parse %s: %v", errors.ErrConversion, field, err)
	}
	return t, nil
}

// ParseDay validates a stored YYYY-MM-DD record day.
func ParseDay(value string) (string, error) {
	t, err := time.Parse(constants.DateFormat, value)
	if err != nil {
		return "", fmt.Errorf("%w: invalid record day %q", errors.ErrConversion, value)
	}
	return t.Format(constants.DateFormat), nil
}

// SkipRow logs a malformed row that is left out of a result set.
func SkipRow(kind string, err error) {
	logger.Warn("Skipping malformed row", "kind", kind, "error", err)
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() models.Settings {
	s := models.Settings{}
	models.ApplyDefaultSettings(&s)
	return s
}

// PinnedCategory returns the reserved pinned category.
func PinnedCategory(createdAt time.Time) models.Category {
	return models.Category{
		ID:        constants.PinnedCategoryID,
		Title:     constants.PinnedCategoryTitle,
		CreatedAt: createdAt,
	}
}

// Identifiers returned by GetConfigPath for stores without a database file.
const (
	MemoryPath   = ":memory:"
	PostgresPath = "postgresql"
)
