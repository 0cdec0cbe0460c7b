package storage

import (
	"context"

	"github.com/julianstephens/tracker/internal/models"
)

// Provider is the persistence collaborator behind the tracker service.
// Lookups of unknown IDs return an error wrapping errors.ErrNotFound.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Trackers
	FetchAllTrackers(ctx context.Context) ([]models.Tracker, error)
	GetTracker(ctx context.Context, id string) (models.Tracker, error)
	InsertTracker(ctx context.Context, t models.Tracker) error
	UpdateTracker(ctx context.Context, t models.Tracker) error
	// DeleteTracker removes the tracker together with all of its records.
	DeleteTracker(ctx context.Context, id string) error

	// Categories
	FetchAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
	InsertCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Records. Days are YYYY-MM-DD.
	FetchRecordsForDay(ctx context.Context, day string) ([]models.TrackerRecord, error)
	FetchRecordCount(ctx context.Context, trackerID string) (int, error)
	FetchTotalRecordCount(ctx context.Context) (int, error)
	FetchAllRecords(ctx context.Context) ([]models.TrackerRecord, error)
	HasRecord(ctx context.Context, trackerID, day string) (bool, error)
	InsertRecord(ctx context.Context, r models.TrackerRecord) error
	DeleteRecord(ctx context.Context, trackerID, day string) error

	// Utils
	GetConfigPath() string
}
