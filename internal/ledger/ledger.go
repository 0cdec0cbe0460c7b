// Package ledger records which trackers were completed on which days.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// Store is the slice of storage.Provider the ledger needs.
type Store interface {
	GetTracker(ctx context.Context, id string) (models.Tracker, error)
	FetchRecordsForDay(ctx context.Context, day string) ([]models.TrackerRecord, error)
	FetchRecordCount(ctx context.Context, trackerID string) (int, error)
	FetchTotalRecordCount(ctx context.Context) (int, error)
	FetchAllRecords(ctx context.Context) ([]models.TrackerRecord, error)
	HasRecord(ctx context.Context, trackerID, day string) (bool, error)
	InsertRecord(ctx context.Context, r models.TrackerRecord) error
	DeleteRecord(ctx context.Context, trackerID, day string) error
}

// Ledger answers completion queries. It holds no state of its own; callers
// serialize mutations.
type Ledger struct {
	store Store
	clock utils.Clock
	loc   *time.Location
}

// New creates a ledger. A nil clock means the wall clock; a nil location means UTC.
func New(store Store, clock utils.Clock, loc *time.Location) *Ledger {
	if clock == nil {
		clock = utils.RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{store: store, clock: clock, loc: loc}
}

// Day normalizes t to its calendar day key in the ledger's location.
func (l *Ledger) Day(t time.Time) string {
	return utils.DayKey(utils.StartOfDay(t.In(l.loc)))
}

// Today returns the start of the current day in the ledger's location.
func (l *Ledger) Today() time.Time {
	return utils.StartOfDay(l.clock.Now().In(l.loc))
}

// Toggle flips the completion state of trackerID on date's day and returns the
// new state. Days after today are rejected with ErrFutureDate.
func (l *Ledger) Toggle(ctx context.Context, trackerID string, date time.Time) (bool, error) {
	day := utils.StartOfDay(date.In(l.loc))
	if day.After(l.Today()) {
		return false, fmt.Errorf("%w: %s", errors.ErrFutureDate, utils.DayKey(day))
	}
	if _, err := l.store.GetTracker(ctx, trackerID); err != nil {
		return false, err
	}

	key := utils.DayKey(day)
	exists, err := l.store.HasRecord(ctx, trackerID, key)
	if err != nil {
		return false, fmt.Errorf("failed to look up record: %w", err)
	}

	if exists {
		if err := l.store.DeleteRecord(ctx, trackerID, key); err != nil {
			return true, fmt.Errorf("failed to delete record: %w", err)
		}
		logger.Debug("Completion removed", "tracker", trackerID, "day", key)
		return false, nil
	}

	if err := l.store.InsertRecord(ctx, models.TrackerRecord{TrackerID: trackerID, Date: key}); err != nil {
		return false, fmt.Errorf("failed to insert record: %w", err)
	}
	logger.Debug("Completion recorded", "tracker", trackerID, "day", key)
	return true, nil
}

// IsCompleted reports whether trackerID has a record on date's day.
func (l *Ledger) IsCompleted(ctx context.Context, trackerID string, date time.Time) (bool, error) {
	return l.store.HasRecord(ctx, trackerID, l.Day(date))
}

// CompletionCount returns the number of days trackerID was completed.
func (l *Ledger) CompletionCount(ctx context.Context, trackerID string) (int, error) {
	return l.store.FetchRecordCount(ctx, trackerID)
}

// TotalCompletions returns the number of records across all trackers.
func (l *Ledger) TotalCompletions(ctx context.Context) (int, error) {
	return l.store.FetchTotalRecordCount(ctx)
}

// CompletedTrackerIDs returns the trackers completed on date's day.
func (l *Ledger) CompletedTrackerIDs(ctx context.Context, date time.Time) (map[string]bool, error) {
	records, err := l.store.FetchRecordsForDay(ctx, l.Day(date))
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		ids[r.TrackerID] = true
	}
	return ids, nil
}
