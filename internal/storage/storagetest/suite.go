// Package storagetest holds behaviour checks shared by every storage.Provider.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

// Run exercises an initialized provider returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Provider) {
	t.Run("PinnedCategoryCreatedOnInit", func(t *testing.T) {
		testPinnedCategory(t, newStore(t))
	})
	t.Run("DefaultSettings", func(t *testing.T) {
		testSettings(t, newStore(t))
	})
	t.Run("TrackerCRUD", func(t *testing.T) {
		testTrackerCRUD(t, newStore(t))
	})
	t.Run("CategoryCRUD", func(t *testing.T) {
		testCategoryCRUD(t, newStore(t))
	})
	t.Run("Records", func(t *testing.T) {
		testRecords(t, newStore(t))
	})
	t.Run("DeleteTrackerCascades", func(t *testing.T) {
		testCascade(t, newStore(t))
	})
}

var base = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func category(id, title string, offset time.Duration) models.Category {
	return models.Category{ID: id, Title: title, CreatedAt: base.Add(offset)}
}

func tracker(id, categoryID string, offset time.Duration) models.Tracker {
	return models.Tracker{
		ID:         id,
		Title:      "Tracker " + id,
		Emoji:      constants.Emojis[0],
		Color:      constants.Colors[0],
		Schedule:   0b1010000,
		CategoryID: categoryID,
		CreatedAt:  base.Add(offset),
	}
}

func testPinnedCategory(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	c, err := s.GetCategory(ctx, constants.PinnedCategoryID)
	if err != nil {
		t.Fatalf("GetCategory(pinned) failed: %v", err)
	}
	if c.Title != constants.PinnedCategoryTitle {
		t.Errorf("pinned title = %q, want %q", c.Title, constants.PinnedCategoryTitle)
	}
	// a second Init must not duplicate or fail
	if err := s.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	all, err := s.FetchAllCategories(ctx)
	if err != nil {
		t.Fatalf("FetchAllCategories failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected only the pinned category, got %d", len(all))
	}
}

func testSettings(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	settings, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.Timezone != constants.DefaultTimezone || settings.DefaultFilter != constants.DefaultFilter {
		t.Errorf("unexpected defaults: %+v", settings)
	}

	settings.Timezone = "UTC"
	settings.DefaultFilter = constants.FilterNotCompleted
	if err := s.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != settings {
		t.Errorf("GetSettings() = %+v, want %+v", got, settings)
	}
}

func testTrackerCRUD(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	if err := s.InsertCategory(ctx, category("work", "Work", 0)); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}

	later := tracker("b", "work", time.Hour)
	earlier := tracker("a", "work", 0)
	for _, tr := range []models.Tracker{later, earlier} {
		if err := s.InsertTracker(ctx, tr); err != nil {
			t.Fatalf("InsertTracker(%s) failed: %v", tr.ID, err)
		}
	}

	all, err := s.FetchAllTrackers(ctx)
	if err != nil {
		t.Fatalf("FetchAllTrackers failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("FetchAllTrackers() not in creation order: %+v", all)
	}

	pinned := earlier
	pinned.IsPinned = true
	pinned.CategoryID = constants.PinnedCategoryID
	pinned.OriginalCategoryID = "work"
	if err := s.UpdateTracker(ctx, pinned); err != nil {
		t.Fatalf("UpdateTracker failed: %v", err)
	}

	got, err := s.GetTracker(ctx, "a")
	if err != nil {
		t.Fatalf("GetTracker failed: %v", err)
	}
	if !got.IsPinned || got.CategoryID != constants.PinnedCategoryID || got.OriginalCategoryID != "work" {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.CreatedAt.Equal(earlier.CreatedAt) || got.Schedule != earlier.Schedule {
		t.Errorf("round trip changed fields: %+v", got)
	}

	if _, err := s.GetTracker(ctx, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetTracker(missing) = %v, want ErrNotFound", err)
	}
	if err := s.UpdateTracker(ctx, tracker("missing", "work", 0)); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateTracker(missing) = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTracker(ctx, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteTracker(missing) = %v, want ErrNotFound", err)
	}
}

func testCategoryCRUD(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	if err := s.InsertCategory(ctx, category("home", "Home", time.Hour)); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	if err := s.InsertCategory(ctx, category("home2", "HOME", 2*time.Hour)); err == nil {
		t.Error("expected duplicate title to be rejected")
	}

	if err := s.DeleteCategory(ctx, "home"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if _, err := s.GetCategory(ctx, "home"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetCategory after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteCategory(ctx, "home"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteCategory twice = %v, want ErrNotFound", err)
	}
}

func testRecords(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	if err := s.InsertCategory(ctx, category("work", "Work", 0)); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		if err := s.InsertTracker(ctx, tracker(id, "work", 0)); err != nil {
			t.Fatalf("InsertTracker failed: %v", err)
		}
	}

	records := []models.TrackerRecord{
		{TrackerID: "a", Date: "2024-01-10"},
		{TrackerID: "b", Date: "2024-01-10"},
		{TrackerID: "a", Date: "2024-01-11"},
	}
	for _, r := range records {
		if err := s.InsertRecord(ctx, r); err != nil {
			t.Fatalf("InsertRecord(%+v) failed: %v", r, err)
		}
	}
	if err := s.InsertRecord(ctx, records[0]); err == nil {
		t.Error("expected duplicate record to be rejected")
	}

	day, err := s.FetchRecordsForDay(ctx, "2024-01-10")
	if err != nil {
		t.Fatalf("FetchRecordsForDay failed: %v", err)
	}
	if len(day) != 2 {
		t.Errorf("FetchRecordsForDay() returned %d records, want 2", len(day))
	}

	if n, _ := s.FetchRecordCount(ctx, "a"); n != 2 {
		t.Errorf("FetchRecordCount(a) = %d, want 2", n)
	}
	if n, _ := s.FetchTotalRecordCount(ctx); n != 3 {
		t.Errorf("FetchTotalRecordCount() = %d, want 3", n)
	}
	if ok, _ := s.HasRecord(ctx, "b", "2024-01-11"); ok {
		t.Error("HasRecord reported a record that does not exist")
	}

	if err := s.DeleteRecord(ctx, "a", "2024-01-10"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if ok, _ := s.HasRecord(ctx, "a", "2024-01-10"); ok {
		t.Error("record still present after DeleteRecord")
	}
	if err := s.DeleteRecord(ctx, "a", "2024-01-10"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteRecord twice = %v, want ErrNotFound", err)
	}

	all, err := s.FetchAllRecords(ctx)
	if err != nil {
		t.Fatalf("FetchAllRecords failed: %v", err)
	}
	if len(all) != 2 || all[0].Date != "2024-01-10" || all[1].Date != "2024-01-11" {
		t.Errorf("FetchAllRecords() = %+v", all)
	}
}

func testCascade(t *testing.T, s storage.Provider) {
	ctx := context.Background()
	if err := s.InsertCategory(ctx, category("work", "Work", 0)); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	if err := s.InsertTracker(ctx, tracker("a", "work", 0)); err != nil {
		t.Fatalf("InsertTracker failed: %v", err)
	}
	for _, day := range []string{"2024-01-08", "2024-01-10"} {
		if err := s.InsertRecord(ctx, models.TrackerRecord{TrackerID: "a", Date: day}); err != nil {
			t.Fatalf("InsertRecord failed: %v", err)
		}
	}

	if err := s.DeleteTracker(ctx, "a"); err != nil {
		t.Fatalf("DeleteTracker failed: %v", err)
	}
	if n, _ := s.FetchTotalRecordCount(ctx); n != 0 {
		t.Errorf("expected records to be deleted with tracker, %d remain", n)
	}
}
