package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage/memory"
	"github.com/julianstephens/tracker/internal/testutil"
)

func setupLedger(t *testing.T, trackers ...models.Tracker) (*Ledger, *memory.Store, *testutil.StubClock) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, tr := range trackers {
		if err := store.InsertTracker(context.Background(), tr); err != nil {
			t.Fatalf("InsertTracker failed: %v", err)
		}
	}
	clock := testutil.FixedClock()
	return New(store, clock, time.UTC), store, clock
}

func newTracker(id string, schedule models.WeekdayMask, created time.Time) models.Tracker {
	return models.Tracker{
		ID: id, Title: "Tracker " + id, Emoji: constants.Emojis[0], Color: constants.Colors[0],
		Schedule: schedule, CategoryID: "c", CreatedAt: created,
	}
}

func TestToggleScenario(t *testing.T) {
	ctx := context.Background()
	jan10 := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)
	l, _, _ := setupLedger(t, newTracker("T", models.AllDays, jan10.AddDate(0, 0, -7)))

	done, err := l.Toggle(ctx, "T", jan10)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !done {
		t.Error("first toggle should mark complete")
	}
	if ok, _ := l.IsCompleted(ctx, "T", jan10); !ok {
		t.Error("IsCompleted should be true after first toggle")
	}
	if n, _ := l.CompletionCount(ctx, "T"); n != 1 {
		t.Errorf("CompletionCount = %d, want 1", n)
	}

	done, err = l.Toggle(ctx, "T", jan10)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if done {
		t.Error("second toggle should mark incomplete")
	}
	if ok, _ := l.IsCompleted(ctx, "T", jan10); ok {
		t.Error("IsCompleted should be false after second toggle")
	}
	if n, _ := l.CompletionCount(ctx, "T"); n != 0 {
		t.Errorf("CompletionCount = %d, want 0", n)
	}
}

func TestToggleNormalizesTimeOfDay(t *testing.T) {
	ctx := context.Background()
	l, store, _ := setupLedger(t, newTracker("T", models.AllDays, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	if _, err := l.Toggle(ctx, "T", time.Date(2024, 1, 9, 1, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	// a later moment on the same day hits the same record
	if done, _ := l.Toggle(ctx, "T", time.Date(2024, 1, 9, 23, 59, 0, 0, time.UTC)); done {
		t.Error("toggling the same day twice should clear the record")
	}
	if n, _ := store.FetchTotalRecordCount(ctx); n != 0 {
		t.Errorf("expected no records, got %d", n)
	}
}

func TestToggleInvolutionAndUniqueness(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l, store, _ := setupLedger(t, newTracker("a", models.AllDays, start), newTracker("b", models.AllDays, start))

	days := []time.Time{start, start.AddDate(0, 0, 3), start.AddDate(0, 0, 9)}
	sequence := []struct {
		id  string
		day time.Time
	}{
		{"a", days[0]}, {"a", days[0]}, {"a", days[0]},
		{"b", days[1]}, {"a", days[1]}, {"b", days[1]},
		{"b", days[2]}, {"a", days[2]}, {"a", days[2]}, {"a", days[2]},
	}

	for _, step := range sequence {
		before, _ := l.IsCompleted(ctx, step.id, step.day)
		if _, err := l.Toggle(ctx, step.id, step.day); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if _, err := l.Toggle(ctx, step.id, step.day); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		after, _ := l.IsCompleted(ctx, step.id, step.day)
		if before != after {
			t.Errorf("double toggle changed state for %s on %v", step.id, step.day)
		}
		// leave the single toggle applied for the uniqueness check
		if _, err := l.Toggle(ctx, step.id, step.day); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}

		for _, day := range days {
			records, _ := store.FetchRecordsForDay(ctx, l.Day(day))
			seen := map[string]bool{}
			for _, r := range records {
				if seen[r.TrackerID] {
					t.Fatalf("duplicate record for %s on %s", r.TrackerID, r.Date)
				}
				seen[r.TrackerID] = true
			}
		}
	}
}

func TestToggleRejectsFutureDates(t *testing.T) {
	ctx := context.Background()
	l, store, clock := setupLedger(t, newTracker("T", models.AllDays, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	tomorrow := clock.Now().AddDate(0, 0, 1)
	if _, err := l.Toggle(ctx, "T", tomorrow); !errors.Is(err, errors.ErrFutureDate) {
		t.Errorf("Toggle(tomorrow) = %v, want ErrFutureDate", err)
	}
	if n, _ := store.FetchTotalRecordCount(ctx); n != 0 {
		t.Errorf("future toggle created %d records", n)
	}

	// later today is still today
	endOfToday := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)
	if _, err := l.Toggle(ctx, "T", endOfToday); err != nil {
		t.Errorf("Toggle(later today) failed: %v", err)
	}
}

func TestToggleUnknownTracker(t *testing.T) {
	l, _, clock := setupLedger(t)
	if _, err := l.Toggle(context.Background(), "missing", clock.Now()); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Toggle(missing) = %v, want ErrNotFound", err)
	}
}

func TestCompletedTrackerIDsAndTotals(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l, _, _ := setupLedger(t, newTracker("a", models.AllDays, start), newTracker("b", models.AllDays, start))

	jan8 := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	jan9 := jan8.AddDate(0, 0, 1)
	for _, step := range []struct {
		id  string
		day time.Time
	}{{"a", jan8}, {"b", jan8}, {"a", jan9}} {
		if _, err := l.Toggle(ctx, step.id, step.day); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
	}

	ids, err := l.CompletedTrackerIDs(ctx, jan8)
	if err != nil {
		t.Fatalf("CompletedTrackerIDs failed: %v", err)
	}
	if len(ids) != 2 || !ids["a"] || !ids["b"] {
		t.Errorf("CompletedTrackerIDs(jan8) = %v", ids)
	}
	if total, _ := l.TotalCompletions(ctx); total != 3 {
		t.Errorf("TotalCompletions = %d, want 3", total)
	}
}
