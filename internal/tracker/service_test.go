package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/filter"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/storage/memory"
	"github.com/julianstephens/tracker/internal/testutil"
)

func setupService(t *testing.T) (*Service, *memory.Store, *testutil.StubClock) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	clock := testutil.FixedClock()
	svc := NewService(store,
		WithClock(clock),
		WithIDGenerator(testutil.NewStubIDGenerator()),
		WithLocation(time.UTC),
	)
	return svc, store, clock
}

func mustCategory(t *testing.T, svc *Service, title string) models.Category {
	t.Helper()
	c, err := svc.AddCategory(context.Background(), title)
	if err != nil {
		t.Fatalf("AddCategory(%q) failed: %v", title, err)
	}
	return c
}

func mustTracker(t *testing.T, svc *Service, title string, schedule models.WeekdayMask, categoryID string) models.Tracker {
	t.Helper()
	tr, err := svc.AddTracker(context.Background(), NewTrackerInput{
		Title:      title,
		Emoji:      constants.Emojis[1],
		Color:      constants.Colors[2],
		Schedule:   schedule,
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("AddTracker(%q) failed: %v", title, err)
	}
	return tr
}

func TestPinUnpinScenario(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	work := mustCategory(t, svc, "Work")
	v := mustTracker(t, svc, "V", models.AllDays, work.ID)

	pinned, err := svc.TogglePin(ctx, v.ID)
	if err != nil {
		t.Fatalf("TogglePin (pin) failed: %v", err)
	}
	if pinned.CategoryID != constants.PinnedCategoryID || !pinned.IsPinned {
		t.Errorf("pinned tracker category = %s, pinned = %v", pinned.CategoryID, pinned.IsPinned)
	}
	if pinned.OriginalCategoryID != work.ID {
		t.Errorf("OriginalCategoryID = %q, want %q", pinned.OriginalCategoryID, work.ID)
	}

	unpinned, err := svc.TogglePin(ctx, v.ID)
	if err != nil {
		t.Fatalf("TogglePin (unpin) failed: %v", err)
	}
	if unpinned.CategoryID != work.ID || unpinned.IsPinned {
		t.Errorf("unpinned tracker category = %s, pinned = %v", unpinned.CategoryID, unpinned.IsPinned)
	}

	stored, _ := svc.Tracker(ctx, v.ID)
	if stored.CategoryID != work.ID || stored.OriginalCategoryID != "" {
		t.Errorf("stored tracker not restored: %+v", stored)
	}
}

func TestPinKeepsOriginOnRepeat(t *testing.T) {
	tr := models.Tracker{ID: "t", CategoryID: "work"}

	once := Pin(tr, constants.PinnedCategoryID)
	twice := Pin(once, constants.PinnedCategoryID)
	if twice.OriginalCategoryID != "work" {
		t.Errorf("repeat pin overwrote origin: %q", twice.OriginalCategoryID)
	}
	if twice != once {
		t.Errorf("repeat pin changed the tracker: %+v vs %+v", twice, once)
	}
}

func TestUnpinRestoresAnyExistingCategory(t *testing.T) {
	for _, home := range []string{"a", "b", "c"} {
		tr := models.Tracker{ID: "t", CategoryID: home}
		got := Unpin(Pin(tr, constants.PinnedCategoryID), func(string) bool { return true }, "fallback")
		if got.CategoryID != home || got.IsPinned || got.OriginalCategoryID != "" {
			t.Errorf("round trip through pin for %q gave %+v", home, got)
		}
	}
}

func TestUnpinFallsBackToUncategorized(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	work := mustCategory(t, svc, "Work")
	v := mustTracker(t, svc, "V", models.AllDays, work.ID)

	if _, err := svc.TogglePin(ctx, v.ID); err != nil {
		t.Fatalf("pin failed: %v", err)
	}
	// the category is empty of unpinned trackers, so it can go
	if err := svc.DeleteCategory(ctx, work.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	got, err := svc.TogglePin(ctx, v.ID)
	if err != nil {
		t.Fatalf("unpin failed: %v", err)
	}
	if got.CategoryID != constants.UncategorizedCategoryID {
		t.Errorf("unpinned into %q, want uncategorized", got.CategoryID)
	}

	categories, _ := svc.Categories(ctx)
	found := false
	for _, c := range categories {
		if c.ID == constants.UncategorizedCategoryID {
			found = true
		}
		if c.ID == constants.PinnedCategoryID {
			t.Error("pinned category must not be listed")
		}
	}
	if !found {
		t.Error("uncategorized category should be created on demand")
	}
}

// failingStore rejects tracker updates.
type failingStore struct {
	storage.Provider
}

func (failingStore) UpdateTracker(context.Context, models.Tracker) error {
	return fmt.Errorf("disk full")
}

func TestTogglePinIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setupService(t)
	work := mustCategory(t, svc, "Work")
	v := mustTracker(t, svc, "V", models.AllDays, work.ID)

	broken := NewService(failingStore{store}, WithClock(clock), WithLocation(time.UTC))
	prior, err := broken.TogglePin(ctx, v.ID)
	if err == nil {
		t.Fatal("expected TogglePin to fail")
	}
	if prior.IsPinned || prior.CategoryID != work.ID {
		t.Errorf("failed toggle should report prior state, got %+v", prior)
	}

	stored, _ := svc.Tracker(ctx, v.ID)
	if stored.IsPinned || stored.CategoryID != work.ID || stored.OriginalCategoryID != "" {
		t.Errorf("stored tracker changed after failed toggle: %+v", stored)
	}

	if _, err := svc.TogglePin(ctx, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("TogglePin(missing) = %v, want ErrNotFound", err)
	}
}

func TestEditPinnedTrackerKeepsItPinned(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	work := mustCategory(t, svc, "Work")
	home := mustCategory(t, svc, "Home")
	v := mustTracker(t, svc, "V", models.AllDays, work.ID)

	if _, err := svc.TogglePin(ctx, v.ID); err != nil {
		t.Fatalf("pin failed: %v", err)
	}

	title := "Renamed"
	edited, err := svc.EditTracker(ctx, v.ID, TrackerEdit{Title: &title, CategoryID: &home.ID})
	if err != nil {
		t.Fatalf("EditTracker failed: %v", err)
	}
	if !edited.IsPinned || edited.CategoryID != constants.PinnedCategoryID {
		t.Errorf("edited tracker left pinned category: %+v", edited)
	}
	if edited.OriginalCategoryID != home.ID {
		t.Errorf("OriginalCategoryID = %q, want %q", edited.OriginalCategoryID, home.ID)
	}

	unpinned, _ := svc.TogglePin(ctx, v.ID)
	if unpinned.CategoryID != home.ID || unpinned.Title != "Renamed" {
		t.Errorf("unpin after edit gave %+v", unpinned)
	}
}

func TestEditTrackerValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	work := mustCategory(t, svc, "Work")
	v := mustTracker(t, svc, "V", models.AllDays, work.ID)

	empty := "  "
	if _, err := svc.EditTracker(ctx, v.ID, TrackerEdit{Title: &empty}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("empty title edit = %v, want ErrValidation", err)
	}
	pinned := constants.PinnedCategoryID
	if _, err := svc.EditTracker(ctx, v.ID, TrackerEdit{CategoryID: &pinned}); !errors.Is(err, errors.ErrReserved) {
		t.Errorf("move to pinned = %v, want ErrReserved", err)
	}
	missing := "nope"
	if _, err := svc.EditTracker(ctx, v.ID, TrackerEdit{CategoryID: &missing}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("move to missing category = %v, want ErrNotFound", err)
	}

	stored, _ := svc.Tracker(ctx, v.ID)
	if stored.Title != "V" || stored.CategoryID != work.ID {
		t.Errorf("rejected edits leaked into store: %+v", stored)
	}
}

func TestAddTrackerRules(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)
	work := mustCategory(t, svc, "Work")

	tr := mustTracker(t, svc, "Read", 0, work.ID)
	if tr.ID != "id-2" {
		t.Errorf("expected ID from the injected generator, got %q", tr.ID)
	}
	if !tr.CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", tr.CreatedAt, clock.Now())
	}

	cases := []struct {
		name string
		in   NewTrackerInput
		want error
	}{
		{"empty title", NewTrackerInput{Title: "", Emoji: constants.Emojis[0], Color: constants.Colors[0], CategoryID: work.ID}, errors.ErrValidation},
		{"bad color", NewTrackerInput{Title: "x", Emoji: constants.Emojis[0], Color: "#123456", CategoryID: work.ID}, errors.ErrValidation},
		{"pinned category", NewTrackerInput{Title: "x", Emoji: constants.Emojis[0], Color: constants.Colors[0], CategoryID: constants.PinnedCategoryID}, errors.ErrReserved},
		{"unknown category", NewTrackerInput{Title: "x", Emoji: constants.Emojis[0], Color: constants.Colors[0], CategoryID: "nope"}, errors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddTracker(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Errorf("AddTracker() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCategoryRules(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)
	work := mustCategory(t, svc, "Work")

	if _, err := svc.AddCategory(ctx, "work"); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("duplicate title = %v, want ErrValidation", err)
	}
	if _, err := svc.AddCategory(ctx, "pinned"); !errors.Is(err, errors.ErrReserved) {
		t.Errorf("reserved title = %v, want ErrReserved", err)
	}
	if err := svc.DeleteCategory(ctx, constants.PinnedCategoryID); !errors.Is(err, errors.ErrReserved) {
		t.Errorf("delete pinned = %v, want ErrReserved", err)
	}

	mustTracker(t, svc, "Email", models.AllDays, work.ID)
	if err := svc.DeleteCategory(ctx, work.ID); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("delete non-empty category = %v, want ErrValidation", err)
	}

	found, err := svc.FindCategory(ctx, "WORK")
	if err != nil || found.ID != work.ID {
		t.Errorf("FindCategory by title = %+v, %v", found, err)
	}
}

func TestDeleteTrackerCascades(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)
	work := mustCategory(t, svc, "Work")
	tr := mustTracker(t, svc, "Run", models.AllDays, work.ID)

	for i := 0; i < 3; i++ {
		if _, err := svc.ToggleCompletion(ctx, tr.ID, clock.Now().AddDate(0, 0, -i)); err != nil {
			t.Fatalf("ToggleCompletion failed: %v", err)
		}
	}
	if err := svc.DeleteTracker(ctx, tr.ID); err != nil {
		t.Fatalf("DeleteTracker failed: %v", err)
	}
	if total, _ := svc.TotalCompletions(ctx); total != 0 {
		t.Errorf("records left after delete: %d", total)
	}
	if err := svc.DeleteTracker(ctx, tr.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestVisibleThroughService(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)
	work := mustCategory(t, svc, "Work")
	gym := mustTracker(t, svc, "Gym", models.ToMask([]time.Weekday{time.Monday, time.Wednesday}), work.ID)
	read := mustTracker(t, svc, "Read", models.AllDays, work.ID)

	if _, err := svc.TogglePin(ctx, read.ID); err != nil {
		t.Fatalf("pin failed: %v", err)
	}
	today := clock.Now() // Wednesday
	if _, err := svc.ToggleCompletion(ctx, gym.ID, today); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}

	groups, err := svc.Visible(ctx, Query{Date: &today, Mode: filter.ModeAll})
	if err != nil {
		t.Fatalf("Visible failed: %v", err)
	}
	if len(groups) != 2 || groups[0].Category.ID != constants.PinnedCategoryID {
		t.Fatalf("expected pinned group first, got %+v", groups)
	}

	groups, _ = svc.Visible(ctx, Query{Date: &today, Mode: filter.ModeNotCompleted})
	if filter.Count(groups) != 1 || groups[0].Trackers[0].ID != read.ID {
		t.Errorf("not-completed filter gave %+v", groups)
	}

	tuesday := today.AddDate(0, 0, -1)
	groups, _ = svc.Visible(ctx, Query{Date: &tuesday, Mode: filter.ModeAll})
	if filter.Count(groups) != 1 {
		t.Errorf("only the daily tracker should show on Tuesday, got %d", filter.Count(groups))
	}

	// search ignores the date
	groups, _ = svc.Visible(ctx, Query{Text: "gym"})
	if filter.Count(groups) != 1 {
		t.Errorf("search should find Gym on any day, got %d", filter.Count(groups))
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)
	events, cancel := svc.Subscribe()

	work := mustCategory(t, svc, "Work")
	tr := mustTracker(t, svc, "Run", models.AllDays, work.ID)
	if _, err := svc.ToggleCompletion(ctx, tr.ID, clock.Now()); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	if _, err := svc.TogglePin(ctx, tr.ID); err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}

	want := []EventKind{EventCategoryAdded, EventTrackerAdded, EventCompletionToggle, EventTrackerPinned}
	for _, kind := range want {
		select {
		case e := <-events:
			if e.Kind != kind {
				t.Errorf("event = %s, want %s", e.Kind, kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", kind)
		}
	}

	cancel()
	if _, ok := <-events; ok {
		t.Error("channel should be closed after cancel")
	}
	// publishing after cancel must not panic
	mustCategory(t, svc, "Home")
}

func TestToggleCompletionFutureDate(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)
	work := mustCategory(t, svc, "Work")
	tr := mustTracker(t, svc, "Run", models.AllDays, work.ID)

	if _, err := svc.ToggleCompletion(ctx, tr.ID, clock.Now().AddDate(0, 0, 1)); !errors.Is(err, errors.ErrFutureDate) {
		t.Errorf("future toggle = %v, want ErrFutureDate", err)
	}
	if n, _ := svc.CompletionCount(ctx, tr.ID); n != 0 {
		t.Errorf("future toggle recorded %d completions", n)
	}
}
