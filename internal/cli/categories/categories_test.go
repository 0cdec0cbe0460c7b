package categories

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage/memory"
	"github.com/julianstephens/tracker/internal/testutil"
	"github.com/julianstephens/tracker/internal/tracker"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	ctx := cli.NewContext(store,
		cli.WithClock(testutil.FixedClock()),
		cli.WithTimezone("UTC"),
		cli.WithIO(strings.NewReader(""), out),
	)
	return ctx, out
}

func TestCategoryLifecycle(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No categories") {
		t.Errorf("expected empty message, got %q", out.String())
	}

	for _, title := range []string{"Work", "Home"} {
		if err := (&AddCmd{Title: title}).Run(ctx); err != nil {
			t.Fatalf("add %s failed: %v", title, err)
		}
	}
	if err := (&AddCmd{Title: "work"}).Run(ctx); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("duplicate add = %v, want ErrValidation", err)
	}
	if err := (&AddCmd{Title: "Pinned"}).Run(ctx); !errors.Is(err, errors.ErrReserved) {
		t.Errorf("reserved add = %v, want ErrReserved", err)
	}

	svc, _ := ctx.Service()
	work, _ := svc.FindCategory(context.Background(), "Work")
	if _, err := svc.AddTracker(context.Background(), tracker.NewTrackerInput{
		Title: "Email", Emoji: constants.Emojis[0], Color: constants.Colors[0],
		Schedule: models.AllDays, CategoryID: work.ID,
	}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Work") || !strings.Contains(lines[0], "1 tracker") {
		t.Errorf("unexpected listing:\n%s", out.String())
	}
	if strings.Contains(out.String(), constants.PinnedCategoryTitle) {
		t.Error("pinned category must not be listed")
	}

	if err := (&DeleteCmd{Category: "Work"}).Run(ctx); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("deleting a category with trackers = %v, want ErrValidation", err)
	}
	if err := (&DeleteCmd{Category: "home"}).Run(ctx); err != nil {
		t.Errorf("deleting an empty category failed: %v", err)
	}
	if err := (&DeleteCmd{Category: "Home"}).Run(ctx); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}
