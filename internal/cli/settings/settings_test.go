package settings

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/storage/memory"
	"github.com/julianstephens/tracker/internal/testutil"
)

func setupTestContext(t *testing.T) (*cli.Context, *memory.Store, *bytes.Buffer) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	return cli.NewContext(store, cli.WithClock(testutil.FixedClock()), cli.WithIO(strings.NewReader(""), out)), store, out
}

func strPtr(s string) *string { return &s }

func TestSettingsCmd_List(t *testing.T) {
	ctx, _, out := setupTestContext(t)
	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Timezone:") || !strings.Contains(out.String(), "Default Filter:") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, store, _ := setupTestContext(t)

	cmd := &SettingsCmd{Timezone: strPtr("Asia/Tokyo"), DefaultFilter: strPtr("not-completed")}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	saved, err := store.GetSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved.Timezone != "Asia/Tokyo" || saved.DefaultFilter != constants.FilterNotCompleted {
		t.Errorf("settings not saved: %+v", saved)
	}

	svc, _ := ctx.Service()
	if svc.Location().String() != "Asia/Tokyo" {
		t.Errorf("service should pick up the new timezone, got %s", svc.Location())
	}
}

func TestSettingsCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"timezone", SettingsCmd{Timezone: strPtr("Mars/Olympus")}},
		{"filter", SettingsCmd{DefaultFilter: strPtr("weekly")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store, _ := setupTestContext(t)
			before, _ := store.GetSettings(context.Background())
			cmd := tt.cmd
			if err := cmd.Run(ctx); err == nil {
				t.Error("expected error")
			}
			after, _ := store.GetSettings(context.Background())
			if before != after {
				t.Errorf("settings changed on invalid input: %+v -> %+v", before, after)
			}
		})
	}
}
