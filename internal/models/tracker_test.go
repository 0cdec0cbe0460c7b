package models

import (
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
)

func TestNewTracker(t *testing.T) {
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tr, err := NewTracker("t1", "  Read  ", "🙂", "#fd4c49", 0b11111111, "work", created)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	if tr.ID != "t1" {
		t.Errorf("ID = %q, want the caller's ID", tr.ID)
	}
	if tr.Title != "Read" {
		t.Errorf("Title = %q, want trimmed title", tr.Title)
	}
	if tr.Color != "#FD4C49" {
		t.Errorf("Color = %q, want upper-case hex", tr.Color)
	}
	if tr.Schedule != AllDays {
		t.Errorf("Schedule = %08b, want unused bit dropped", tr.Schedule)
	}
	if tr.IsPinned || tr.OriginalCategoryID != "" {
		t.Error("new tracker must start unpinned")
	}
}

func TestNewTrackerRequiresID(t *testing.T) {
	_, err := NewTracker("", "Read", constants.Emojis[0], constants.Colors[0], AllDays, "work", time.Now())
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("NewTracker with empty ID = %v, want ErrValidation", err)
	}
}

func TestTrackerValidate(t *testing.T) {
	valid := Tracker{
		ID:         "t1",
		Title:      "Run",
		Emoji:      constants.Emojis[0],
		Color:      constants.Colors[0],
		CategoryID: "work",
	}

	tests := []struct {
		name   string
		mutate func(*Tracker)
	}{
		{"empty title", func(tr *Tracker) { tr.Title = "   " }},
		{"title too long", func(tr *Tracker) { tr.Title = "abcdefghijklmnopqrstuvwxyzabcdefghijklmn" }},
		{"unknown emoji", func(tr *Tracker) { tr.Emoji = "x" }},
		{"unknown color", func(tr *Tracker) { tr.Color = "#000000" }},
		{"missing category", func(tr *Tracker) { tr.CategoryID = "" }},
		{"pinned outside pinned category", func(tr *Tracker) { tr.IsPinned = true }},
		{"in pinned category but not pinned", func(tr *Tracker) { tr.CategoryID = constants.PinnedCategoryID }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid tracker rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			err := tr.Validate()
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("Validate() = %v, want ErrValidation", err)
			}
		})
	}
}

func TestHomeCategoryID(t *testing.T) {
	tr := Tracker{CategoryID: "work"}
	if got := tr.HomeCategoryID(); got != "work" {
		t.Errorf("HomeCategoryID() = %q, want work", got)
	}

	tr = Tracker{CategoryID: constants.PinnedCategoryID, IsPinned: true, OriginalCategoryID: "work"}
	if got := tr.HomeCategoryID(); got != "work" {
		t.Errorf("HomeCategoryID() for pinned = %q, want work", got)
	}
}

func TestSettingsMapRoundTrip(t *testing.T) {
	s, err := MapToSettings(map[string]string{
		constants.SettingTimezone:      "Europe/London",
		constants.SettingDefaultFilter: "completed",
	})
	if err != nil {
		t.Fatalf("MapToSettings failed: %v", err)
	}
	if s.Timezone != "Europe/London" || s.DefaultFilter != constants.FilterCompleted {
		t.Errorf("unexpected settings: %+v", s)
	}

	if _, err := MapToSettings(map[string]string{constants.SettingDefaultFilter: "sometimes"}); err == nil {
		t.Error("expected error for unknown filter mode")
	}

	var empty Settings
	ApplyDefaultSettings(&empty)
	if empty.Timezone != constants.DefaultTimezone || empty.DefaultFilter != constants.DefaultFilter {
		t.Errorf("defaults not applied: %+v", empty)
	}
}
