package memory

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/storage/storagetest"
)

var _ storage.Provider = (*Store)(nil)

func newTestStore(t *testing.T) storage.Provider {
	s := NewStore()
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func TestProvider(t *testing.T) {
	storagetest.Run(t, newTestStore)
}

func TestLoadBeforeInit(t *testing.T) {
	if err := NewStore().Load(); err == nil {
		t.Error("Load should fail before Init")
	}
}

func TestFetchAllTrackersSkipsMalformedRows(t *testing.T) {
	s := NewStore()
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	good := models.Tracker{
		ID: "good", Title: "Read", Emoji: constants.Emojis[0], Color: constants.Colors[0],
		CategoryID: "work", CreatedAt: time.Now(),
	}
	s.PutRawTracker(good)
	s.PutRawTracker(models.Tracker{ID: "no-title", Emoji: "🙂", Color: "#FD4C49", CategoryID: "work"})
	s.PutRawTracker(models.Tracker{ID: "no-category", Title: "x", Emoji: "🙂", Color: "#FD4C49"})

	all, err := s.FetchAllTrackers(context.Background())
	if err != nil {
		t.Fatalf("FetchAllTrackers failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != "good" {
		t.Errorf("expected only the well-formed tracker, got %+v", all)
	}
}
