package tracker

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

// Pin moves t into the pinned category. The home category is remembered the
// first time only, so pinning an already pinned tracker changes nothing.
func Pin(t models.Tracker, pinnedID string) models.Tracker {
	if t.OriginalCategoryID == "" {
		t.OriginalCategoryID = t.CategoryID
	}
	t.IsPinned = true
	t.CategoryID = pinnedID
	return t
}

// Unpin moves t back to its remembered category, or to fallbackID when that
// category no longer exists.
func Unpin(t models.Tracker, exists func(id string) bool, fallbackID string) models.Tracker {
	target := t.OriginalCategoryID
	if target == "" || target == constants.PinnedCategoryID || !exists(target) {
		target = fallbackID
	}
	t.IsPinned = false
	t.CategoryID = target
	t.OriginalCategoryID = ""
	return t
}

// TogglePin pins an unpinned tracker or unpins a pinned one and returns the
// updated tracker. The change is written with a single update; on failure the
// stored tracker is left as it was.
func (s *Service) TogglePin(ctx context.Context, id string) (models.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.GetTracker(ctx, id)
	if err != nil {
		return models.Tracker{}, err
	}

	var next models.Tracker
	kind := EventTrackerPinned
	if current.IsPinned {
		kind = EventTrackerUnpinned
		home, err := s.categoryExists(ctx, current.OriginalCategoryID)
		if err != nil {
			return current, err
		}
		next = Unpin(current, func(string) bool { return home }, constants.UncategorizedCategoryID)
		if next.CategoryID == constants.UncategorizedCategoryID {
			if !home && current.OriginalCategoryID != "" {
				logger.Warn("Remembered category is gone, using fallback", "tracker", id, "category", current.OriginalCategoryID)
			}
			if err := s.ensureUncategorized(ctx); err != nil {
				return current, err
			}
		}
	} else {
		next = Pin(current, constants.PinnedCategoryID)
	}

	if err := s.store.UpdateTracker(ctx, next); err != nil {
		logger.Error("Pin toggle failed", "tracker", id, "error", err)
		return current, fmt.Errorf("failed to update tracker: %w", err)
	}

	logger.Debug("Pin toggled", "tracker", id, "pinned", next.IsPinned, "category", next.CategoryID)
	s.publish(Event{Kind: kind, TrackerID: id, CategoryID: next.CategoryID})
	return next, nil
}

// categoryExists reports whether a category with id is stored.
func (s *Service) categoryExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := s.store.GetCategory(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	return false, err
}
