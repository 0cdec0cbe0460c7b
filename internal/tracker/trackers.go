package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

// NewTrackerInput holds the fields required to create a tracker.
type NewTrackerInput struct {
	Title      string
	Emoji      string
	Color      string
	Schedule   models.WeekdayMask
	CategoryID string
}

// TrackerEdit lists the fields to change. Nil fields are left alone.
type TrackerEdit struct {
	Title      *string
	Emoji      *string
	Color      *string
	Schedule   *models.WeekdayMask
	CategoryID *string
}

// Trackers returns every tracker in creation order.
func (s *Service) Trackers(ctx context.Context) ([]models.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FetchAllTrackers(ctx)
}

// Tracker returns one tracker by ID.
func (s *Service) Tracker(ctx context.Context, id string) (models.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GetTracker(ctx, id)
}

// FindTracker resolves a tracker by ID, ID prefix or exact title (ignoring case).
func (s *Service) FindTracker(ctx context.Context, ref string) (models.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trackers, err := s.store.FetchAllTrackers(ctx)
	if err != nil {
		return models.Tracker{}, err
	}

	var matches []models.Tracker
	for _, t := range trackers {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) || strings.EqualFold(t.Title, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Tracker{}, fmt.Errorf("tracker %q: %w", ref, errors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Tracker{}, fmt.Errorf("%w: %q matches %d trackers", errors.ErrValidation, ref, len(matches))
	}
}

// AddTracker creates a tracker in an existing user category.
func (s *Service) AddTracker(ctx context.Context, in NewTrackerInput) (models.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkHomeCategory(ctx, in.CategoryID); err != nil {
		return models.Tracker{}, err
	}

	t, err := models.NewTracker(s.ids.New(), in.Title, in.Emoji, in.Color, in.Schedule, in.CategoryID, s.now())
	if err != nil {
		return models.Tracker{}, err
	}

	if err := s.store.InsertTracker(ctx, t); err != nil {
		return models.Tracker{}, fmt.Errorf("failed to add tracker: %w", err)
	}

	logger.Debug("Tracker added", "tracker", t.ID, "schedule", t.Schedule.String())
	s.publish(Event{Kind: EventTrackerAdded, TrackerID: t.ID, CategoryID: t.CategoryID})
	return t, nil
}

// EditTracker changes a tracker in place. Choosing a category for a pinned
// tracker keeps it pinned and makes the choice its home category.
func (s *Service) EditTracker(ctx context.Context, id string, edit TrackerEdit) (models.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.GetTracker(ctx, id)
	if err != nil {
		return models.Tracker{}, err
	}

	if edit.Title != nil {
		t.Title = strings.TrimSpace(*edit.Title)
	}
	if edit.Emoji != nil {
		t.Emoji = *edit.Emoji
	}
	if edit.Color != nil {
		t.Color = strings.ToUpper(*edit.Color)
	}
	if edit.Schedule != nil {
		t.Schedule = *edit.Schedule & models.AllDays
	}
	if edit.CategoryID != nil {
		if err := s.checkHomeCategory(ctx, *edit.CategoryID); err != nil {
			return models.Tracker{}, err
		}
		if t.IsPinned {
			t.OriginalCategoryID = *edit.CategoryID
		} else {
			t.CategoryID = *edit.CategoryID
		}
	}

	if err := t.Validate(); err != nil {
		return models.Tracker{}, err
	}
	if err := s.store.UpdateTracker(ctx, t); err != nil {
		return models.Tracker{}, fmt.Errorf("failed to update tracker: %w", err)
	}

	s.publish(Event{Kind: EventTrackerEdited, TrackerID: t.ID, CategoryID: t.CategoryID})
	return t, nil
}

// DeleteTracker removes a tracker and its completion history.
func (s *Service) DeleteTracker(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteTracker(ctx, id); err != nil {
		return err
	}
	logger.Debug("Tracker deleted", "tracker", id)
	s.publish(Event{Kind: EventTrackerDeleted, TrackerID: id})
	return nil
}

func (s *Service) checkHomeCategory(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: category is required", errors.ErrValidation)
	}
	if id == constants.PinnedCategoryID {
		return fmt.Errorf("%w: trackers are pinned with the pin command", errors.ErrReserved)
	}
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return err
	}
	return nil
}
