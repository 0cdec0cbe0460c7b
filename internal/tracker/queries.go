package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/filter"
	"github.com/julianstephens/tracker/internal/ledger"
	"github.com/julianstephens/tracker/internal/logger"
)

// Query describes a visibility request. A nil Date disables the date
// predicate, which is how search mode works.
type Query struct {
	Date *time.Time
	Text string
	Mode filter.Mode
}

// Visible returns the grouped trackers for q. Completion modes are judged
// against q.Date, or today when no date is given.
func (s *Service) Visible(ctx context.Context, q Query) ([]filter.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.visible(ctx, q)
	if err != nil {
		logger.Error("Visibility query failed", "error", err)
		return nil, err
	}
	return groups, nil
}

func (s *Service) visible(ctx context.Context, q Query) ([]filter.Group, error) {
	trackers, err := s.store.FetchAllTrackers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trackers: %w", err)
	}
	categories, err := s.store.FetchAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	today := s.ledger.Today()
	ref := today
	if q.Date != nil && q.Mode != filter.ModeToday {
		ref = *q.Date
	}

	var completed map[string]bool
	if q.Mode == filter.ModeCompleted || q.Mode == filter.ModeNotCompleted {
		if completed, err = s.ledger.CompletedTrackerIDs(ctx, ref); err != nil {
			return nil, fmt.Errorf("failed to load completions: %w", err)
		}
	}

	return filter.Visible(filter.Input{
		Trackers:   trackers,
		Categories: categories,
		Date:       q.Date,
		Query:      q.Text,
		Mode:       q.Mode,
		Today:      today,
		Completed:  completed,
		Location:   s.loc,
	}), nil
}

// ToggleCompletion flips the completion of a tracker on date and returns the
// new state.
func (s *Service) ToggleCompletion(ctx context.Context, trackerID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.ledger.Toggle(ctx, trackerID, date)
	if err != nil {
		return done, err
	}
	s.publish(Event{Kind: EventCompletionToggle, TrackerID: trackerID, Day: s.ledger.Day(date)})
	return done, nil
}

// IsCompleted reports whether the tracker was completed on date.
func (s *Service) IsCompleted(ctx context.Context, trackerID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IsCompleted(ctx, trackerID, date)
}

// CompletedOn returns the IDs of trackers completed on date.
func (s *Service) CompletedOn(ctx context.Context, date time.Time) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CompletedTrackerIDs(ctx, date)
}

// CompletionCount returns the number of days the tracker was completed.
func (s *Service) CompletionCount(ctx context.Context, trackerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CompletionCount(ctx, trackerID)
}

// TotalCompletions returns the number of completions across all trackers.
func (s *Service) TotalCompletions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.TotalCompletions(ctx)
}

// Statistics aggregates completion history for every tracker.
func (s *Service) Statistics(ctx context.Context) (ledger.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trackers, err := s.store.FetchAllTrackers(ctx)
	if err != nil {
		return ledger.Statistics{}, err
	}
	return s.ledger.Statistics(ctx, trackers)
}
