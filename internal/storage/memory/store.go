// Package memory keeps trackers, categories and records in process memory.
// It backs the ":memory:" database setting and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

type Store struct {
	mu          sync.RWMutex
	initialized bool
	settings    map[string]string
	trackers    map[string]models.Tracker
	categories  map[string]models.Category
	// records maps tracker id to the set of completed days.
	records map[string]map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		settings:   map[string]string{},
		trackers:   map[string]models.Tracker{},
		categories: map[string]models.Category{},
		records:    map[string]map[string]struct{}{},
	}
}

func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.settings) == 0 {
		s.settings = models.SettingsToMap(storage.DefaultSettings())
	}
	if _, ok := s.categories[constants.PinnedCategoryID]; !ok {
		s.categories[constants.PinnedCategoryID] = storage.PinnedCategory(time.Now().UTC())
	}
	s.initialized = true
	return nil
}

func (s *Store) Load() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetConfigPath() string {
	return storage.MemoryPath
}

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.settings) == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}
	return models.MapToSettings(s.settings)
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range models.SettingsToMap(settings) {
		s.settings[k] = v
	}
	return nil
}

func (s *Store) FetchAllTrackers(ctx context.Context) ([]models.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trackers := make([]models.Tracker, 0, len(s.trackers))
	for _, t := range s.trackers {
		if err := storage.CheckTrackerRow(t); err != nil {
			storage.SkipRow("tracker", err)
			continue
		}
		trackers = append(trackers, t)
	}
	sort.Slice(trackers, func(i, j int) bool {
		if trackers[i].CreatedAt.Equal(trackers[j].CreatedAt) {
			return trackers[i].ID < trackers[j].ID
		}
		return trackers[i].CreatedAt.Before(trackers[j].CreatedAt)
	})
	return trackers, nil
}

func (s *Store) GetTracker(ctx context.Context, id string) (models.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trackers[id]
	if !ok {
		return models.Tracker{}, fmt.Errorf("tracker %s: %w", id, errors.ErrNotFound)
	}
	if err := storage.CheckTrackerRow(t); err != nil {
		return models.Tracker{}, err
	}
	return t, nil
}

func (s *Store) InsertTracker(ctx context.Context, t models.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trackers[t.ID]; ok {
		return fmt.Errorf("tracker %s already exists", t.ID)
	}
	s.trackers[t.ID] = t
	return nil
}

func (s *Store) UpdateTracker(ctx context.Context, t models.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trackers[t.ID]; !ok {
		return fmt.Errorf("tracker %s: %w", t.ID, errors.ErrNotFound)
	}
	s.trackers[t.ID] = t
	return nil
}

func (s *Store) DeleteTracker(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trackers[id]; !ok {
		return fmt.Errorf("tracker %s: %w", id, errors.ErrNotFound)
	}
	delete(s.trackers, id)
	delete(s.records, id)
	return nil
}

func (s *Store) FetchAllCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if err := storage.CheckCategoryRow(c); err != nil {
			storage.SkipRow("category", err)
			continue
		}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].CreatedAt.Equal(categories[j].CreatedAt) {
			return categories[i].ID < categories[j].ID
		}
		return categories[i].CreatedAt.Before(categories[j].CreatedAt)
	})
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, fmt.Errorf("category %s: %w", id, errors.ErrNotFound)
	}
	return c, nil
}

func (s *Store) InsertCategory(ctx context.Context, c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; ok {
		return fmt.Errorf("category %s already exists", c.ID)
	}
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Title, c.Title) {
			return fmt.Errorf("category %q already exists", c.Title)
		}
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, errors.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) FetchRecordsForDay(ctx context.Context, day string) ([]models.TrackerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.TrackerRecord
	for trackerID, days := range s.records {
		if _, ok := days[day]; ok {
			records = append(records, models.TrackerRecord{TrackerID: trackerID, Date: day})
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].TrackerID < records[j].TrackerID })
	return records, nil
}

func (s *Store) FetchRecordCount(ctx context.Context, trackerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[trackerID]), nil
}

func (s *Store) FetchTotalRecordCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, days := range s.records {
		total += len(days)
	}
	return total, nil
}

func (s *Store) FetchAllRecords(ctx context.Context) ([]models.TrackerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.TrackerRecord
	for trackerID, days := range s.records {
		for day := range days {
			records = append(records, models.TrackerRecord{TrackerID: trackerID, Date: day})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date == records[j].Date {
			return records[i].TrackerID < records[j].TrackerID
		}
		return records[i].Date < records[j].Date
	})
	return records, nil
}

func (s *Store) HasRecord(ctx context.Context, trackerID, day string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[trackerID][day]
	return ok, nil
}

func (s *Store) InsertRecord(ctx context.Context, r models.TrackerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trackers[r.TrackerID]; !ok {
		return fmt.Errorf("tracker %s: %w", r.TrackerID, errors.ErrNotFound)
	}
	days, ok := s.records[r.TrackerID]
	if !ok {
		days = map[string]struct{}{}
		s.records[r.TrackerID] = days
	}
	if _, exists := days[r.Date]; exists {
		return fmt.Errorf("record for tracker %s on %s already exists", r.TrackerID, r.Date)
	}
	days[r.Date] = struct{}{}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, trackerID, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[trackerID][day]; !ok {
		return fmt.Errorf("record for tracker %s on %s: %w", trackerID, day, errors.ErrNotFound)
	}
	delete(s.records[trackerID], day)
	if len(s.records[trackerID]) == 0 {
		delete(s.records, trackerID)
	}
	return nil
}

// PutRawTracker stores t without any checks. Used to seed malformed rows.
func (s *Store) PutRawTracker(t models.Tracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[t.ID] = t
}
