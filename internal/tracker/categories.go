package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
)

// AddCategory creates a user category. Titles are unique ignoring case.
func (s *Service) AddCategory(ctx context.Context, title string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Category{}, fmt.Errorf("%w: category title must not be empty", errors.ErrValidation)
	}
	if strings.EqualFold(title, constants.PinnedCategoryTitle) || strings.EqualFold(title, constants.UncategorizedTitle) {
		return models.Category{}, fmt.Errorf("%w: %q is reserved", errors.ErrReserved, title)
	}

	existing, err := s.store.FetchAllCategories(ctx)
	if err != nil {
		return models.Category{}, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Title, title) {
			return models.Category{}, fmt.Errorf("%w: category %q already exists", errors.ErrValidation, c.Title)
		}
	}

	c := models.Category{ID: s.ids.New(), Title: title, CreatedAt: s.now()}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		return models.Category{}, fmt.Errorf("failed to add category: %w", err)
	}
	s.publish(Event{Kind: EventCategoryAdded, CategoryID: c.ID})
	return c, nil
}

// Categories lists the categories a tracker can belong to, in creation order.
// The pinned category is left out.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories(ctx)
}

func (s *Service) categories(ctx context.Context) ([]models.Category, error) {
	all, err := s.store.FetchAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(all))
	for _, c := range all {
		if !c.IsPinned() {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindCategory resolves a category by ID or by case-insensitive title.
func (s *Service) FindCategory(ctx context.Context, ref string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCategory(ctx, ref)
}

func (s *Service) findCategory(ctx context.Context, ref string) (models.Category, error) {
	categories, err := s.categories(ctx)
	if err != nil {
		return models.Category{}, err
	}
	for _, c := range categories {
		if c.ID == ref {
			return c, nil
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Title, ref) {
			return c, nil
		}
	}
	if ref == constants.PinnedCategoryID || strings.EqualFold(ref, constants.PinnedCategoryTitle) {
		return models.Category{}, fmt.Errorf("%w: trackers are pinned with the pin command", errors.ErrReserved)
	}
	return models.Category{}, fmt.Errorf("category %q: %w", ref, errors.ErrNotFound)
}

// DeleteCategory removes a user category that holds no unpinned trackers.
// Pinned trackers remembering it fall back to uncategorized when unpinned.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == constants.PinnedCategoryID {
		return fmt.Errorf("%w: the pinned category cannot be deleted", errors.ErrReserved)
	}

	trackers, err := s.store.FetchAllTrackers(ctx)
	if err != nil {
		return err
	}
	in := 0
	for _, t := range trackers {
		if !t.IsPinned && t.CategoryID == id {
			in++
		}
	}
	if in > 0 {
		return fmt.Errorf("%w: category still holds %d tracker(s)", errors.ErrValidation, in)
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(Event{Kind: EventCategoryDeleted, CategoryID: id})
	return nil
}

func (s *Service) ensureUncategorized(ctx context.Context) error {
	_, err := s.store.GetCategory(ctx, constants.UncategorizedCategoryID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return err
	}
	c := models.Category{
		ID:        constants.UncategorizedCategoryID,
		Title:     constants.UncategorizedTitle,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		return fmt.Errorf("failed to create %s category: %w", constants.UncategorizedTitle, err)
	}
	s.publish(Event{Kind: EventCategoryAdded, CategoryID: c.ID})
	return nil
}
