// Package filter decides which trackers are visible for a date, a search
// query and a completion mode, and groups them by category for display.
package filter

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// Mode restricts the visible set by completion state.
type Mode = constants.FilterMode

const (
	ModeAll          = constants.FilterAll
	ModeToday        = constants.FilterToday
	ModeCompleted    = constants.FilterCompleted
	ModeNotCompleted = constants.FilterNotCompleted
)

// Input is everything a visibility query depends on. Visible reads no other state.
type Input struct {
	Trackers   []models.Tracker
	Categories []models.Category

	// Date enables the date predicate when non-nil.
	Date *time.Time
	// Query enables the title predicate when non-empty.
	Query string

	Mode Mode
	// Today replaces Date under ModeToday.
	Today time.Time
	// Completed holds the IDs of trackers completed on the reference day.
	// Only consulted by ModeCompleted and ModeNotCompleted.
	Completed map[string]bool

	// Location decides calendar days. Defaults to UTC.
	Location *time.Location
}

// Group is one display section: a category and its visible trackers.
type Group struct {
	Category models.Category
	Trackers []models.Tracker
}

// At returns the i-th tracker of the group. A stale index yields ErrRange.
func (g Group) At(i int) (models.Tracker, error) {
	if i < 0 || i >= len(g.Trackers) {
		return models.Tracker{}, fmt.Errorf("%w: tracker %d of %d in %q", errors.ErrRange, i, len(g.Trackers), g.Category.Title)
	}
	return g.Trackers[i], nil
}

// Len returns the number of trackers in the group.
func (g Group) Len() int {
	return len(g.Trackers)
}

// DateEligible reports whether t is shown on day d. Scheduled trackers show on
// their weekdays; one-off trackers only on the calendar day they were created.
func DateEligible(t models.Tracker, d time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	if !t.Schedule.IsOneOff() {
		return t.Schedule.Contains(d.In(loc).Weekday())
	}
	return utils.SameDay(t.CreatedAt, d, loc)
}

// QueryEligible reports whether the title matches q ignoring case and
// diacritics. An empty query matches every tracker.
func QueryEligible(t models.Tracker, q string) bool {
	return utils.ContainsFold(t.Title, q)
}

// Visible returns the grouped trackers that pass every active predicate.
// Groups are ordered pinned first, then by category creation, then any
// categories the trackers reference but the input lacks. Trackers within a
// group are ordered by creation time.
func Visible(in Input) []Group {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	date := in.Date
	if in.Mode == ModeToday {
		today := in.Today
		date = &today
	}

	var kept []models.Tracker
	for _, t := range in.Trackers {
		if date != nil && !DateEligible(t, *date, loc) {
			continue
		}
		if !QueryEligible(t, in.Query) {
			continue
		}
		switch in.Mode {
		case ModeCompleted:
			if !in.Completed[t.ID] {
				continue
			}
		case ModeNotCompleted:
			if in.Completed[t.ID] {
				continue
			}
		}
		kept = append(kept, t)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].CreatedAt.Equal(kept[j].CreatedAt) {
			return kept[i].ID < kept[j].ID
		}
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})

	return group(kept, in.Categories)
}

func group(trackers []models.Tracker, categories []models.Category) []Group {
	byCategory := map[string][]models.Tracker{}
	// unknown keeps first-seen order for categories missing from the input.
	var unknown []string
	known := map[string]bool{}
	for _, c := range categories {
		known[c.ID] = true
	}
	for _, t := range trackers {
		if !known[t.CategoryID] && byCategory[t.CategoryID] == nil {
			unknown = append(unknown, t.CategoryID)
		}
		byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
	}

	ordered := make([]models.Category, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i].IsPinned(), ordered[j].IsPinned()
		if pi != pj {
			return pi
		}
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var groups []Group
	seen := map[string]bool{}
	for _, c := range ordered {
		if seen[c.ID] || len(byCategory[c.ID]) == 0 {
			continue
		}
		seen[c.ID] = true
		groups = append(groups, Group{Category: c, Trackers: byCategory[c.ID]})
	}
	for _, id := range unknown {
		c := models.Category{ID: id, Title: id}
		if id == constants.PinnedCategoryID {
			c.Title = constants.PinnedCategoryTitle
			groups = append([]Group{{Category: c, Trackers: byCategory[id]}}, groups...)
			continue
		}
		groups = append(groups, Group{Category: c, Trackers: byCategory[id]})
	}
	return groups
}

// Count returns the number of trackers across groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += g.Len()
	}
	return n
}
