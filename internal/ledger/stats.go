package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/julianstephens/tracker/internal/filter"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// TrackerStats summarizes one tracker's history.
type TrackerStats struct {
	TrackerID   string `json:"tracker_id"`
	Title       string `json:"title"`
	Completions int    `json:"completions"`
	BestStreak  int    `json:"best_streak"`
}

// Statistics is the aggregate shown on the statistics screen.
type Statistics struct {
	TotalCompletions int            `json:"total_completions"`
	PerfectDays      int            `json:"perfect_days"`
	Trackers         []TrackerStats `json:"trackers"`
}

// Statistics aggregates every record. A perfect day is a day on which every
// tracker shown for that day was completed. A streak counts consecutive
// scheduled occurrences that were completed.
func (l *Ledger) Statistics(ctx context.Context, trackers []models.Tracker) (Statistics, error) {
	records, err := l.store.FetchAllRecords(ctx)
	if err != nil {
		return Statistics{}, err
	}

	byTracker := map[string][]string{}
	byDay := map[string]map[string]bool{}
	for _, r := range records {
		byTracker[r.TrackerID] = append(byTracker[r.TrackerID], r.Date)
		if byDay[r.Date] == nil {
			byDay[r.Date] = map[string]bool{}
		}
		byDay[r.Date][r.TrackerID] = true
	}

	stats := Statistics{TotalCompletions: len(records)}
	for _, t := range trackers {
		days := byTracker[t.ID]
		sort.Strings(days)
		stats.Trackers = append(stats.Trackers, TrackerStats{
			TrackerID:   t.ID,
			Title:       t.Title,
			Completions: len(days),
			BestStreak:  bestStreak(t, days, l.loc),
		})
	}
	sort.SliceStable(stats.Trackers, func(i, j int) bool {
		return stats.Trackers[i].Completions > stats.Trackers[j].Completions
	})

	for day, done := range byDay {
		if perfectDay(day, done, trackers, l.loc) {
			stats.PerfectDays++
		}
	}

	return stats, nil
}

// bestStreak walks the sorted completion days of t. Two completions belong to
// the same streak when no scheduled day of t lies between them.
func bestStreak(t models.Tracker, days []string, loc *time.Location) int {
	best, run := 0, 0
	var prev time.Time
	for i, key := range days {
		day, err := utils.ParseDateInLocation(key, loc)
		if err != nil {
			continue
		}
		if i == 0 || missedBetween(t.Schedule, prev, day) {
			run = 1
		} else {
			run++
		}
		if run > best {
			best = run
		}
		prev = day
	}
	return best
}

func missedBetween(schedule models.WeekdayMask, from, to time.Time) bool {
	if schedule.IsOneOff() {
		return true
	}
	if to.Sub(from) > 8*24*time.Hour {
		return true
	}
	for d := from.AddDate(0, 0, 1); d.Before(to); d = d.AddDate(0, 0, 1) {
		if schedule.Contains(d.Weekday()) {
			return true
		}
	}
	return false
}

func perfectDay(key string, done map[string]bool, trackers []models.Tracker, loc *time.Location) bool {
	day, err := utils.ParseDateInLocation(key, loc)
	if err != nil {
		return false
	}
	due := 0
	for _, t := range trackers {
		if utils.StartOfDay(t.CreatedAt.In(loc)).After(day) {
			continue
		}
		if !filter.DateEligible(t, day, loc) {
			continue
		}
		due++
		if !done[t.ID] {
			return false
		}
	}
	return due > 0
}
