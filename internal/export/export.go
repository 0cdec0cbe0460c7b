// Package export writes and reads portable snapshots of a tracker store.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Format is a snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", errors.ErrValidation, s)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Snapshot is everything a store holds. The pinned category is implied and
// never written.
type Snapshot struct {
	Version    int                    `json:"version" yaml:"version" cbor:"1,keyasint"`
	ExportedAt time.Time              `json:"exported_at" yaml:"exported_at" cbor:"2,keyasint"`
	Settings   models.Settings        `json:"settings" yaml:"settings" cbor:"3,keyasint"`
	Categories []models.Category      `json:"categories" yaml:"categories" cbor:"4,keyasint"`
	Trackers   []models.Tracker       `json:"trackers" yaml:"trackers" cbor:"5,keyasint"`
	Records    []models.TrackerRecord `json:"records" yaml:"records" cbor:"6,keyasint"`
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	if cborEnc, err = opts.EncMode(); err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
	if cborDec, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic("export: CBOR decoder initialization failed: " + err.Error())
	}
}

// Take reads a snapshot out of store.
func Take(ctx context.Context, store storage.Provider, now time.Time) (Snapshot, error) {
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read settings: %w", err)
	}
	all, err := store.FetchAllCategories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read categories: %w", err)
	}
	trackers, err := store.FetchAllTrackers(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read trackers: %w", err)
	}
	records, err := store.FetchAllRecords(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read records: %w", err)
	}

	categories := make([]models.Category, 0, len(all))
	for _, c := range all {
		if !c.IsPinned() {
			categories = append(categories, c)
		}
	}
	if records == nil {
		records = []models.TrackerRecord{}
	}
	if trackers == nil {
		trackers = []models.Tracker{}
	}

	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: now.UTC(),
		Settings:   settings,
		Categories: categories,
		Trackers:   trackers,
		Records:    records,
	}, nil
}

// Encode writes snap to w.
func Encode(w io.Writer, snap Snapshot, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatCBOR:
		return cborEnc.NewEncoder(w).Encode(snap)
	}
	return fmt.Errorf("%w: unknown export format %q", errors.ErrValidation, format)
}

// Decode reads a snapshot from r and checks it for consistency.
func Decode(r io.Reader, format Format) (Snapshot, error) {
	var snap Snapshot
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&snap)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&snap)
	case FormatCBOR:
		err = cborDec.NewDecoder(r).Decode(&snap)
	default:
		return Snapshot{}, fmt.Errorf("%w: unknown export format %q", errors.ErrValidation, format)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: failed to decode %s snapshot: %v", errors.ErrConversion, format, err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Validate checks that every reference in the snapshot resolves.
func (s Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", errors.ErrValidation, s.Version)
	}

	categories := map[string]bool{constants.PinnedCategoryID: true}
	seen := map[string]bool{}
	titles := map[string]bool{}
	for _, c := range s.Categories {
		if c.ID == "" || strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("%w: category with empty id or title", errors.ErrValidation)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate category id %s", errors.ErrValidation, c.ID)
		}
		if titles[strings.ToLower(c.Title)] {
			return fmt.Errorf("%w: duplicate category title %q", errors.ErrValidation, c.Title)
		}
		seen[c.ID] = true
		categories[c.ID] = true
		titles[strings.ToLower(c.Title)] = true
	}

	trackers := map[string]bool{}
	for _, t := range s.Trackers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tracker %s: %w", t.ID, err)
		}
		if !categories[t.CategoryID] {
			return fmt.Errorf("%w: tracker %s refers to unknown category %s", errors.ErrValidation, t.ID, t.CategoryID)
		}
		trackers[t.ID] = true
	}

	for _, r := range s.Records {
		if !trackers[r.TrackerID] {
			return fmt.Errorf("%w: record for unknown tracker %s", errors.ErrValidation, r.TrackerID)
		}
		if _, err := time.Parse(constants.DateFormat, r.Date); err != nil {
			return fmt.Errorf("%w: record date %q", errors.ErrValidation, r.Date)
		}
	}
	return nil
}

// Summary counts what an import wrote and what it left alone.
type Summary struct {
	Categories int
	Trackers   int
	Records    int
	Skipped    int
}

// RestoreOptions controls how a snapshot is merged.
type RestoreOptions struct {
	// Today is the current day key (YYYY-MM-DD). Records after it are refused.
	Today string
	// WithSettings replaces the stored settings with the snapshot's.
	WithSettings bool
}

// restorePlan is the set of rows an import will write.
type restorePlan struct {
	categories []models.Category
	trackers   []models.Tracker
	records    []models.TrackerRecord
	skipped    int
}

// Restore merges snap into store. Rows whose IDs already exist are kept as
// they are. Every row is checked against the store before the first write,
// so a refused snapshot leaves the store untouched.
func Restore(ctx context.Context, store storage.Provider, snap Snapshot, opts RestoreOptions) (Summary, error) {
	if err := snap.Validate(); err != nil {
		return Summary{}, err
	}
	plan, err := planRestore(ctx, store, snap, opts.Today)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Skipped: plan.skipped}
	if opts.WithSettings {
		if err := store.SaveSettings(ctx, snap.Settings); err != nil {
			return sum, fmt.Errorf("failed to save settings: %w", err)
		}
	}
	for _, c := range plan.categories {
		if err := store.InsertCategory(ctx, c); err != nil {
			return sum, fmt.Errorf("failed to import category %s: %w", c.Title, err)
		}
		sum.Categories++
	}
	for _, t := range plan.trackers {
		if err := store.InsertTracker(ctx, t); err != nil {
			return sum, fmt.Errorf("failed to import tracker %s: %w", t.Title, err)
		}
		sum.Trackers++
	}
	for _, r := range plan.records {
		if err := store.InsertRecord(ctx, r); err != nil {
			return sum, fmt.Errorf("failed to import record: %w", err)
		}
		sum.Records++
	}

	logger.Info("Snapshot imported", "categories", sum.Categories, "trackers", sum.Trackers, "records", sum.Records, "skipped", sum.Skipped)
	return sum, nil
}

// planRestore decides which snapshot rows are new and refuses the whole
// snapshot when any new row could not be written.
func planRestore(ctx context.Context, store storage.Provider, snap Snapshot, today string) (restorePlan, error) {
	var plan restorePlan
	if _, err := time.Parse(constants.DateFormat, today); err != nil {
		return plan, fmt.Errorf("%w: invalid current day %q", errors.ErrValidation, today)
	}
	for _, r := range snap.Records {
		if r.Date > today {
			return plan, fmt.Errorf("%w: record for tracker %s on %s is after %s", errors.ErrFutureDate, r.TrackerID, r.Date, today)
		}
	}

	existing, err := store.FetchAllCategories(ctx)
	if err != nil {
		return plan, fmt.Errorf("failed to read categories: %w", err)
	}
	known := make(map[string]bool, len(existing))
	titles := make(map[string]string, len(existing))
	for _, c := range existing {
		known[c.ID] = true
		titles[strings.ToLower(c.Title)] = c.ID
	}
	for _, c := range snap.Categories {
		if known[c.ID] {
			plan.skipped++
			continue
		}
		if id, clash := titles[strings.ToLower(c.Title)]; clash {
			return plan, fmt.Errorf("%w: category %q clashes with existing category %s", errors.ErrValidation, c.Title, id)
		}
		plan.categories = append(plan.categories, c)
	}

	trackers, err := store.FetchAllTrackers(ctx)
	if err != nil {
		return plan, fmt.Errorf("failed to read trackers: %w", err)
	}
	stored := make(map[string]bool, len(trackers))
	for _, t := range trackers {
		stored[t.ID] = true
	}
	for _, t := range snap.Trackers {
		if stored[t.ID] {
			plan.skipped++
			continue
		}
		plan.trackers = append(plan.trackers, t)
	}

	for _, r := range snap.Records {
		has, err := store.HasRecord(ctx, r.TrackerID, r.Date)
		if err != nil {
			return plan, err
		}
		if has {
			plan.skipped++
			continue
		}
		plan.records = append(plan.records, r)
	}
	return plan, nil
}
