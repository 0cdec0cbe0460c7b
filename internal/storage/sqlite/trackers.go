package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

const trackerColumns = `id, title, emoji, color, schedule, category_id, is_pinned, original_category_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTracker(row rowScanner) (models.Tracker, error) {
	var t models.Tracker
	var schedule int
	var isPinned int
	var title, emoji, color, categoryID, createdAt sql.NullString
	var originalCategoryID sql.NullString

	if err := row.Scan(&t.ID, &title, &emoji, &color, &schedule, &categoryID, &isPinned, &originalCategoryID, &createdAt); err != nil {
		return models.Tracker{}, err
	}

	t.Title = title.String
	t.Emoji = emoji.String
	t.Color = color.String
	t.Schedule = models.WeekdayMask(schedule) & models.AllDays
	t.CategoryID = categoryID.String
	t.IsPinned = isPinned != 0
	t.OriginalCategoryID = originalCategoryID.String

	if err := storage.CheckTrackerRow(t); err != nil {
		return models.Tracker{}, err
	}

	created, err := storage.ParseTimestamp("created_at", createdAt.String)
	if err != nil {
		return models.Tracker{}, fmt.Errorf("tracker %s: %w", t.ID, err)
	}
	t.CreatedAt = created

	return t, nil
}

func (s *Store) FetchAllTrackers(ctx context.Context) ([]models.Tracker, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackerColumns+` FROM trackers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trackers []models.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			if errors.Is(err, errors.ErrConversion) {
				storage.SkipRow("tracker", err)
				continue
			}
			return nil, err
		}
		trackers = append(trackers, t)
	}

	return trackers, rows.Err()
}

func (s *Store) GetTracker(ctx context.Context, id string) (models.Tracker, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackerColumns+` FROM trackers WHERE id = ?`, id)

	t, err := scanTracker(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tracker{}, fmt.Errorf("tracker %s: %w", id, errors.ErrNotFound)
		}
		return models.Tracker{}, err
	}
	return t, nil
}

func trackerArgs(t models.Tracker) []any {
	var original sql.NullString
	if t.OriginalCategoryID != "" {
		original = sql.NullString{String: t.OriginalCategoryID, Valid: true}
	}
	pinned := 0
	if t.IsPinned {
		pinned = 1
	}
	return []any{
		t.ID, t.Title, t.Emoji, t.Color, int(t.Schedule), t.CategoryID, pinned, original,
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Store) InsertTracker(ctx context.Context, t models.Tracker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trackers (`+trackerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trackerArgs(t)...)
	return err
}

func (s *Store) UpdateTracker(ctx context.Context, t models.Tracker) error {
	args := trackerArgs(t)
	result, err := s.db.ExecContext(ctx, `
		UPDATE trackers SET
			title = ?, emoji = ?, color = ?, schedule = ?, category_id = ?,
			is_pinned = ?, original_category_id = ?
		WHERE id = ?`,
		append(args[1:8], t.ID)...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("tracker %s: %w", t.ID, errors.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTracker(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracker_records WHERE tracker_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM trackers WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("tracker %s: %w", id, errors.ErrNotFound)
	}

	return tx.Commit()
}
