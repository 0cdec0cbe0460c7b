package postgres

import (
	"context"
	"database/sql"
	"fmt"

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
	var title, emoji, color, categoryID, originalCategoryID sql.NullString
	var createdAt sql.NullTime

	if err := row.Scan(&t.ID, &title, &emoji, &color, &schedule, &categoryID, &t.IsPinned, &originalCategoryID, &createdAt); err != nil {
		return models.Tracker{}, err
	}

	t.Title = title.String
	t.Emoji = emoji.String
	t.Color = color.String
	t.Schedule = models.WeekdayMask(schedule) & models.AllDays
	t.CategoryID = categoryID.String
	t.OriginalCategoryID = originalCategoryID.String

	if err := storage.CheckTrackerRow(t); err != nil {
		return models.Tracker{}, err
	}
	if !createdAt.Valid {
		return models.Tracker{}, fmt.Errorf("%w: tracker %s has no created_at", errors.ErrConversion, t.ID)
	}
	t.CreatedAt = createdAt.Time.UTC()

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
	row := s.db.QueryRowContext(ctx, `SELECT `+trackerColumns+` FROM trackers WHERE id = $1`, id)
	t, err := scanTracker(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tracker{}, fmt.Errorf("tracker %s: %w", id, errors.ErrNotFound)
		}
		return models.Tracker{}, err
	}
	return t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) InsertTracker(ctx context.Context, t models.Tracker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trackers (`+trackerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Title, t.Emoji, t.Color, int(t.Schedule), t.CategoryID, t.IsPinned,
		nullable(t.OriginalCategoryID), t.CreatedAt.UTC())
	return err
}

func (s *Store) UpdateTracker(ctx context.Context, t models.Tracker) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trackers SET
			title = $1, emoji = $2, color = $3, schedule = $4, category_id = $5,
			is_pinned = $6, original_category_id = $7
		WHERE id = $8`,
		t.Title, t.Emoji, t.Color, int(t.Schedule), t.CategoryID, t.IsPinned,
		nullable(t.OriginalCategoryID), t.ID)
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

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracker_records WHERE tracker_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM trackers WHERE id = $1", id)
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
