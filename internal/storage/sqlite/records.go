package sqlite

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]models.TrackerRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TrackerRecord
	for rows.Next() {
		var r models.TrackerRecord
		var day string
		if err := rows.Scan(&r.TrackerID, &day); err != nil {
			return nil, err
		}
		if r.Date, err = storage.ParseDay(day); err != nil {
			storage.SkipRow("record", err)
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) FetchRecordsForDay(ctx context.Context, day string) ([]models.TrackerRecord, error) {
	return s.queryRecords(ctx, "SELECT tracker_id, day FROM tracker_records WHERE day = ? ORDER BY tracker_id", day)
}

func (s *Store) FetchAllRecords(ctx context.Context) ([]models.TrackerRecord, error) {
	return s.queryRecords(ctx, "SELECT tracker_id, day FROM tracker_records ORDER BY day, tracker_id")
}

func (s *Store) FetchRecordCount(ctx context.Context, trackerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracker_records WHERE tracker_id = ?", trackerID).Scan(&count)
	return count, err
}

func (s *Store) FetchTotalRecordCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracker_records").Scan(&count)
	return count, err
}

func (s *Store) HasRecord(ctx context.Context, trackerID, day string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tracker_records WHERE tracker_id = ? AND day = ?", trackerID, day).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) InsertRecord(ctx context.Context, r models.TrackerRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tracker_records (tracker_id, day) VALUES (?, ?)", r.TrackerID, r.Date)
	return err
}

func (s *Store) DeleteRecord(ctx context.Context, trackerID, day string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM tracker_records WHERE tracker_id = ? AND day = ?", trackerID, day)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("record for tracker %s on %s: %w", trackerID, day, errors.ErrNotFound)
	}
	return nil
}
