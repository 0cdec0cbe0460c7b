package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
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
		var day time.Time
		if err := rows.Scan(&r.TrackerID, &day); err != nil {
			return nil, err
		}
		r.Date = day.Format(constants.DateFormat)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) FetchRecordsForDay(ctx context.Context, day string) ([]models.TrackerRecord, error) {
	return s.queryRecords(ctx, "SELECT tracker_id, day FROM tracker_records WHERE day = $1 ORDER BY tracker_id", day)
}

func (s *Store) FetchAllRecords(ctx context.Context) ([]models.TrackerRecord, error) {
	return s.queryRecords(ctx, "SELECT tracker_id, day FROM tracker_records ORDER BY day, tracker_id")
}

func (s *Store) FetchRecordCount(ctx context.Context, trackerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracker_records WHERE tracker_id = $1", trackerID).Scan(&count)
	return count, err
}

func (s *Store) FetchTotalRecordCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracker_records").Scan(&count)
	return count, err
}

func (s *Store) HasRecord(ctx context.Context, trackerID, day string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM tracker_records WHERE tracker_id = $1 AND day = $2)", trackerID, day).Scan(&exists)
	return exists, err
}

func (s *Store) InsertRecord(ctx context.Context, r models.TrackerRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tracker_records (tracker_id, day) VALUES ($1, $2)", r.TrackerID, r.Date)
	return err
}

func (s *Store) DeleteRecord(ctx context.Context, trackerID, day string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM tracker_records WHERE tracker_id = $1 AND day = $2", trackerID, day)
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
