package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

func (s *Store) AddRecord(ctx context.Context, record models.CompletionRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO completion_records (tracker_id, day) VALUES (?, ?) ON CONFLICT(tracker_id, day) DO NOTHING",
		record.TrackerID, utils.DayKey(record.Day))
	if err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, trackerID string, day time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM completion_records WHERE tracker_id = ? AND day = ?", trackerID, utils.DayKey(day))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (s *Store) HasRecord(ctx context.Context, trackerID string, day time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM completion_records WHERE tracker_id = ? AND day = ?", trackerID, utils.DayKey(day)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CountRecords(ctx context.Context, trackerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM completion_records WHERE tracker_id = ?", trackerID).Scan(&count)
	return count, err
}

func (s *Store) GetAllRecords(ctx context.Context) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tracker_id, day FROM completion_records ORDER BY day, tracker_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.CompletionRecord{}
	for rows.Next() {
		var r models.CompletionRecord
		var day string
		if err := rows.Scan(&r.TrackerID, &day); err != nil {
			return nil, err
		}
		r.Day, err = time.Parse(constants.DateFormat, day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day %q: %w", day, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
