package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

const trackerColumns = `
	SELECT t.id, t.title, t.color, t.emoji, t.schedule, t.is_pinned, t.created_at, t.category_id, c.title
	FROM trackers t JOIN categories c ON c.id = t.category_id`

type trackerRow struct {
	models.Tracker
	categoryID string
}

func (s *Store) queryTrackers(ctx context.Context, where string, args ...any) ([]trackerRow, error) {
	rows, err := s.db.QueryContext(ctx, trackerColumns+" "+where+" ORDER BY c.title, t.position, t.created_at", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trackerRow
	for rows.Next() {
		var r trackerRow
		var schedule, createdAt string
		var pinned int
		if err := rows.Scan(&r.ID, &r.Title, &r.Color, &r.Emoji, &schedule, &pinned, &createdAt, &r.categoryID, &r.CategoryTitle); err != nil {
			return nil, err
		}
		if r.Schedule, err = decodeSchedule(schedule); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		r.IsPinned = pinned != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AddTracker(ctx context.Context, tracker models.Tracker, categoryTitle string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	categoryID, err := s.ensureCategory(ctx, tx, categoryTitle)
	if err != nil {
		return err
	}

	if tracker.CreatedAt.IsZero() {
		tracker.CreatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO trackers (id, category_id, title, color, emoji, schedule, is_pinned, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM trackers WHERE category_id = ?), ?)`,
		tracker.ID, categoryID, tracker.Title, tracker.Color, tracker.Emoji,
		encodeSchedule(tracker.Schedule), boolToInt(tracker.IsPinned), categoryID,
		tracker.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert tracker: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetTracker(ctx context.Context, id string) (models.Tracker, error) {
	rows, err := s.queryTrackers(ctx, "WHERE t.id = ?", id)
	if err != nil {
		return models.Tracker{}, err
	}
	if len(rows) == 0 {
		return models.Tracker{}, fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	return rows[0].Tracker, nil
}

func (s *Store) GetAllTrackers(ctx context.Context) ([]models.Tracker, error) {
	rows, err := s.queryTrackers(ctx, "")
	if err != nil {
		return nil, err
	}
	trackers := make([]models.Tracker, len(rows))
	for i, r := range rows {
		trackers[i] = r.Tracker
	}
	return trackers, nil
}

func (s *Store) UpdateTracker(ctx context.Context, tracker models.Tracker) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trackers SET title = ?, color = ?, emoji = ?, schedule = ?, is_pinned = ?
		WHERE id = ?`,
		tracker.Title, tracker.Color, tracker.Emoji, encodeSchedule(tracker.Schedule),
		boolToInt(tracker.IsPinned), tracker.ID)
	if err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tracker %s: %w", tracker.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) MoveTracker(ctx context.Context, id, categoryTitle string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	if err := tx.QueryRowContext(ctx, "SELECT category_id FROM trackers WHERE id = ?", id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
		}
		return err
	}

	categoryID, err := s.ensureCategory(ctx, tx, categoryTitle)
	if err != nil {
		return err
	}
	if categoryID == current {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE trackers SET category_id = ?,
			position = (SELECT COALESCE(MAX(position), 0) + 1 FROM trackers WHERE category_id = ?)
		WHERE id = ?`, categoryID, categoryID, id)
	if err != nil {
		return fmt.Errorf("failed to move tracker: %w", err)
	}
	return tx.Commit()
}

func (s *Store) TogglePin(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE trackers SET is_pinned = 1 - is_pinned WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle pin: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return false, fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	var pinned int
	if err := s.db.QueryRowContext(ctx, "SELECT is_pinned FROM trackers WHERE id = ?", id).Scan(&pinned); err != nil {
		return false, err
	}
	return pinned != 0, nil
}

func (s *Store) DeleteTracker(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trackers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
