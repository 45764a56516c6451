package postgres

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
	rows, err := s.db.QueryContext(ctx, trackerColumns+" "+where+" ORDER BY c.title COLLATE \"C\", t.position, t.created_at", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trackerRow
	for rows.Next() {
		var r trackerRow
		var schedule string
		if err := rows.Scan(&r.ID, &r.Title, &r.Color, &r.Emoji, &schedule, &r.IsPinned, &r.CreatedAt, &r.categoryID, &r.CategoryTitle); err != nil {
			return nil, err
		}
		if r.Schedule, err = decodeSchedule(schedule); err != nil {
			return nil, err
		}
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
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM trackers WHERE category_id = $2), $8)`,
		tracker.ID, categoryID, tracker.Title, tracker.Color, tracker.Emoji,
		encodeSchedule(tracker.Schedule), tracker.IsPinned, tracker.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert tracker: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetTracker(ctx context.Context, id string) (models.Tracker, error) {
	rows, err := s.queryTrackers(ctx, "WHERE t.id = $1", id)
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
		UPDATE trackers SET title = $1, color = $2, emoji = $3, schedule = $4, is_pinned = $5
		WHERE id = $6`,
		tracker.Title, tracker.Color, tracker.Emoji, encodeSchedule(tracker.Schedule), tracker.IsPinned, tracker.ID)
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
	err = tx.QueryRowContext(ctx, "SELECT category_id FROM trackers WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
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
		UPDATE trackers SET category_id = $1,
			position = (SELECT COALESCE(MAX(position), 0) + 1 FROM trackers WHERE category_id = $1)
		WHERE id = $2`, categoryID, id)
	if err != nil {
		return fmt.Errorf("failed to move tracker: %w", err)
	}
	return tx.Commit()
}

func (s *Store) TogglePin(ctx context.Context, id string) (bool, error) {
	var pinned bool
	err := s.db.QueryRowContext(ctx,
		"UPDATE trackers SET is_pinned = NOT is_pinned WHERE id = $1 RETURNING is_pinned", id).Scan(&pinned)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle pin: %w", err)
	}
	return pinned, nil
}

func (s *Store) DeleteTracker(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trackers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
