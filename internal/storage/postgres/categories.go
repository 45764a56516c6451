package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) AddCategory(ctx context.Context, title string) (models.Category, error) {
	c := models.Category{
		ID:        uuid.New().String(),
		Title:     title,
		Trackers:  []models.Tracker{},
		CreatedAt: time.Now().UTC(),
	}
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, title, created_at) VALUES ($1, $2, $3) ON CONFLICT (title) DO NOTHING",
		c.ID, c.Title, c.CreatedAt)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.Category{}, fmt.Errorf("category %q: %w", title, storage.ErrAlreadyExists)
	}
	return c, nil
}

// ensureCategory returns the ID of the titled category, creating it if needed
func (s *Store) ensureCategory(ctx context.Context, q queryer, title string) (string, error) {
	_, err := q.ExecContext(ctx,
		"INSERT INTO categories (id, title, created_at) VALUES ($1, $2, $3) ON CONFLICT (title) DO NOTHING",
		uuid.New().String(), title, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert category: %w", err)
	}
	return s.categoryID(ctx, q, title)
}

func (s *Store) categoryID(ctx context.Context, q queryer, title string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, "SELECT id FROM categories WHERE title = $1", title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
	}
	return id, err
}

func (s *Store) GetCategoryByTitle(ctx context.Context, title string) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM categories WHERE title = $1", title).Scan(&c.ID, &c.Title, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
	}
	if err != nil {
		return models.Category{}, err
	}

	rows, err := s.queryTrackers(ctx, "WHERE t.category_id = $1", c.ID)
	if err != nil {
		return models.Category{}, err
	}
	c.Trackers = make([]models.Tracker, len(rows))
	for i, r := range rows {
		c.Trackers[i] = r.Tracker
	}
	return c, nil
}

func (s *Store) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, created_at FROM categories ORDER BY title COLLATE \"C\"")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	index := make(map[string]int)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Trackers = []models.Tracker{}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trackers, err := s.queryTrackers(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, t := range trackers {
		if i, ok := index[t.categoryID]; ok {
			categories[i].Trackers = append(categories[i].Trackers, t.Tracker)
		}
	}
	return categories, nil
}

func (s *Store) RenameCategory(ctx context.Context, oldTitle, newTitle string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := s.categoryID(ctx, tx, oldTitle)
	if err != nil {
		return err
	}
	if oldTitle == newTitle {
		return nil
	}
	if _, err := s.categoryID(ctx, tx, newTitle); err == nil {
		return fmt.Errorf("category %q: %w", newTitle, storage.ErrAlreadyExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE categories SET title = $1 WHERE id = $2", newTitle, id); err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	return tx.Commit()
}

func (s *Store) DeleteCategory(ctx context.Context, title string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE title = $1", title)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
	}
	return nil
}
