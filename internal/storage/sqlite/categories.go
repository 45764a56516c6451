package sqlite

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
	if _, err := s.categoryID(ctx, s.db, title); err == nil {
		return models.Category{}, fmt.Errorf("category %q: %w", title, storage.ErrAlreadyExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Category{}, err
	}
	return s.insertCategory(ctx, s.db, title)
}

func (s *Store) insertCategory(ctx context.Context, q queryer, title string) (models.Category, error) {
	c := models.Category{
		ID:        uuid.New().String(),
		Title:     title,
		Trackers:  []models.Tracker{},
		CreatedAt: time.Now().UTC(),
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO categories (id, title, created_at) VALUES (?, ?, ?)",
		c.ID, c.Title, c.CreatedAt.Format(timeLayout))
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

// categoryID looks up a category by title, returning storage.ErrNotFound if missing
func (s *Store) categoryID(ctx context.Context, q queryer, title string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, "SELECT id FROM categories WHERE title = ?", title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
	}
	return id, err
}

// ensureCategory returns the ID of the titled category, creating it if needed
func (s *Store) ensureCategory(ctx context.Context, q queryer, title string) (string, error) {
	id, err := s.categoryID(ctx, q, title)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	c, err := s.insertCategory(ctx, q, title)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *Store) GetCategoryByTitle(ctx context.Context, title string) (models.Category, error) {
	categories, err := s.GetAllCategories(ctx)
	if err != nil {
		return models.Category{}, err
	}
	for _, c := range categories {
		if c.Title == title {
			return c, nil
		}
	}
	return models.Category{}, fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
}

func (s *Store) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, created_at FROM categories ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	index := make(map[string]int)
	for rows.Next() {
		var c models.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Title, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		c.Trackers = []models.Tracker{}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

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

	if _, err := tx.ExecContext(ctx, "UPDATE categories SET title = ? WHERE id = ?", newTitle, id); err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	return tx.Commit()
}

func (s *Store) DeleteCategory(ctx context.Context, title string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
	}
	return nil
}
