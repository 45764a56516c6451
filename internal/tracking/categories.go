package tracking

import (
	"context"
	"errors"
	"strings"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/validation"
)

// CategoryStore manages categories and tracker membership.
type CategoryStore struct {
	provider storage.Provider
}

func NewCategoryStore(provider storage.Provider) *CategoryStore {
	return &CategoryStore{provider: provider}
}

// Fetch returns all categories sorted by title.
func (c *CategoryStore) Fetch(ctx context.Context) ([]models.Category, error) {
	return c.provider.GetAllCategories(ctx)
}

// Add creates an empty category.
func (c *CategoryStore) Add(ctx context.Context, title string) (models.Category, error) {
	title = strings.TrimSpace(title)
	if err := validation.CategoryTitle(title); err != nil {
		return models.Category{}, err
	}
	return c.provider.AddCategory(ctx, title)
}

// AddTracker validates tracker and appends it to the category, creating
// the category if it does not exist.
func (c *CategoryStore) AddTracker(ctx context.Context, tracker models.Tracker, categoryTitle string) error {
	categoryTitle = strings.TrimSpace(categoryTitle)
	tracker.Title = strings.TrimSpace(tracker.Title)
	tracker.Schedule = models.NewSchedule(tracker.Schedule...)
	if err := validation.Tracker(tracker); err != nil {
		return err
	}
	if err := validation.CategoryTitle(categoryTitle); err != nil {
		return err
	}
	return c.provider.AddTracker(ctx, tracker, categoryTitle)
}

// RemoveTracker deletes the tracker if it belongs to fromTitle. Missing
// trackers and trackers of other categories are left alone.
func (c *CategoryStore) RemoveTracker(ctx context.Context, trackerID, fromTitle string) error {
	tracker, err := c.provider.GetTracker(ctx, trackerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if tracker.CategoryTitle != fromTitle {
		return nil
	}
	return ignoreNotFound(c.provider.DeleteTracker(ctx, trackerID))
}

// MoveTracker moves a tracker to another category, keeping its records.
func (c *CategoryStore) MoveTracker(ctx context.Context, trackerID, toTitle string) error {
	toTitle = strings.TrimSpace(toTitle)
	if err := validation.CategoryTitle(toTitle); err != nil {
		return err
	}
	return c.provider.MoveTracker(ctx, trackerID, toTitle)
}

// Rename changes a category title. Trackers stay members.
func (c *CategoryStore) Rename(ctx context.Context, oldTitle, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if err := validation.CategoryTitle(newTitle); err != nil {
		return err
	}
	return c.provider.RenameCategory(ctx, oldTitle, newTitle)
}

// Delete removes a category with its trackers and their records. Deleting a
// missing category is a no-op.
func (c *CategoryStore) Delete(ctx context.Context, title string) error {
	return ignoreNotFound(c.provider.DeleteCategory(ctx, title))
}

func ignoreNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
