package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/tracker/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a category title is already taken
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotInitialized is returned by Load when Init has never run
	ErrNotInitialized = errors.New("storage not initialized, run 'tracker init' first")
	// ErrSchemaOutdated is returned by Load when migrations are pending
	ErrSchemaOutdated = errors.New("database schema is out of date, run 'tracker migrate'")
)

// Backend names reported by Provider.Backend
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendJSON     = "json"
)

// Provider is the persistence contract shared by every backend.
// Completion days are stored as calendar dates; records read back carry the
// date at midnight UTC. Categories are returned sorted by title with their
// trackers in insertion order.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string
	Backend() string

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Categories
	AddCategory(ctx context.Context, title string) (models.Category, error)
	GetCategoryByTitle(ctx context.Context, title string) (models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	RenameCategory(ctx context.Context, oldTitle, newTitle string) error
	// DeleteCategory removes the category together with its trackers and their records.
	DeleteCategory(ctx context.Context, title string) error

	// Trackers
	// AddTracker appends tracker to the category, creating the category if needed.
	AddTracker(ctx context.Context, tracker models.Tracker, categoryTitle string) error
	GetTracker(ctx context.Context, id string) (models.Tracker, error)
	GetAllTrackers(ctx context.Context) ([]models.Tracker, error)
	// UpdateTracker saves title, color, emoji, schedule and pin state.
	UpdateTracker(ctx context.Context, tracker models.Tracker) error
	// MoveTracker appends the tracker to another category, keeping its records.
	MoveTracker(ctx context.Context, id, categoryTitle string) error
	TogglePin(ctx context.Context, id string) (bool, error)
	// DeleteTracker removes the tracker and its records.
	DeleteTracker(ctx context.Context, id string) error

	// Completion records
	// AddRecord is a no-op when the tracker already has a record for the day.
	AddRecord(ctx context.Context, record models.CompletionRecord) error
	// DeleteRecord is a no-op when no record exists for the day.
	DeleteRecord(ctx context.Context, trackerID string, day time.Time) error
	HasRecord(ctx context.Context, trackerID string, day time.Time) (bool, error)
	CountRecords(ctx context.Context, trackerID string) (int, error)
	GetAllRecords(ctx context.Context) ([]models.CompletionRecord, error)
}
