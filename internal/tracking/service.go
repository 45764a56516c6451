package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/queue"
	"github.com/julianstephens/tracker/internal/stats"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/utils"
	"github.com/julianstephens/tracker/internal/validation"
	"github.com/julianstephens/tracker/internal/visibility"
)

// ErrAmbiguous is returned when a tracker reference matches more than one tracker.
var ErrAmbiguous = errors.New("ambiguous tracker reference")

// Service is the entry point used by the CLI and the board. Writes run
// through a serialized queue and publish an event once they are durable;
// reads go straight to the provider.
type Service struct {
	provider   storage.Provider
	records    *RecordStore
	categories *CategoryStore
	queue      *queue.Queue
	bus        *events.Bus

	mu  sync.RWMutex
	loc *time.Location
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wraps an initialized provider.
func NewService(provider storage.Provider, opts ...Option) *Service {
	s := &Service{
		provider:   provider,
		records:    NewRecordStore(provider),
		categories: NewCategoryStore(provider),
		queue:      queue.New(),
		bus:        events.NewBus(),
		loc:        time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close drains pending writes and closes subscriptions. It does not close
// the provider.
func (s *Service) Close() error {
	err := s.queue.Close()
	s.bus.Close()
	return err
}

// Subscribe returns a channel of change events and an unsubscribe func.
func (s *Service) Subscribe() (<-chan events.Event, func()) {
	return s.bus.Subscribe()
}

// Location returns the timezone used for calendar days.
func (s *Service) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// Today returns the start of the current day.
func (s *Service) Today() time.Time {
	return utils.StartOfDay(s.now().In(s.Location()))
}

func (s *Service) day(date time.Time) time.Time {
	return utils.StartOfDay(date.In(s.Location()))
}

// mutate runs job on the write queue and publishes e if it succeeds. Jobs
// that turn out to be no-ops leave e.Kind empty.
func (s *Service) mutate(ctx context.Context, e *events.Event, job queue.Job) error {
	if err := s.queue.Do(ctx, job); err != nil {
		if errors.Is(err, validation.ErrNotReady) || errors.Is(err, storage.ErrAlreadyExists) {
			logger.Debug("write rejected", "kind", e.Kind, "error", err)
		} else {
			logger.Error("write failed", "kind", e.Kind, "error", err)
		}
		return err
	}
	if e.Kind == "" {
		return nil
	}
	logger.Debug("write applied", "kind", e.Kind, "tracker", e.TrackerID, "category", e.Category)
	s.bus.Publish(*e)
	return nil
}

// VisibleCategories returns the sections to show for date. The today filter
// always uses the current day, whatever date is passed.
func (s *Service) VisibleCategories(ctx context.Context, date time.Time, search string, filter constants.StatusFilter) ([]visibility.Section, error) {
	if filter == constants.FilterToday {
		date = s.Today()
	}
	categories, err := s.categories.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	records, err := s.records.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return visibility.Derive(categories, records, visibility.Query{
		Date:   s.day(date),
		Search: search,
		Filter: filter,
	}), nil
}

// IsCompletedOn reports whether trackerID has a record for the day of date.
func (s *Service) IsCompletedOn(ctx context.Context, trackerID string, date time.Time) (bool, error) {
	return s.records.Has(ctx, trackerID, s.day(date))
}

// CompletedDays returns how many days trackerID was completed.
func (s *Service) CompletedDays(ctx context.Context, trackerID string) (int, error) {
	return s.records.Count(ctx, trackerID)
}

// ToggleCompletion flips the completion of trackerID on the day of date.
// Future days and unknown trackers are ignored.
func (s *Service) ToggleCompletion(ctx context.Context, trackerID string, date time.Time) error {
	day := s.day(date)
	if utils.IsAfterDay(day, s.Today()) {
		logger.Debug("ignoring completion toggle for a future day", "tracker", trackerID, "day", utils.DayKey(day))
		return nil
	}

	e := events.Event{TrackerID: trackerID, Day: utils.DayKey(day)}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		if _, err := s.provider.GetTracker(ctx, trackerID); err != nil {
			return ignoreNotFound(err)
		}
		done, err := s.records.Has(ctx, trackerID, day)
		if err != nil {
			return err
		}
		if done {
			e.Kind = events.RecordRemoved
			return s.records.Delete(ctx, trackerID, day)
		}
		e.Kind = events.RecordAdded
		return s.records.Add(ctx, trackerID, day)
	})
}

// MarkCompleted records a completion without toggling. Repeating it is a
// no-op; future days are ignored.
func (s *Service) MarkCompleted(ctx context.Context, trackerID string, date time.Time) error {
	day := s.day(date)
	if utils.IsAfterDay(day, s.Today()) {
		logger.Debug("ignoring completion for a future day", "tracker", trackerID, "day", utils.DayKey(day))
		return nil
	}
	e := events.Event{Kind: events.RecordAdded, TrackerID: trackerID, Day: utils.DayKey(day)}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		if _, err := s.provider.GetTracker(ctx, trackerID); err != nil {
			return ignoreNotFound(err)
		}
		return s.records.Add(ctx, trackerID, day)
	})
}

// Statistics recomputes the statistics from a fresh read.
func (s *Service) Statistics(ctx context.Context) (stats.Result, error) {
	categories, err := s.categories.Fetch(ctx)
	if err != nil {
		return stats.Result{}, fmt.Errorf("failed to load categories: %w", err)
	}
	records, err := s.provider.GetAllRecords(ctx)
	if err != nil {
		return stats.Result{}, fmt.Errorf("failed to load records: %w", err)
	}
	return stats.Calculate(categories, records), nil
}

// Categories returns all categories sorted by title.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.Fetch(ctx)
}

// Records returns all completion records.
func (s *Service) Records(ctx context.Context) ([]models.CompletionRecord, error) {
	return s.provider.GetAllRecords(ctx)
}

// Tracker returns a tracker by ID.
func (s *Service) Tracker(ctx context.Context, id string) (models.Tracker, error) {
	return s.provider.GetTracker(ctx, id)
}

// FindTracker resolves ref as a tracker ID, an ID prefix of at least four
// characters or a case-insensitive title.
func (s *Service) FindTracker(ctx context.Context, ref string) (models.Tracker, error) {
	ref = strings.TrimSpace(ref)
	if t, err := s.provider.GetTracker(ctx, ref); err == nil {
		return t, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Tracker{}, err
	}

	trackers, err := s.provider.GetAllTrackers(ctx)
	if err != nil {
		return models.Tracker{}, err
	}
	var matches []models.Tracker
	for _, t := range trackers {
		if strings.EqualFold(t.Title, ref) || (len(ref) >= 4 && strings.HasPrefix(t.ID, ref)) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Tracker{}, fmt.Errorf("tracker %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Tracker{}, fmt.Errorf("%w: %q matches %d trackers", ErrAmbiguous, ref, len(matches))
	}
}

// CreateTracker validates and stores a new tracker in categoryTitle.
func (s *Service) CreateTracker(ctx context.Context, tracker models.Tracker, categoryTitle string) error {
	e := events.Event{Kind: events.TrackerAdded, TrackerID: tracker.ID, Category: categoryTitle}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		return s.categories.AddTracker(ctx, tracker, categoryTitle)
	})
}

// UpdateTracker saves an edited tracker and moves it to categoryTitle if
// that differs from its current category. Records are kept.
func (s *Service) UpdateTracker(ctx context.Context, tracker models.Tracker, categoryTitle string) error {
	tracker.Title = strings.TrimSpace(tracker.Title)
	tracker.Schedule = models.NewSchedule(tracker.Schedule...)
	if err := validation.Tracker(tracker); err != nil {
		return err
	}
	categoryTitle = strings.TrimSpace(categoryTitle)
	if categoryTitle != "" {
		if err := validation.CategoryTitle(categoryTitle); err != nil {
			return err
		}
	}

	e := events.Event{Kind: events.TrackerUpdated, TrackerID: tracker.ID, Category: categoryTitle}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		current, err := s.provider.GetTracker(ctx, tracker.ID)
		if err != nil {
			return err
		}
		moved := categoryTitle != "" && categoryTitle != current.CategoryTitle
		if moved {
			if err := s.categories.MoveTracker(ctx, tracker.ID, categoryTitle); err != nil {
				return err
			}
			e.Kind = events.TrackerMoved
		}
		if err := s.provider.UpdateTracker(ctx, tracker); err != nil {
			if moved {
				if undo := s.provider.MoveTracker(ctx, tracker.ID, current.CategoryTitle); undo != nil {
					logger.Error("failed to restore tracker category", "tracker", tracker.ID, "error", undo)
				}
			}
			return err
		}
		return nil
	})
}

// TogglePin flips the pinned state and returns the new value.
func (s *Service) TogglePin(ctx context.Context, trackerID string) (bool, error) {
	var pinned bool
	e := events.Event{Kind: events.TrackerPinned, TrackerID: trackerID}
	err := s.mutate(ctx, &e, func(ctx context.Context) error {
		var err error
		pinned, err = s.provider.TogglePin(ctx, trackerID)
		return err
	})
	return pinned, err
}

// DeleteTracker removes a tracker and its records. Unknown IDs are ignored.
func (s *Service) DeleteTracker(ctx context.Context, trackerID string) error {
	e := events.Event{Kind: events.TrackerDeleted, TrackerID: trackerID}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		return ignoreNotFound(s.provider.DeleteTracker(ctx, trackerID))
	})
}

// RemoveTracker deletes trackerID only if it belongs to categoryTitle.
func (s *Service) RemoveTracker(ctx context.Context, trackerID, categoryTitle string) error {
	e := events.Event{Kind: events.TrackerDeleted, TrackerID: trackerID, Category: categoryTitle}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		return s.categories.RemoveTracker(ctx, trackerID, categoryTitle)
	})
}

// AddCategory creates an empty category.
func (s *Service) AddCategory(ctx context.Context, title string) (models.Category, error) {
	var c models.Category
	e := events.Event{Kind: events.CategoryAdded, Category: strings.TrimSpace(title)}
	err := s.mutate(ctx, &e, func(ctx context.Context) error {
		var err error
		c, err = s.categories.Add(ctx, title)
		return err
	})
	return c, err
}

// RenameCategory renames a category, keeping its trackers.
func (s *Service) RenameCategory(ctx context.Context, oldTitle, newTitle string) error {
	e := events.Event{Kind: events.CategoryRenamed, Category: strings.TrimSpace(newTitle)}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		return s.categories.Rename(ctx, oldTitle, newTitle)
	})
}

// DeleteCategory removes a category, its trackers and their records.
func (s *Service) DeleteCategory(ctx context.Context, title string) error {
	e := events.Event{Kind: events.CategoryDeleted, Category: title}
	return s.mutate(ctx, &e, func(ctx context.Context) error {
		return s.categories.Delete(ctx, title)
	})
}

// Settings returns the stored settings.
func (s *Service) Settings(ctx context.Context) (models.Settings, error) {
	return s.provider.GetSettings(ctx)
}

// SaveSettings validates and stores settings. A new timezone takes effect
// immediately.
func (s *Service) SaveSettings(ctx context.Context, settings models.Settings) error {
	models.ApplyDefaultSettings(&settings)
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	if !utils.IsSupportedLocale(settings.Locale) {
		return fmt.Errorf("unsupported locale %q", settings.Locale)
	}
	if !isStatusFilter(settings.DefaultFilter) {
		return fmt.Errorf("unknown filter %q", settings.DefaultFilter)
	}

	err = s.mutate(ctx, &events.Event{Kind: events.SettingsUpdated}, func(ctx context.Context) error {
		if err := s.provider.SaveSettings(ctx, settings); err != nil {
			return err
		}
		s.mu.Lock()
		s.loc = loc
		s.mu.Unlock()
		return nil
	})
	return err
}

// Import runs fn on the write queue and publishes a single import event.
func (s *Service) Import(ctx context.Context, fn func(ctx context.Context, provider storage.Provider) error) error {
	return s.mutate(ctx, &events.Event{Kind: events.DataImported}, func(ctx context.Context) error {
		return fn(ctx, s.provider)
	})
}

func isStatusFilter(f constants.StatusFilter) bool {
	for _, known := range constants.AllStatusFilters {
		if f == known {
			return true
		}
	}
	return false
}
