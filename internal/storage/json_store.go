package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

const jsonStoreVersion = 1

type jsonCategory struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	Trackers  []models.Tracker `json:"trackers"`
}

type jsonRecord struct {
	TrackerID string `json:"tracker_id"`
	Day       string `json:"day"` // YYYY-MM-DD
}

type document struct {
	Version    int             `json:"version"`
	Settings   models.Settings `json:"settings"`
	Categories []*jsonCategory `json:"categories"`
	Records    []jsonRecord    `json:"records"`
}

// JSONStore keeps the whole store in one JSON document that is rewritten on
// every mutation. All access is serialized by a mutex.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := s.read(); err != nil {
			return err
		}
		models.ApplyDefaultSettings(&s.doc.Settings)
		return s.save()
	}

	s.doc = &document{
		Version:    jsonStoreVersion,
		Settings:   models.DefaultSettings(),
		Categories: []*jsonCategory{},
		Records:    []jsonRecord{},
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc != nil {
		return nil
	}
	return s.read()
}

func (s *JSONStore) read() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > jsonStoreVersion {
		return fmt.Errorf("storage version %d is newer than supported version %d", doc.Version, jsonStoreVersion)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) Backend() string {
	return BackendJSON
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// clone deep-copies the document so a failed save can be rolled back.
func (d *document) clone() *document {
	out := &document{
		Version:    d.Version,
		Settings:   d.Settings,
		Categories: make([]*jsonCategory, len(d.Categories)),
		Records:    append([]jsonRecord{}, d.Records...),
	}
	for i, c := range d.Categories {
		cp := *c
		cp.Trackers = make([]models.Tracker, len(c.Trackers))
		for j, t := range c.Trackers {
			t.Schedule = append(models.Schedule{}, t.Schedule...)
			cp.Trackers[j] = t
		}
		out.Categories[i] = &cp
	}
	return out
}

// commit writes the document and restores prev if the write fails.
func (s *JSONStore) commit(prev *document) error {
	if err := s.save(); err != nil {
		s.doc = prev
		return err
	}
	return nil
}

// lock acquires the mutex and fails if the store was never loaded
func (s *JSONStore) lock() error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetSettings(ctx context.Context) (models.Settings, error) {
	if err := s.lock(); err != nil {
		return models.Settings{}, err
	}
	defer s.mu.Unlock()

	settings := s.doc.Settings
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *JSONStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	s.doc.Settings = settings
	return s.commit(prev)
}

func (s *JSONStore) findCategory(title string) *jsonCategory {
	for _, c := range s.doc.Categories {
		if c.Title == title {
			return c
		}
	}
	return nil
}

// findTracker returns the owning category and index of a tracker
func (s *JSONStore) findTracker(id string) (*jsonCategory, int) {
	for _, c := range s.doc.Categories {
		for i, t := range c.Trackers {
			if t.ID == id {
				return c, i
			}
		}
	}
	return nil, -1
}

func (s *JSONStore) newCategory(title string) *jsonCategory {
	c := &jsonCategory{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Trackers:  []models.Tracker{},
	}
	s.doc.Categories = append(s.doc.Categories, c)
	return c
}

func toCategory(c *jsonCategory) models.Category {
	out := models.Category{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt, Trackers: make([]models.Tracker, len(c.Trackers))}
	for i, t := range c.Trackers {
		t.CategoryTitle = c.Title
		t.Schedule = append(models.Schedule{}, t.Schedule...)
		out.Trackers[i] = t
	}
	return out
}

func (s *JSONStore) AddCategory(ctx context.Context, title string) (models.Category, error) {
	if err := s.lock(); err != nil {
		return models.Category{}, err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	if s.findCategory(title) != nil {
		return models.Category{}, fmt.Errorf("category %q: %w", title, ErrAlreadyExists)
	}
	c := s.newCategory(title)
	if err := s.commit(prev); err != nil {
		return models.Category{}, err
	}
	return toCategory(c), nil
}

func (s *JSONStore) GetCategoryByTitle(ctx context.Context, title string) (models.Category, error) {
	if err := s.lock(); err != nil {
		return models.Category{}, err
	}
	defer s.mu.Unlock()

	c := s.findCategory(title)
	if c == nil {
		return models.Category{}, fmt.Errorf("category %q: %w", title, ErrNotFound)
	}
	return toCategory(c), nil
}

func (s *JSONStore) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	categories := make([]models.Category, len(s.doc.Categories))
	for i, c := range s.doc.Categories {
		categories[i] = toCategory(c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Title < categories[j].Title
	})
	return categories, nil
}

func (s *JSONStore) RenameCategory(ctx context.Context, oldTitle, newTitle string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	c := s.findCategory(oldTitle)
	if c == nil {
		return fmt.Errorf("category %q: %w", oldTitle, ErrNotFound)
	}
	if oldTitle == newTitle {
		return nil
	}
	if s.findCategory(newTitle) != nil {
		return fmt.Errorf("category %q: %w", newTitle, ErrAlreadyExists)
	}
	c.Title = newTitle
	return s.commit(prev)
}

func (s *JSONStore) DeleteCategory(ctx context.Context, title string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	for i, c := range s.doc.Categories {
		if c.Title != title {
			continue
		}
		for _, t := range c.Trackers {
			s.dropRecords(t.ID)
		}
		s.doc.Categories = append(s.doc.Categories[:i], s.doc.Categories[i+1:]...)
		return s.commit(prev)
	}
	return fmt.Errorf("category %q: %w", title, ErrNotFound)
}

func (s *JSONStore) AddTracker(ctx context.Context, tracker models.Tracker, categoryTitle string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	if c, _ := s.findTracker(tracker.ID); c != nil {
		return fmt.Errorf("tracker %s: %w", tracker.ID, ErrAlreadyExists)
	}
	c := s.findCategory(categoryTitle)
	if c == nil {
		c = s.newCategory(categoryTitle)
	}
	if tracker.CreatedAt.IsZero() {
		tracker.CreatedAt = time.Now()
	}
	tracker.CategoryTitle = ""
	c.Trackers = append(c.Trackers, tracker)
	return s.commit(prev)
}

func (s *JSONStore) GetTracker(ctx context.Context, id string) (models.Tracker, error) {
	if err := s.lock(); err != nil {
		return models.Tracker{}, err
	}
	defer s.mu.Unlock()

	c, i := s.findTracker(id)
	if c == nil {
		return models.Tracker{}, fmt.Errorf("tracker %s: %w", id, ErrNotFound)
	}
	return toCategory(c).Trackers[i], nil
}

func (s *JSONStore) GetAllTrackers(ctx context.Context) ([]models.Tracker, error) {
	categories, err := s.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	return models.AllTrackers(categories), nil
}

func (s *JSONStore) UpdateTracker(ctx context.Context, tracker models.Tracker) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	c, i := s.findTracker(tracker.ID)
	if c == nil {
		return fmt.Errorf("tracker %s: %w", tracker.ID, ErrNotFound)
	}
	stored := &c.Trackers[i]
	stored.Title = tracker.Title
	stored.Color = tracker.Color
	stored.Emoji = tracker.Emoji
	stored.Schedule = append(models.Schedule{}, tracker.Schedule...)
	stored.IsPinned = tracker.IsPinned
	return s.commit(prev)
}

func (s *JSONStore) MoveTracker(ctx context.Context, id, categoryTitle string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	from, i := s.findTracker(id)
	if from == nil {
		return fmt.Errorf("tracker %s: %w", id, ErrNotFound)
	}
	if from.Title == categoryTitle {
		return nil
	}
	to := s.findCategory(categoryTitle)
	if to == nil {
		to = s.newCategory(categoryTitle)
	}
	tracker := from.Trackers[i]
	from.Trackers = append(from.Trackers[:i], from.Trackers[i+1:]...)
	to.Trackers = append(to.Trackers, tracker)
	return s.commit(prev)
}

func (s *JSONStore) TogglePin(ctx context.Context, id string) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	c, i := s.findTracker(id)
	if c == nil {
		return false, fmt.Errorf("tracker %s: %w", id, ErrNotFound)
	}
	c.Trackers[i].IsPinned = !c.Trackers[i].IsPinned
	if err := s.commit(prev); err != nil {
		return false, err
	}
	return c.Trackers[i].IsPinned, nil
}

func (s *JSONStore) DeleteTracker(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	c, i := s.findTracker(id)
	if c == nil {
		return fmt.Errorf("tracker %s: %w", id, ErrNotFound)
	}
	c.Trackers = append(c.Trackers[:i], c.Trackers[i+1:]...)
	s.dropRecords(id)
	return s.commit(prev)
}

func (s *JSONStore) dropRecords(trackerID string) {
	kept := s.doc.Records[:0]
	for _, r := range s.doc.Records {
		if r.TrackerID != trackerID {
			kept = append(kept, r)
		}
	}
	s.doc.Records = kept
}

func (s *JSONStore) recordIndex(trackerID, day string) int {
	for i, r := range s.doc.Records {
		if r.TrackerID == trackerID && r.Day == day {
			return i
		}
	}
	return -1
}

func (s *JSONStore) AddRecord(ctx context.Context, record models.CompletionRecord) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	if c, _ := s.findTracker(record.TrackerID); c == nil {
		return fmt.Errorf("tracker %s: %w", record.TrackerID, ErrNotFound)
	}
	day := utils.DayKey(record.Day)
	if s.recordIndex(record.TrackerID, day) >= 0 {
		return nil
	}
	s.doc.Records = append(s.doc.Records, jsonRecord{TrackerID: record.TrackerID, Day: day})
	return s.commit(prev)
}

func (s *JSONStore) DeleteRecord(ctx context.Context, trackerID string, day time.Time) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	prev := s.doc.clone()

	i := s.recordIndex(trackerID, utils.DayKey(day))
	if i < 0 {
		return nil
	}
	s.doc.Records = append(s.doc.Records[:i], s.doc.Records[i+1:]...)
	return s.commit(prev)
}

func (s *JSONStore) HasRecord(ctx context.Context, trackerID string, day time.Time) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	return s.recordIndex(trackerID, utils.DayKey(day)) >= 0, nil
}

func (s *JSONStore) CountRecords(ctx context.Context, trackerID string) (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.doc.Records {
		if r.TrackerID == trackerID {
			count++
		}
	}
	return count, nil
}

func (s *JSONStore) GetAllRecords(ctx context.Context) ([]models.CompletionRecord, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	records := make([]models.CompletionRecord, 0, len(s.doc.Records))
	for _, r := range s.doc.Records {
		day, err := utils.ParseDateInLocation(r.Day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day %q: %w", r.Day, err)
		}
		records = append(records, models.CompletionRecord{TrackerID: r.TrackerID, Day: day})
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Day.Equal(records[j].Day) {
			return records[i].Day.Before(records[j].Day)
		}
		return records[i].TrackerID < records[j].TrackerID
	})
	return records, nil
}
