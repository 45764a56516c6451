package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/utils"
	"github.com/julianstephens/tracker/internal/validation"
)

// DocumentVersion is the current export document version.
const DocumentVersion = 1

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a full snapshot of tracker data.
type Document struct {
	Version    int             `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Tool       string          `json:"tool" yaml:"tool"`
	Settings   models.Settings `json:"settings" yaml:"settings"`
	Categories []Category      `json:"categories" yaml:"categories"`
	Records    []Record        `json:"records" yaml:"records"`
}

type Category struct {
	Title    string           `json:"title" yaml:"title"`
	Trackers []models.Tracker `json:"trackers" yaml:"trackers"`
}

type Record struct {
	TrackerID string `json:"tracker_id" yaml:"tracker_id"`
	Day       string `json:"day" yaml:"day"`
}

// Summary counts what an import wrote.
type Summary struct {
	Categories     int
	Trackers       int
	Records        int
	SkippedRecords int
}

// Source is the read side of a store.
type Source interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetAllRecords(ctx context.Context) ([]models.CompletionRecord, error)
}

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected json or yaml)", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Build snapshots src.
func Build(ctx context.Context, src Source, now time.Time) (Document, error) {
	settings, err := src.GetSettings(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read settings: %w", err)
	}
	categories, err := src.GetAllCategories(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read categories: %w", err)
	}
	records, err := src.GetAllRecords(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read records: %w", err)
	}

	doc := Document{
		Version:    DocumentVersion,
		ExportedAt: now.UTC(),
		Tool:       constants.AppName + " " + constants.Version,
		Settings:   settings,
		Categories: make([]Category, 0, len(categories)),
		Records:    make([]Record, 0, len(records)),
	}
	for _, c := range categories {
		trackers := make([]models.Tracker, len(c.Trackers))
		for i, t := range c.Trackers {
			t.CategoryTitle = ""
			trackers[i] = t
		}
		doc.Categories = append(doc.Categories, Category{Title: c.Title, Trackers: trackers})
	}
	for _, r := range models.NewRecordSet(records...).Records() {
		doc.Records = append(doc.Records, Record{TrackerID: r.TrackerID, Day: utils.DayKey(r.Day)})
	}
	return doc, nil
}

// Encode writes doc in format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Decode reads a document in format and checks its version.
func Decode(r io.Reader, format Format) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&doc)
	default:
		return Document{}, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to decode %s document: %w", format, err)
	}
	if doc.Version < 1 || doc.Version > DocumentVersion {
		return Document{}, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	return doc, nil
}

// Apply merges doc into p. Trackers are matched by ID: known trackers are
// updated and moved, new ones are added. Records for unknown trackers or
// days after today are skipped; existing records are kept, so importing
// twice is harmless.
//
// The whole document is validated before anything is written. A storage
// error midway leaves the writes made so far in place; callers take a
// backup first.
func Apply(ctx context.Context, p storage.Provider, doc Document, today time.Time) (Summary, error) {
	var sum Summary

	categories, err := prepare(doc)
	if err != nil {
		return sum, err
	}
	days := make([]time.Time, len(doc.Records))
	for i, r := range doc.Records {
		day, err := time.Parse(constants.DateFormat, r.Day)
		if err != nil {
			return sum, fmt.Errorf("invalid record day %q: %w", r.Day, err)
		}
		days[i] = day
	}

	settings := doc.Settings
	models.ApplyDefaultSettings(&settings)
	if err := p.SaveSettings(ctx, settings); err != nil {
		return sum, fmt.Errorf("failed to save settings: %w", err)
	}

	known := make(map[string]bool)
	for _, c := range categories {
		if _, err := p.AddCategory(ctx, c.Title); err == nil {
			sum.Categories++
		} else if !errors.Is(err, storage.ErrAlreadyExists) {
			return sum, fmt.Errorf("failed to add category %q: %w", c.Title, err)
		}
		for _, t := range c.Trackers {
			if err := upsertTracker(ctx, p, t, c.Title); err != nil {
				return sum, err
			}
			known[t.ID] = true
			sum.Trackers++
		}
	}

	last := utils.DayKey(today)
	for i, r := range doc.Records {
		if r.Day > last {
			sum.SkippedRecords++
			continue
		}
		if !known[r.TrackerID] {
			if _, err := p.GetTracker(ctx, r.TrackerID); err != nil {
				sum.SkippedRecords++
				continue
			}
			known[r.TrackerID] = true
		}
		if err := p.AddRecord(ctx, models.NewCompletionRecord(r.TrackerID, days[i])); err != nil {
			return sum, fmt.Errorf("failed to add record %s/%s: %w", r.TrackerID, r.Day, err)
		}
		sum.Records++
	}
	return sum, nil
}

// prepare normalizes and validates every category and tracker in doc.
func prepare(doc Document) ([]Category, error) {
	out := make([]Category, len(doc.Categories))
	for i, c := range doc.Categories {
		title := strings.TrimSpace(c.Title)
		if err := validation.CategoryTitle(title); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Title, err)
		}
		trackers := make([]models.Tracker, len(c.Trackers))
		for j, t := range c.Trackers {
			t.Title = strings.TrimSpace(t.Title)
			t.Color = strings.ToUpper(t.Color)
			t.Schedule = models.NewSchedule(t.Schedule...)
			t.CategoryTitle = ""
			if err := validation.Tracker(t); err != nil {
				return nil, fmt.Errorf("tracker %q: %w", t.Title, err)
			}
			trackers[j] = t
		}
		c.Title = title
		c.Trackers = trackers
		out[i] = c
	}
	return out, nil
}

func upsertTracker(ctx context.Context, p storage.Provider, t models.Tracker, categoryTitle string) error {
	current, err := p.GetTracker(ctx, t.ID)
	if errors.Is(err, storage.ErrNotFound) {
		if err := p.AddTracker(ctx, t, categoryTitle); err != nil {
			return fmt.Errorf("failed to add tracker %q: %w", t.Title, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if err := p.UpdateTracker(ctx, t); err != nil {
		return fmt.Errorf("failed to update tracker %q: %w", t.Title, err)
	}
	if current.CategoryTitle != categoryTitle {
		if err := p.MoveTracker(ctx, t.ID, categoryTitle); err != nil {
			return fmt.Errorf("failed to move tracker %q: %w", t.Title, err)
		}
	}
	return nil
}
