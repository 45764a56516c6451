package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

func setupTestStore(t *testing.T) storage.Provider {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "tracker.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, p storage.Provider) models.Tracker {
	t.Helper()
	ctx := context.Background()
	run := models.NewTracker("Run", models.EveryDay(), "🙂", "#FD4C49")
	run.IsPinned = true
	if err := p.AddTracker(ctx, run, "Sport"); err != nil {
		t.Fatalf("AddTracker failed: %v", err)
	}
	read := models.NewTracker("Read", models.NewSchedule(models.Monday, models.Friday), "🤔", "#007BFA")
	if err := p.AddTracker(ctx, read, "Mind"); err != nil {
		t.Fatalf("AddTracker failed: %v", err)
	}
	for _, d := range []int{1, 2} {
		day := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		if err := p.AddRecord(ctx, models.NewCompletionRecord(run.ID, day)); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
	}
	settings := models.DefaultSettings()
	settings.Locale = constants.LocaleRussian
	if err := p.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	return run
}

func TestRoundTrip(t *testing.T) {
	formats := []Format{FormatJSON, FormatYAML}
	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			ctx := context.Background()
			src := setupTestStore(t)
			run := seed(t, src)

			doc, err := Build(ctx, src, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC))
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			var buf bytes.Buffer
			if err := Encode(&buf, doc, format); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			dst := setupTestStore(t)
			sum, err := Apply(ctx, dst, decoded, time.Now())
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if sum.Categories != 2 || sum.Trackers != 2 || sum.Records != 2 {
				t.Errorf("unexpected summary: %+v", sum)
			}

			got, err := dst.GetTracker(ctx, run.ID)
			if err != nil {
				t.Fatalf("GetTracker failed: %v", err)
			}
			if got.Title != "Run" || !got.IsPinned || got.CategoryTitle != "Sport" {
				t.Errorf("unexpected imported tracker: %+v", got)
			}
			if n, _ := dst.CountRecords(ctx, run.ID); n != 2 {
				t.Errorf("expected 2 records, got %d", n)
			}
			settings, _ := dst.GetSettings(ctx)
			if settings.Locale != constants.LocaleRussian {
				t.Errorf("expected settings to be imported, got %+v", settings)
			}
		})
	}
}

func TestApplyTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	src := setupTestStore(t)
	seed(t, src)
	doc, err := Build(ctx, src, time.Now())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	dst := setupTestStore(t)
	for i := 0; i < 2; i++ {
		if _, err := Apply(ctx, dst, doc, time.Now()); err != nil {
			t.Fatalf("Apply #%d failed: %v", i, err)
		}
	}
	records, _ := dst.GetAllRecords(ctx)
	if len(records) != 2 {
		t.Errorf("expected 2 records after importing twice, got %d", len(records))
	}
	trackers, _ := dst.GetAllTrackers(ctx)
	if len(trackers) != 2 {
		t.Errorf("expected 2 trackers after importing twice, got %d", len(trackers))
	}
}

func TestApplyMovesKnownTracker(t *testing.T) {
	ctx := context.Background()
	p := setupTestStore(t)
	run := seed(t, p)

	doc, err := Build(ctx, p, time.Now())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := range doc.Categories {
		if doc.Categories[i].Title == "Sport" {
			doc.Categories[i].Title = "Health"
		}
	}
	if _, err := Apply(ctx, p, doc, time.Now()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	got, _ := p.GetTracker(ctx, run.ID)
	if got.CategoryTitle != "Health" {
		t.Errorf("expected tracker to move to Health, got %q", got.CategoryTitle)
	}
	if n, _ := p.CountRecords(ctx, run.ID); n != 2 {
		t.Errorf("expected records to survive the move, got %d", n)
	}
}

func TestApplySkipsOrphanRecords(t *testing.T) {
	doc := Document{
		Version: DocumentVersion,
		Records: []Record{{TrackerID: "missing", Day: "2024-01-01"}},
	}
	sum, err := Apply(context.Background(), setupTestStore(t), doc, time.Now())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if sum.SkippedRecords != 1 || sum.Records != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestApplySkipsFutureRecords(t *testing.T) {
	run := models.NewTracker("Run", models.EveryDay(), "🙂", "#FD4C49")
	doc := Document{
		Version:    DocumentVersion,
		Categories: []Category{{Title: "Sport", Trackers: []models.Tracker{run}}},
		Records: []Record{
			{TrackerID: run.ID, Day: "2024-01-02"},
			{TrackerID: run.ID, Day: "2024-01-03"},
			{TrackerID: run.ID, Day: "2024-01-04"},
		},
	}
	today := time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)

	p := setupTestStore(t)
	sum, err := Apply(context.Background(), p, doc, today)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if sum.Records != 2 || sum.SkippedRecords != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	has, _ := p.HasRecord(context.Background(), run.ID, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	if has {
		t.Error("expected the future record to be skipped")
	}
}

func TestApplyRejectsInvalidDocument(t *testing.T) {
	valid := Category{
		Title:    "Mind",
		Trackers: []models.Tracker{models.NewTracker("Read", models.EveryDay(), "🤔", "#007BFA")},
	}
	tests := []struct {
		name string
		doc  Document
	}{
		{"invalid tracker", Document{
			Version: DocumentVersion,
			Categories: []Category{valid, {
				Title:    "Sport",
				Trackers: []models.Tracker{models.NewTracker("", models.EveryDay(), "🙂", "#FD4C49")},
			}},
		}},
		{"reserved category", Document{
			Version:    DocumentVersion,
			Categories: []Category{valid, {Title: "Pinned"}},
		}},
		{"malformed day", Document{
			Version:    DocumentVersion,
			Categories: []Category{valid},
			Records:    []Record{{TrackerID: valid.Trackers[0].ID, Day: "01/02/2024"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := setupTestStore(t)
			if _, err := Apply(context.Background(), p, tt.doc, time.Now()); err == nil {
				t.Fatal("expected the document to be rejected")
			}
			categories, _ := p.GetAllCategories(context.Background())
			if len(categories) != 0 {
				t.Errorf("rejected document wrote %d categories", len(categories))
			}
		})
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"version": 99}`), FormatJSON)
	if err == nil {
		t.Fatal("expected unsupported version error")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if FormatFromPath("backup.yml") != FormatYAML || FormatFromPath("backup.json") != FormatJSON {
		t.Error("FormatFromPath picked the wrong format")
	}
}
