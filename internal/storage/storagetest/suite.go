// Package storagetest holds the behavior every storage.Provider must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

// Factory returns an initialized, empty provider and its cleanup func.
type Factory func(t *testing.T) (storage.Provider, func())

func newTracker(title string, days ...models.Weekday) models.Tracker {
	return models.NewTracker(title, models.NewSchedule(days...), constants.EmojiPalette[0], constants.ColorPalette[0])
}

// Run exercises the Provider contract against stores built by factory.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, p storage.Provider)
	}{
		{"Settings", testSettings},
		{"CategoriesSortedAndUnique", testCategories},
		{"TrackersKeepInsertionOrder", testTrackerOrder},
		{"UpdateAndPin", testUpdateAndPin},
		{"RenameKeepsMembership", testRename},
		{"MoveKeepsRecords", testMove},
		{"RecordsIdempotent", testRecords},
		{"DeleteCascades", testDeleteCascades},
		{"NotFound", testNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, cleanup := factory(t)
			defer cleanup()
			tt.fn(t, p)
		})
	}
}

func testSettings(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	settings, err := p.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", settings)
	}

	settings.Locale = constants.LocaleRussian
	settings.Timezone = "UTC"
	if err := p.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := p.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != settings {
		t.Errorf("GetSettings() = %+v, want %+v", got, settings)
	}
}

func testCategories(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	for _, title := range []string{"Sport", "Home", "Work", "apple"} {
		if _, err := p.AddCategory(ctx, title); err != nil {
			t.Fatalf("AddCategory(%s) failed: %v", title, err)
		}
	}
	if _, err := p.AddCategory(ctx, "Home"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("duplicate AddCategory error = %v, want ErrAlreadyExists", err)
	}

	categories, err := p.GetAllCategories(ctx)
	if err != nil {
		t.Fatalf("GetAllCategories failed: %v", err)
	}
	// byte order on every backend, so lowercase sorts after uppercase
	want := []string{"Home", "Sport", "Work", "apple"}
	if len(categories) != len(want) {
		t.Fatalf("got %d categories, want %d", len(categories), len(want))
	}
	for i, title := range want {
		if categories[i].Title != title {
			t.Errorf("categories[%d] = %s, want %s", i, categories[i].Title, title)
		}
		if categories[i].ID == "" {
			t.Errorf("category %s has no ID", title)
		}
	}
}

func testTrackerOrder(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	titles := []string{"Zumba", "Run", "Mop"}
	for _, title := range titles {
		if err := p.AddTracker(ctx, newTracker(title, models.Monday), "Sport"); err != nil {
			t.Fatalf("AddTracker(%s) failed: %v", title, err)
		}
	}

	c, err := p.GetCategoryByTitle(ctx, "Sport")
	if err != nil {
		t.Fatalf("GetCategoryByTitle failed: %v", err)
	}
	if len(c.Trackers) != len(titles) {
		t.Fatalf("got %d trackers, want %d", len(c.Trackers), len(titles))
	}
	for i, title := range titles {
		if c.Trackers[i].Title != title {
			t.Errorf("trackers[%d] = %s, want %s", i, c.Trackers[i].Title, title)
		}
		if c.Trackers[i].CategoryTitle != "Sport" {
			t.Errorf("tracker %s CategoryTitle = %q", title, c.Trackers[i].CategoryTitle)
		}
	}

	all, err := p.GetAllTrackers(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("GetAllTrackers = %d, %v", len(all), err)
	}
}

func testUpdateAndPin(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	tracker := newTracker("Read", models.Monday)
	if err := p.AddTracker(ctx, tracker, "Study"); err != nil {
		t.Fatalf("AddTracker failed: %v", err)
	}

	tracker.Title = "Read a book"
	tracker.Schedule = models.Schedule{models.Saturday, models.Sunday}
	tracker.Color = constants.ColorPalette[3]
	if err := p.UpdateTracker(ctx, tracker); err != nil {
		t.Fatalf("UpdateTracker failed: %v", err)
	}

	pinned, err := p.TogglePin(ctx, tracker.ID)
	if err != nil || !pinned {
		t.Fatalf("TogglePin = %v, %v; want true", pinned, err)
	}

	got, err := p.GetTracker(ctx, tracker.ID)
	if err != nil {
		t.Fatalf("GetTracker failed: %v", err)
	}
	if got.Title != "Read a book" || got.Color != constants.ColorPalette[3] || !got.IsPinned {
		t.Errorf("unexpected tracker after update: %+v", got)
	}
	if len(got.Schedule) != 2 || got.Schedule[0] != models.Saturday || got.Schedule[1] != models.Sunday {
		t.Errorf("Schedule = %v", got.Schedule)
	}

	if pinned, _ = p.TogglePin(ctx, tracker.ID); pinned {
		t.Error("second TogglePin should unpin")
	}
}

func testRename(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	tracker := newTracker("Run", models.Monday)
	if err := p.AddTracker(ctx, tracker, "Sport"); err != nil {
		t.Fatalf("AddTracker failed: %v", err)
	}
	if _, err := p.AddCategory(ctx, "Home"); err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	if err := p.RenameCategory(ctx, "Sport", "Home"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("rename onto existing title = %v, want ErrAlreadyExists", err)
	}
	if err := p.RenameCategory(ctx, "Sport", "Fitness"); err != nil {
		t.Fatalf("RenameCategory failed: %v", err)
	}

	if _, err := p.GetCategoryByTitle(ctx, "Sport"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("old title lookup = %v, want ErrNotFound", err)
	}
	c, err := p.GetCategoryByTitle(ctx, "Fitness")
	if err != nil {
		t.Fatalf("GetCategoryByTitle failed: %v", err)
	}
	if len(c.Trackers) != 1 || c.Trackers[0].ID != tracker.ID {
		t.Errorf("renamed category lost its trackers: %+v", c.Trackers)
	}
}

func testMove(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	tracker := newTracker("Run", models.Monday)
	if err := p.AddTracker(ctx, tracker, "Sport"); err != nil {
		t.Fatalf("AddTracker failed: %v", err)
	}
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if err := p.AddRecord(ctx, models.NewCompletionRecord(tracker.ID, day)); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	if err := p.MoveTracker(ctx, tracker.ID, "Health"); err != nil {
		t.Fatalf("MoveTracker failed: %v", err)
	}
	got, err := p.GetTracker(ctx, tracker.ID)
	if err != nil {
		t.Fatalf("GetTracker failed: %v", err)
	}
	if got.CategoryTitle != "Health" {
		t.Errorf("CategoryTitle = %q, want Health", got.CategoryTitle)
	}
	sport, err := p.GetCategoryByTitle(ctx, "Sport")
	if err != nil || len(sport.Trackers) != 0 {
		t.Errorf("source category should be empty: %+v, %v", sport, err)
	}
	if has, _ := p.HasRecord(ctx, tracker.ID, day); !has {
		t.Error("move should keep completion records")
	}
}

func testRecords(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	tracker := newTracker("Run", models.Monday)
	if err := p.AddTracker(ctx, tracker, "Sport"); err != nil {
		t.Fatalf("AddTracker failed: %v", err)
	}

	loc := time.FixedZone("UTC+3", 3*60*60)
	morning := time.Date(2024, 3, 4, 7, 0, 0, 0, loc)
	evening := time.Date(2024, 3, 4, 23, 0, 0, 0, loc)
	for _, at := range []time.Time{morning, evening, morning} {
		if err := p.AddRecord(ctx, models.NewCompletionRecord(tracker.ID, at)); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
	}

	count, err := p.CountRecords(ctx, tracker.ID)
	if err != nil || count != 1 {
		t.Fatalf("CountRecords = %d, %v; want 1", count, err)
	}
	records, err := p.GetAllRecords(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("GetAllRecords = %v, %v", records, err)
	}
	if key := records[0].Day.Format(constants.DateFormat); key != "2024-03-04" {
		t.Errorf("record day = %s, want 2024-03-04", key)
	}

	if err := p.DeleteRecord(ctx, tracker.ID, evening); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if err := p.DeleteRecord(ctx, tracker.ID, evening); err != nil {
		t.Fatalf("second DeleteRecord should be a no-op: %v", err)
	}
	if has, _ := p.HasRecord(ctx, tracker.ID, morning); has {
		t.Error("record should be gone")
	}
}

func testDeleteCascades(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	run := newTracker("Run", models.Monday)
	swim := newTracker("Swim", models.Tuesday)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, tr := range []models.Tracker{run, swim} {
		if err := p.AddTracker(ctx, tr, "Sport"); err != nil {
			t.Fatalf("AddTracker failed: %v", err)
		}
		if err := p.AddRecord(ctx, models.NewCompletionRecord(tr.ID, day)); err != nil {
			t.Fatalf("AddRecord failed: %v", err)
		}
	}

	if err := p.DeleteTracker(ctx, run.ID); err != nil {
		t.Fatalf("DeleteTracker failed: %v", err)
	}
	if n, _ := p.CountRecords(ctx, run.ID); n != 0 {
		t.Errorf("deleting a tracker should delete its records, %d left", n)
	}

	if err := p.DeleteCategory(ctx, "Sport"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if _, err := p.GetTracker(ctx, swim.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("tracker should be deleted with its category, got %v", err)
	}
	records, _ := p.GetAllRecords(ctx)
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func testNotFound(t *testing.T, p storage.Provider) {
	ctx := context.Background()
	missing := newTracker("Ghost", models.Monday)

	checks := map[string]error{
		"GetTracker":     func() error { _, err := p.GetTracker(ctx, missing.ID); return err }(),
		"UpdateTracker":  p.UpdateTracker(ctx, missing),
		"DeleteTracker":  p.DeleteTracker(ctx, missing.ID),
		"MoveTracker":    p.MoveTracker(ctx, missing.ID, "Anywhere"),
		"TogglePin":      func() error { _, err := p.TogglePin(ctx, missing.ID); return err }(),
		"GetCategory":    func() error { _, err := p.GetCategoryByTitle(ctx, "Nope"); return err }(),
		"RenameCategory": p.RenameCategory(ctx, "Nope", "Still nope"),
		"DeleteCategory": p.DeleteCategory(ctx, "Nope"),
	}
	for name, err := range checks {
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s error = %v, want ErrNotFound", name, err)
		}
	}
}
