package tracking

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/validation"
)

// 2024-01-01 is a Monday.
var testNow = time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "tracker.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	svc := NewService(store, WithLocation(time.UTC), WithClock(func() time.Time { return testNow }))
	t.Cleanup(func() {
		svc.Close()
		store.Close()
	})
	return svc
}

func createTracker(t *testing.T, svc *Service, title string, schedule models.Schedule, category string) models.Tracker {
	t.Helper()
	tracker := models.NewTracker(title, schedule, "🙂", "#FD4C49")
	if err := svc.CreateTracker(context.Background(), tracker, category); err != nil {
		t.Fatalf("CreateTracker(%q) failed: %v", title, err)
	}
	return tracker
}

func TestServiceCreateAndToggle(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	today := svc.Today()

	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	sections, err := svc.VisibleCategories(ctx, today, "", constants.FilterAll)
	if err != nil {
		t.Fatalf("VisibleCategories failed: %v", err)
	}
	if len(sections) != 1 || sections[0].Title != "Sport" || len(sections[0].Trackers) != 1 {
		t.Fatalf("unexpected sections: %+v", sections)
	}

	if err := svc.ToggleCompletion(ctx, run.ID, today); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	done, err := svc.IsCompletedOn(ctx, run.ID, today)
	if err != nil {
		t.Fatalf("IsCompletedOn failed: %v", err)
	}
	if !done {
		t.Fatal("expected tracker to be completed today")
	}
	if n, _ := svc.CompletedDays(ctx, run.ID); n != 1 {
		t.Errorf("expected 1 completed day, got %d", n)
	}

	completed, err := svc.VisibleCategories(ctx, today, "", constants.FilterCompleted)
	if err != nil {
		t.Fatalf("VisibleCategories failed: %v", err)
	}
	if len(completed) != 1 {
		t.Errorf("expected completed filter to show Run, got %+v", completed)
	}

	if err := svc.ToggleCompletion(ctx, run.ID, today); err != nil {
		t.Fatalf("second ToggleCompletion failed: %v", err)
	}
	if done, _ := svc.IsCompletedOn(ctx, run.ID, today); done {
		t.Error("expected second toggle to remove the record")
	}
}

func TestServiceIgnoresFutureDays(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	tomorrow := svc.Today().AddDate(0, 0, 1)
	if err := svc.ToggleCompletion(ctx, run.ID, tomorrow); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	if err := svc.MarkCompleted(ctx, run.ID, tomorrow); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	records, err := svc.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records for a future day, got %d", len(records))
	}
}

func TestServiceToggleUnknownTracker(t *testing.T) {
	svc := setupTestService(t)
	if err := svc.ToggleCompletion(context.Background(), "missing", svc.Today()); err != nil {
		t.Errorf("expected unknown tracker to be ignored, got %v", err)
	}
}

func TestServiceRenameKeepsTrackers(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	if err := svc.RenameCategory(ctx, "Sport", "Fitness"); err != nil {
		t.Fatalf("RenameCategory failed: %v", err)
	}
	categories, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Title != "Fitness" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
	if ids := categories[0].TrackerIDs(); len(ids) != 1 || ids[0] != run.ID {
		t.Errorf("expected Run to stay in the renamed category, got %v", ids)
	}
}

func TestServiceRejectsInvalidInput(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		tracker  models.Tracker
		category string
	}{
		{"empty title", models.NewTracker("  ", models.EveryDay(), "🙂", "#FD4C49"), "Sport"},
		{"empty schedule", models.NewTracker("Run", nil, "🙂", "#FD4C49"), "Sport"},
		{"unknown color", models.NewTracker("Run", models.EveryDay(), "🙂", "#123456"), "Sport"},
		{"reserved category", models.NewTracker("Run", models.EveryDay(), "🙂", "#FD4C49"), "Pinned"},
		{"empty category", models.NewTracker("Run", models.EveryDay(), "🙂", "#FD4C49"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateTracker(ctx, tt.tracker, tt.category)
			if !errors.Is(err, validation.ErrNotReady) {
				t.Errorf("expected ErrNotReady, got %v", err)
			}
		})
	}

	categories, _ := svc.Categories(ctx)
	if len(categories) != 0 {
		t.Errorf("expected rejected input to store nothing, got %+v", categories)
	}
}

func TestServiceUpdateMovesTracker(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")
	if err := svc.ToggleCompletion(ctx, run.ID, svc.Today()); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}

	run.Title = "Morning run"
	if err := svc.UpdateTracker(ctx, run, "Health"); err != nil {
		t.Fatalf("UpdateTracker failed: %v", err)
	}

	got, err := svc.Tracker(ctx, run.ID)
	if err != nil {
		t.Fatalf("Tracker failed: %v", err)
	}
	if got.Title != "Morning run" || got.CategoryTitle != "Health" {
		t.Errorf("unexpected tracker after update: %+v", got)
	}
	if done, _ := svc.IsCompletedOn(ctx, run.ID, svc.Today()); !done {
		t.Error("expected records to survive the move")
	}
}

func TestServiceUpdateRejectsInvalidCategory(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	for _, category := range []string{"Pinned", "pinned", "   "} {
		edited := run
		edited.Title = "Morning run"
		edited.Schedule = models.NewSchedule(models.Monday)
		err := svc.UpdateTracker(ctx, edited, category)
		if category == "   " {
			// blank keeps the current category
			if err != nil {
				t.Fatalf("UpdateTracker with blank category failed: %v", err)
			}
			continue
		}
		if !errors.Is(err, validation.ErrNotReady) {
			t.Errorf("UpdateTracker(%q) error = %v, want ErrNotReady", category, err)
		}

		got, err := svc.Tracker(ctx, run.ID)
		if err != nil {
			t.Fatalf("Tracker failed: %v", err)
		}
		if got.Title != "Run" || !got.Schedule.IsEveryDay() || got.CategoryTitle != "Sport" {
			t.Errorf("rejected update was applied: %+v", got)
		}
	}
}

func TestServicePinnedSectionFirst(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	createTracker(t, svc, "Run", models.EveryDay(), "Sport")
	read := createTracker(t, svc, "Read", models.EveryDay(), "Mind")

	pinned, err := svc.TogglePin(ctx, read.ID)
	if err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if !pinned {
		t.Fatal("expected tracker to be pinned")
	}

	sections, err := svc.VisibleCategories(ctx, svc.Today(), "", constants.FilterAll)
	if err != nil {
		t.Fatalf("VisibleCategories failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected pinned and Sport sections, got %+v", sections)
	}
	if !sections[0].Pinned || sections[0].Trackers[0].ID != read.ID {
		t.Errorf("expected pinned section first, got %+v", sections[0])
	}
	if sections[1].Title != "Sport" {
		t.Errorf("expected Mind to disappear once empty, got %q", sections[1].Title)
	}
}

func TestServiceDeleteCategoryCascades(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")
	if err := svc.ToggleCompletion(ctx, run.ID, svc.Today()); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}

	if err := svc.DeleteCategory(ctx, "Sport"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if _, err := svc.Tracker(ctx, run.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected tracker to be gone, got %v", err)
	}
	records, _ := svc.Records(ctx)
	if len(records) != 0 {
		t.Errorf("expected records to be deleted, got %d", len(records))
	}
	if err := svc.DeleteCategory(ctx, "Sport"); err != nil {
		t.Errorf("expected deleting a missing category to be a no-op, got %v", err)
	}
}

func TestServiceRemoveTrackerChecksCategory(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	if err := svc.RemoveTracker(ctx, run.ID, "Mind"); err != nil {
		t.Fatalf("RemoveTracker failed: %v", err)
	}
	if _, err := svc.Tracker(ctx, run.ID); err != nil {
		t.Errorf("expected tracker in another category to survive, got %v", err)
	}
	if err := svc.RemoveTracker(ctx, run.ID, "Sport"); err != nil {
		t.Fatalf("RemoveTracker failed: %v", err)
	}
	if _, err := svc.Tracker(ctx, run.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected tracker to be removed, got %v", err)
	}
}

func TestServiceStatistics(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	for _, offset := range []int{-2, -1, 0} {
		if err := svc.MarkCompleted(ctx, run.ID, svc.Today().AddDate(0, 0, offset)); err != nil {
			t.Fatalf("MarkCompleted failed: %v", err)
		}
	}
	result, err := svc.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if result.BestPeriod != 3 {
		t.Errorf("expected best period 3, got %d", result.BestPeriod)
	}
	if result.CompletedTrackers != 3 {
		t.Errorf("expected 3 completions, got %d", result.CompletedTrackers)
	}
	if result.IdealDays != 3 {
		t.Errorf("expected 3 ideal days, got %d", result.IdealDays)
	}
}

func TestServiceFindTracker(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")

	tests := []struct {
		name string
		ref  string
	}{
		{"by id", run.ID},
		{"by prefix", run.ID[:8]},
		{"by title", "run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.FindTracker(ctx, tt.ref)
			if err != nil {
				t.Fatalf("FindTracker(%q) failed: %v", tt.ref, err)
			}
			if got.ID != run.ID {
				t.Errorf("expected %s, got %s", run.ID, got.ID)
			}
		})
	}

	if _, err := svc.FindTracker(ctx, "swim"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	createTracker(t, svc, "Run", models.EveryDay(), "Outdoor")
	if _, err := svc.FindTracker(ctx, "Run"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("expected ErrAmbiguous, got %v", err)
	}
}

func TestServicePublishesEvents(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	ch, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	run := createTracker(t, svc, "Run", models.EveryDay(), "Sport")
	if err := svc.ToggleCompletion(ctx, run.ID, svc.Today()); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	// no-op: nothing published
	if err := svc.ToggleCompletion(ctx, "missing", svc.Today()); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}

	want := []events.Kind{events.TrackerAdded, events.RecordAdded}
	for _, kind := range want {
		select {
		case e := <-ch:
			if e.Kind != kind {
				t.Errorf("expected %s, got %s", kind, e.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
	select {
	case e := <-ch:
		t.Errorf("unexpected extra event %+v", e)
	default:
	}
}

func TestServiceSaveSettings(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	settings := models.Settings{Timezone: "Asia/Tokyo", Locale: constants.LocaleRussian}
	if err := svc.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if got.Timezone != "Asia/Tokyo" || got.Locale != constants.LocaleRussian || got.DefaultFilter != constants.DefaultStatusFilter {
		t.Errorf("unexpected settings: %+v", got)
	}
	if svc.Location().String() != "Asia/Tokyo" {
		t.Errorf("expected location to follow the timezone setting, got %s", svc.Location())
	}

	bad := []models.Settings{
		{Timezone: "Mars/Olympus"},
		{Locale: "fr"},
		{DefaultFilter: "someday"},
	}
	for _, s := range bad {
		if err := svc.SaveSettings(ctx, s); err == nil {
			t.Errorf("expected %+v to be rejected", s)
		}
	}
}
