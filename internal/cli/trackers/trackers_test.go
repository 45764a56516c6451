package trackers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/storage"
)

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "tracker.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(context.Background(), store, config.Config{Timezone: "UTC"})
	t.Cleanup(func() {
		ctx.Close()
		store.Close()
	})
	return ctx
}

func TestResolvePalette(t *testing.T) {
	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{"1", constants.ColorPalette[0], false},
		{"#fd4c49", "#FD4C49", false},
		{"0", "", true},
		{"19", "", true},
		{"#000000", "", true},
	}
	for _, tt := range tests {
		got, err := resolvePalette(tt.value, constants.ColorPalette, "color")
		if (err != nil) != tt.wantErr {
			t.Errorf("resolvePalette(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("resolvePalette(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestAddEditPinDelete(t *testing.T) {
	ctx := setupTestContext(t)
	bg := context.Background()

	add := &AddCmd{Title: "Run", Category: "Sport", Days: "mon,wed,fri", Emoji: "2", Color: "#007BFA"}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	trackers, err := ctx.Store.GetAllTrackers(bg)
	if err != nil || len(trackers) != 1 {
		t.Fatalf("expected one tracker, got %v (%v)", trackers, err)
	}
	run := trackers[0]
	if run.Emoji != constants.EmojiPalette[1] || len(run.Schedule) != 3 {
		t.Errorf("unexpected tracker: %+v", run)
	}

	title := "Morning run"
	category := "Health"
	if err := (&EditCmd{Tracker: "run", Title: &title, Category: &category}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	got, _ := ctx.Store.GetTracker(bg, run.ID)
	if got.Title != title || got.CategoryTitle != category {
		t.Errorf("unexpected tracker after edit: %+v", got)
	}

	if err := (&PinCmd{Tracker: run.ID}).Run(ctx); err != nil {
		t.Fatalf("pin failed: %v", err)
	}
	got, _ = ctx.Store.GetTracker(bg, run.ID)
	if !got.IsPinned {
		t.Error("expected tracker to be pinned")
	}

	if err := (&ListCmd{IDs: true}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}

	if err := (&DeleteCmd{Tracker: run.ID[:8], Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := ctx.Store.GetTracker(bg, run.ID); err == nil {
		t.Error("expected tracker to be deleted")
	}
}

func TestAddRejectsInvalidSchedule(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&AddCmd{Title: "Run", Category: "Sport", Days: "someday"}).Run(ctx); err == nil {
		t.Fatal("expected invalid schedule to be rejected")
	}
}
