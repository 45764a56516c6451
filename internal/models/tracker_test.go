package models

import (
	"testing"
	"time"
)

func TestIsScheduledEveryWeekday(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC) // Monday
	for _, scheduled := range AllWeekdays {
		tracker := NewTracker("Run", Schedule{scheduled}, "🙂", "#FD4C49")
		for i := 0; i < 7; i++ {
			date := start.AddDate(0, 0, i)
			want := WeekdayOf(date) == scheduled
			if got := tracker.IsScheduled(date); got != want {
				t.Errorf("schedule %v, date %s: IsScheduled = %v, want %v", scheduled, date.Weekday(), got, want)
			}
		}
	}
}

func TestIsScheduledEmptySchedule(t *testing.T) {
	tracker := Tracker{Title: "Legacy"}
	if tracker.IsScheduled(time.Now()) {
		t.Error("tracker with empty schedule should never be scheduled")
	}
}

func TestNewTrackerNormalizes(t *testing.T) {
	tracker := NewTracker("  Read  ", Schedule{Sunday, Monday, Sunday}, "🥇", "#fd4c49")
	if tracker.Title != "Read" {
		t.Errorf("Title = %q, want %q", tracker.Title, "Read")
	}
	if tracker.Color != "#FD4C49" {
		t.Errorf("Color = %q, want upper-cased", tracker.Color)
	}
	if len(tracker.Schedule) != 2 || tracker.Schedule[0] != Monday {
		t.Errorf("Schedule = %v, want [Monday Sunday]", tracker.Schedule)
	}
	if tracker.ID == "" || tracker.IsPinned {
		t.Errorf("unexpected defaults: %+v", tracker)
	}
}

func TestMatchesSearch(t *testing.T) {
	tracker := Tracker{Title: "Morning Run"}
	for query, want := range map[string]bool{"": true, "run": true, "morning r": true, "swim": false} {
		if got := tracker.MatchesSearch(query); got != want {
			t.Errorf("MatchesSearch(%q) = %v, want %v", query, got, want)
		}
	}
}
