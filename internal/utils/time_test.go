package utils

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	in := time.Date(2026, 3, 4, 23, 59, 59, 999, loc)
	got := StartOfDay(in)
	want := time.Date(2026, 3, 4, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay(%v) = %v, want %v", in, got, want)
	}
	if got.Location() != loc {
		t.Errorf("StartOfDay changed location to %v", got.Location())
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC), 0},
		{"next day", time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 1, 0, 0, 0, time.UTC), 1},
		{"backwards", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), -4},
		{"across year", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// 2026-03-08 is the spring-forward day in New York (23 hour day)
	a := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	b := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween across DST = %d, want 1", got)
	}
}

func TestIsAfterDay(t *testing.T) {
	today := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	if IsAfterDay(today.Add(10*time.Hour), today) {
		t.Error("later time on the same day should not be after")
	}
	if !IsAfterDay(today.AddDate(0, 0, 1), today) {
		t.Error("tomorrow should be after today")
	}
	if IsAfterDay(today.AddDate(0, 0, -1), today) {
		t.Error("yesterday should not be after today")
	}
}

func TestParseDateInLocation(t *testing.T) {
	got, err := ParseDateInLocation("2026-02-28", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateInLocation failed: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.February || got.Day() != 28 || got.Hour() != 0 {
		t.Errorf("unexpected parsed date: %v", got)
	}

	if _, err := ParseDateInLocation("28/02/2026", time.UTC); err == nil {
		t.Error("expected error for invalid date format")
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("") || !ValidateTimezone("Local") {
		t.Error("empty and Local should be valid")
	}
	if ValidateTimezone("Not/AZone") {
		t.Error("expected invalid timezone to be rejected")
	}
}
