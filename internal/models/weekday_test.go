package models

import (
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
)

func TestWeekdayOf(t *testing.T) {
	// 2024-01-01 was a Monday
	monday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, want := range AllWeekdays {
		date := monday.AddDate(0, 0, i)
		if got := WeekdayOf(date); got != want {
			t.Errorf("WeekdayOf(%s) = %v, want %v", date.Format(constants.DateFormat), got, want)
		}
	}
	if got := WeekdayOf(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)); got != Sunday || int(got) != 7 {
		t.Errorf("Sunday should map to 7, got %d", got)
	}
}

func TestWeekdayNames(t *testing.T) {
	tests := []struct {
		day    Weekday
		locale constants.Locale
		name   string
		short  string
	}{
		{Monday, constants.LocaleEnglish, "Monday", "Mon"},
		{Sunday, constants.LocaleEnglish, "Sunday", "Sun"},
		{Wednesday, constants.LocaleRussian, "Среда", "Ср"},
		{Sunday, constants.LocaleRussian, "Воскресенье", "Вс"},
		{Friday, constants.Locale("xx"), "Friday", "Fri"},
	}
	for _, tt := range tests {
		if got := tt.day.Name(tt.locale); got != tt.name {
			t.Errorf("%d.Name(%s) = %q, want %q", tt.day, tt.locale, got, tt.name)
		}
		if got := tt.day.ShortName(tt.locale); got != tt.short {
			t.Errorf("%d.ShortName(%s) = %q, want %q", tt.day, tt.locale, got, tt.short)
		}
	}
	if Weekday(0).IsValid() || Weekday(8).IsValid() {
		t.Error("0 and 8 must not be valid weekdays")
	}
}

func TestNewScheduleNormalizes(t *testing.T) {
	s := NewSchedule(Friday, Monday, Friday, Weekday(9), Wednesday)
	want := Schedule{Monday, Wednesday, Friday}
	if len(s) != len(want) {
		t.Fatalf("NewSchedule() = %v, want %v", s, want)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("NewSchedule()[%d] = %v, want %v", i, s[i], want[i])
		}
	}
}

func TestScheduleFormat(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		locale   constants.Locale
		want     string
	}{
		{"every day english", EveryDay(), constants.LocaleEnglish, "Every day"},
		{"every day russian", EveryDay(), constants.LocaleRussian, "Каждый день"},
		{"unsorted input", Schedule{Sunday, Monday}, constants.LocaleEnglish, "Mon, Sun"},
		{"russian short names", Schedule{Tuesday, Thursday}, constants.LocaleRussian, "Вт, Чт"},
		{"empty", Schedule{}, constants.LocaleEnglish, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schedule.Format(tt.locale); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		input   string
		want    Schedule
		wantErr bool
	}{
		{"mon,wed,fri", Schedule{Monday, Wednesday, Friday}, false},
		{"Sunday, 1", Schedule{Monday, Sunday}, false},
		{"weekends", Schedule{Saturday, Sunday}, false},
		{"daily", EveryDay(), false},
		{"weekdays,sat", Schedule{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}, false},
		{"", Schedule{}, false},
		{"funday", nil, true},
		{"0", nil, true},
		{"8", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSchedule(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSchedule(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSchedule(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSchedule(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScheduleIntsRoundTrip(t *testing.T) {
	s := Schedule{Tuesday, Sunday}
	back := ScheduleFromInts(s.Ints())
	if len(back) != 2 || back[0] != Tuesday || back[1] != Sunday {
		t.Errorf("ScheduleFromInts(Ints()) = %v", back)
	}
}
