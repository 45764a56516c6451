package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/utils"
)

// Weekday numbers the days of the week starting from Monday (Monday=1 … Sunday=7).
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays lists the weekdays in canonical order.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = map[constants.Locale][7]string{
	constants.LocaleEnglish: {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	constants.LocaleRussian: {"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"},
}

var weekdayShortNames = map[constants.Locale][7]string{
	constants.LocaleEnglish: {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	constants.LocaleRussian: {"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"},
}

// WeekdayOf returns the weekday of t. This is the only place where Go's
// Sunday-first numbering is translated.
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// IsValid reports whether w is one of the seven weekdays.
func (w Weekday) IsValid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	return w.Name(constants.LocaleEnglish)
}

// Name returns the full localized name of the weekday.
func (w Weekday) Name(locale constants.Locale) string {
	if !w.IsValid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	names, ok := weekdayNames[locale]
	if !ok {
		names = weekdayNames[constants.LocaleEnglish]
	}
	return names[w-1]
}

// ShortName returns the abbreviated localized name of the weekday.
func (w Weekday) ShortName(locale constants.Locale) string {
	if !w.IsValid() {
		return strconv.Itoa(int(w))
	}
	names, ok := weekdayShortNames[locale]
	if !ok {
		names = weekdayShortNames[constants.LocaleEnglish]
	}
	return names[w-1]
}

// Schedule is the set of weekdays a tracker is due on.
type Schedule []Weekday

// NewSchedule builds a schedule from days, dropping invalid and duplicate
// values and sorting the rest.
func NewSchedule(days ...Weekday) Schedule {
	seen := make(map[Weekday]bool, len(days))
	s := make(Schedule, 0, len(days))
	for _, d := range days {
		if !d.IsValid() || seen[d] {
			continue
		}
		seen[d] = true
		s = append(s, d)
	}
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s
}

// EveryDay returns a schedule containing all seven weekdays.
func EveryDay() Schedule {
	return NewSchedule(AllWeekdays...)
}

// Contains reports whether w is part of the schedule.
func (s Schedule) Contains(w Weekday) bool {
	for _, d := range s {
		if d == w {
			return true
		}
	}
	return false
}

// IsEveryDay reports whether all seven weekdays are scheduled.
func (s Schedule) IsEveryDay() bool {
	for _, w := range AllWeekdays {
		if !s.Contains(w) {
			return false
		}
	}
	return true
}

// Format renders the schedule for display: the localized "every day" text
// when all days are set, otherwise the sorted short names.
func (s Schedule) Format(locale constants.Locale) string {
	if s.IsEveryDay() {
		return utils.StringsFor(locale).EveryDay
	}
	sorted := NewSchedule(s...)
	names := make([]string, len(sorted))
	for i, d := range sorted {
		names[i] = d.ShortName(locale)
	}
	return strings.Join(names, ", ")
}

// Ints returns the numeric weekday values, for storage.
func (s Schedule) Ints() []int {
	out := make([]int, len(s))
	for i, d := range s {
		out[i] = int(d)
	}
	return out
}

// ScheduleFromInts converts stored numeric weekday values back to a schedule.
func ScheduleFromInts(values []int) Schedule {
	days := make([]Weekday, len(values))
	for i, v := range values {
		days[i] = Weekday(v)
	}
	return NewSchedule(days...)
}

// ParseSchedule parses a comma-separated list of weekdays. Entries may be
// English names ("mon", "monday"), numbers (1=Monday … 7=Sunday) or the
// shortcuts "daily" and "weekdays".
func ParseSchedule(s string) (Schedule, error) {
	dayMap := map[string]Weekday{
		"mon": Monday, "monday": Monday,
		"tue": Tuesday, "tuesday": Tuesday,
		"wed": Wednesday, "wednesday": Wednesday,
		"thu": Thursday, "thursday": Thursday,
		"fri": Friday, "friday": Friday,
		"sat": Saturday, "saturday": Saturday,
		"sun": Sunday, "sunday": Sunday,
	}

	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		switch part {
		case "daily", "everyday":
			days = append(days, AllWeekdays...)
			continue
		case "weekdays":
			days = append(days, Monday, Tuesday, Wednesday, Thursday, Friday)
			continue
		case "weekends":
			days = append(days, Saturday, Sunday)
			continue
		}
		if wd, ok := dayMap[part]; ok {
			days = append(days, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || !Weekday(num).IsValid() {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, Weekday(num))
	}

	return NewSchedule(days...), nil
}
