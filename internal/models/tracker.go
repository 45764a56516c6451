package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tracker is a habit or event with a weekly schedule.
type Tracker struct {
	ID            string    `json:"id" yaml:"id" validate:"required,uuid"`
	Title         string    `json:"title" yaml:"title" validate:"required,max=38"`
	Color         string    `json:"color" yaml:"color" validate:"required,palette_color"`
	Schedule      Schedule  `json:"schedule" yaml:"schedule" validate:"required,min=1,dive,weekday"`
	Emoji         string    `json:"emoji" yaml:"emoji" validate:"required,palette_emoji"`
	IsPinned      bool      `json:"is_pinned" yaml:"is_pinned"`
	CategoryTitle string    `json:"category_title,omitempty" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// NewTracker creates an unpinned tracker with a fresh ID.
func NewTracker(title string, schedule Schedule, emoji, color string) Tracker {
	return Tracker{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(title),
		Color:     strings.ToUpper(strings.TrimSpace(color)),
		Schedule:  NewSchedule(schedule...),
		Emoji:     strings.TrimSpace(emoji),
		CreatedAt: time.Now(),
	}
}

// IsScheduled reports whether the tracker is due on the weekday of date.
func (t Tracker) IsScheduled(date time.Time) bool {
	return t.Schedule.Contains(WeekdayOf(date))
}

// MatchesSearch reports whether the title contains the already trimmed and
// lower-cased query.
func (t Tracker) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), query)
}
