// Package forms holds the huh forms shared by the CLI and the board.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/validation"
)

// TrackerFormModel is the editable state behind the tracker form.
type TrackerFormModel struct {
	Title    string
	Category string
	Days     []models.Weekday
	Emoji    string
	Color    string
}

// NewTrackerFormModel prefills the form from t, or with defaults for a new
// tracker when t has no ID.
func NewTrackerFormModel(t models.Tracker) *TrackerFormModel {
	fm := &TrackerFormModel{
		Title:    t.Title,
		Category: t.CategoryTitle,
		Days:     append([]models.Weekday(nil), t.Schedule...),
		Emoji:    t.Emoji,
		Color:    t.Color,
	}
	if fm.Emoji == "" {
		fm.Emoji = constants.EmojiPalette[0]
	}
	if fm.Color == "" {
		fm.Color = constants.ColorPalette[0]
	}
	return fm
}

// Apply copies the form values onto base. A zero base gets a fresh ID.
func (fm *TrackerFormModel) Apply(base models.Tracker) models.Tracker {
	schedule := models.NewSchedule(fm.Days...)
	if base.ID == "" {
		return models.NewTracker(fm.Title, schedule, fm.Emoji, fm.Color)
	}
	base.Title = strings.TrimSpace(fm.Title)
	base.Schedule = schedule
	base.Emoji = fm.Emoji
	base.Color = strings.ToUpper(fm.Color)
	return base
}

// ValidateTitle refuses empty and over-long titles.
func ValidateTitle(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(s) > constants.MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", constants.MaxTitleLength)
	}
	return nil
}

// ValidateDays refuses an empty schedule.
func ValidateDays(days []models.Weekday) error {
	if len(days) == 0 {
		return errors.New("pick at least one day")
	}
	return nil
}

// NewTrackerForm builds the create/edit form. categories feed the category
// suggestions. Submitting is refused until every field is valid.
func NewTrackerForm(fm *TrackerFormModel, categories []string, locale constants.Locale) *huh.Form {
	dayOptions := make([]huh.Option[models.Weekday], 0, len(models.AllWeekdays))
	for _, w := range models.AllWeekdays {
		dayOptions = append(dayOptions, huh.NewOption(w.Name(locale), w).Selected(containsDay(fm.Days, w)))
	}

	emojiOptions := make([]huh.Option[string], 0, len(constants.EmojiPalette))
	for _, e := range constants.EmojiPalette {
		emojiOptions = append(emojiOptions, huh.NewOption(e, e))
	}

	colorOptions := make([]huh.Option[string], 0, len(constants.ColorPalette))
	for _, c := range constants.ColorPalette {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("■■")
		colorOptions = append(colorOptions, huh.NewOption(swatch+" "+c, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(constants.MaxTitleLength).
				Value(&fm.Title).
				Validate(ValidateTitle),
			huh.NewInput().
				Title("Category").
				Suggestions(categories).
				Value(&fm.Category).
				Validate(func(s string) error {
					return validation.CategoryTitle(strings.TrimSpace(s))
				}),
			huh.NewMultiSelect[models.Weekday]().
				Title("Schedule").
				Options(dayOptions...).
				Value(&fm.Days).
				Validate(ValidateDays),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Emoji").
				Options(emojiOptions...).
				Value(&fm.Emoji),
			huh.NewSelect[string]().
				Title("Color").
				Options(colorOptions...).
				Value(&fm.Color),
		),
	)
}

func containsDay(days []models.Weekday, w models.Weekday) bool {
	for _, d := range days {
		if d == w {
			return true
		}
	}
	return false
}
