package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	DoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Swatch renders a small block in the tracker color.
func Swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

// FormatTracker renders one tracker line: checkbox, swatch, emoji, title,
// schedule and the completed-day count.
func FormatTracker(t models.Tracker, done bool, days int, locale constants.Locale) string {
	box := "[ ]"
	if done {
		box = DoneStyle.Render("[x]")
	}
	pin := ""
	if t.IsPinned {
		pin = " 📌"
	}
	return fmt.Sprintf("%s %s %s %s%s  %s  %s",
		box,
		Swatch(t.Color),
		t.Emoji,
		t.Title,
		pin,
		MutedStyle.Render(t.Schedule.Format(locale)),
		MutedStyle.Render(utils.FormatDays(days, locale)),
	)
}

// ShortID returns the first eight characters of an ID.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Confirm reads a y/yes answer from line.
func Confirm(line string) bool {
	answer := strings.TrimSpace(strings.ToLower(line))
	return answer == "y" || answer == "yes"
}
