package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
	"github.com/julianstephens/tracker/internal/visibility"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateForm:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	case StateStats:
		content = m.viewStats()
	default:
		content = m.viewBoard()
	}

	parts := []string{m.viewHeader(), content}
	if m.err != nil {
		parts = append(parts, dangerStyle.Render("Error: "+m.err.Error()))
	}
	parts = append(parts, m.help.View(m.keys))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewHeader() string {
	date := m.viewDate()
	label := fmt.Sprintf("%s, %s", models.WeekdayOf(date).Name(m.locale), date.Format(constants.DateFormat))
	if utils.DaysBetween(date, m.svc.Today()) == 0 {
		label += " •"
	}
	filter := utils.StringsFor(m.locale).Filters[m.filter]
	return lipgloss.JoinHorizontal(lipgloss.Top, dateStyle.Render(label), filterStyle.Render(filter))
}

func (m Model) viewBoard() string {
	var b strings.Builder
	if m.state == StateSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		q := m.query()
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(visibility.Placeholder(q, m.locale)))
		return b.String()
	}

	i := 0
	for _, s := range m.sections {
		b.WriteString(sectionStyle.Render(s.DisplayTitle(m.locale)))
		b.WriteString("\n")
		for _, t := range s.Trackers {
			b.WriteString(m.viewRow(t, i == m.cursor))
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

func (m Model) viewRow(t models.Tracker, selected bool) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}
	box := "[ ]"
	if m.done[t.ID] {
		box = doneStyle.Render("[x]")
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("■")
	title := t.Title
	if selected {
		title = cursorStyle.Render(title)
	}
	return fmt.Sprintf("%s%s %s %s %s  %s",
		cursor,
		box,
		swatch,
		t.Emoji,
		title,
		mutedStyle.Render(t.Schedule.Format(m.locale)+" · "+utils.FormatDays(m.counts[t.ID], m.locale)),
	)
}

func (m Model) viewConfirmDelete() string {
	t, _ := m.Selected()
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		dangerStyle.Render(fmt.Sprintf("Delete %s %s and all of its records?", t.Emoji, t.Title)),
		"",
		"[y] Yes",
		"[n] No",
	)
}

func (m Model) viewStats() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.stats.IsEmpty() {
		b.WriteString(mutedStyle.Render("No completed trackers yet."))
		b.WriteString("\n")
	}
	for _, line := range m.stats.Lines(m.locale) {
		b.WriteString(statLabelStyle.Render(line.Label))
		b.WriteString(line.Value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("press any key to return"))
	return b.String()
}
