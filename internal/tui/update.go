package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tui/forms"
	"github.com/julianstephens/tracker/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = msg.Width - 6
		return m, nil

	case loadedMsg:
		m.setSections(msg.sections)
		m.done = msg.done
		m.counts = msg.counts
		m.stats = msg.stats
		m.categories = msg.categories
		return m, nil

	case eventMsg:
		return m, tea.Batch(m.load(), waitForEvent(m.events))

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	switch m.state {
	case StateForm:
		return m.updateForm(msg)
	case StateSearch:
		return m.updateSearch(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.state == StateStats {
		if key.Matches(keyMsg, m.keys.Quit) {
			return m.quit()
		}
		m.state = StateBoard
		return m, nil
	}
	return m.updateBoard(keyMsg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return m, tea.Quit
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.PrevDay):
		m.date = m.date.AddDate(0, 0, -1)
		m.cursor = 0
		return m, m.load()

	case key.Matches(msg, m.keys.NextDay):
		m.date = m.date.AddDate(0, 0, 1)
		m.cursor = 0
		return m, m.load()

	case key.Matches(msg, m.keys.Today):
		m.date = m.svc.Today()
		m.cursor = 0
		return m, m.load()

	case key.Matches(msg, m.keys.Filter):
		m.filter = nextFilter(m.filter)
		m.cursor = 0
		return m, m.load()

	case key.Matches(msg, m.keys.Search):
		m.state = StateSearch
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			return m, m.load()
		}

	case key.Matches(msg, m.keys.Stats):
		m.state = StateStats

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.Selected(); ok {
			if utils.IsAfterDay(m.viewDate(), m.svc.Today()) {
				return m, nil
			}
			return m, m.toggleCmd(t.ID, m.viewDate())
		}

	case key.Matches(msg, m.keys.Pin):
		if t, ok := m.Selected(); ok {
			return m, m.pinCmd(t.ID)
		}

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.Selected(); ok {
			m.state = StateConfirmDelete
		}

	case key.Matches(msg, m.keys.Add):
		return m.openForm(models.Tracker{})

	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.Selected(); ok {
			current, err := m.svc.Tracker(m.ctx, t.ID)
			if err != nil {
				m.err = err
				return m, nil
			}
			return m.openForm(current)
		}
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			m.search.Blur()
			m.state = StateBoard
			return m, m.load()
		case tea.KeyEnter:
			m.search.Blur()
			m.state = StateBoard
			return m, nil
		}
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor = 0
		return m, tea.Batch(cmd, m.load())
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.state = StateBoard
		if t, ok := m.Selected(); ok {
			return m, m.deleteCmd(t.ID)
		}
	case key.Matches(keyMsg, m.keys.Decline):
		m.state = StateBoard
	}
	return m, nil
}

// openForm shows the tracker form, empty for a new tracker.
func (m Model) openForm(t models.Tracker) (tea.Model, tea.Cmd) {
	m.trackerFm = forms.NewTrackerFormModel(t)
	if t.ID != "" {
		m.editing = &t
	} else {
		m.editing = nil
	}
	m.form = forms.NewTrackerForm(m.trackerFm, m.categories, m.locale)
	m.state = StateForm
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBoard
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateBoard
		cmds = append(cmds, m.submitForm())
	case huh.StateAborted:
		m.state = StateBoard
	}
	return m, tea.Batch(cmds...)
}

// submitForm saves the form values as a new or edited tracker.
func (m Model) submitForm() tea.Cmd {
	if m.editing == nil {
		return m.saveCmd(m.trackerFm.Apply(models.Tracker{}), m.trackerFm.Category, true)
	}
	return m.saveCmd(m.trackerFm.Apply(*m.editing), m.trackerFm.Category, false)
}
