package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/stats"
	"github.com/julianstephens/tracker/internal/tracking"
	"github.com/julianstephens/tracker/internal/tui/forms"
	"github.com/julianstephens/tracker/internal/visibility"
)

type SessionState int

const (
	StateBoard SessionState = iota
	StateSearch
	StateForm
	StateConfirmDelete
	StateStats
)

// row is one selectable tracker line on the board.
type row struct {
	Section int
	Tracker models.Tracker
}

type Model struct {
	ctx         context.Context
	svc         *tracking.Service
	events      <-chan events.Event
	unsubscribe func()

	state  SessionState
	keys   KeyMap
	help   help.Model
	search textinput.Model

	date   time.Time
	filter constants.StatusFilter
	locale constants.Locale

	sections []visibility.Section
	rows     []row
	done     map[string]bool
	counts   map[string]int
	stats    stats.Result
	cursor   int

	form       *huh.Form
	trackerFm  *forms.TrackerFormModel
	editing    *models.Tracker
	categories []string

	err      error
	quitting bool
	width    int
	height   int
}

// NewModel builds the board for today with the stored default filter. The
// model subscribes to service events and reloads whenever data changes.
func NewModel(ctx context.Context, svc *tracking.Service, settings models.Settings) Model {
	models.ApplyDefaultSettings(&settings)

	search := textinput.New()
	search.Placeholder = "search trackers"
	search.CharLimit = constants.MaxTitleLength
	search.Prompt = "/ "

	ch, unsubscribe := svc.Subscribe()

	return Model{
		ctx:         ctx,
		svc:         svc,
		events:      ch,
		unsubscribe: unsubscribe,
		state:       StateBoard,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		search:      search,
		date:        svc.Today(),
		filter:      settings.DefaultFilter,
		locale:      settings.Locale,
		done:        map[string]bool{},
		counts:      map[string]int{},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), waitForEvent(m.events))
}

// Selected returns the tracker under the cursor.
func (m Model) Selected() (models.Tracker, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return models.Tracker{}, false
	}
	return m.rows[m.cursor].Tracker, true
}

// query returns the visibility query the board currently shows.
func (m Model) query() visibility.Query {
	return visibility.Query{Date: m.date, Search: m.search.Value(), Filter: m.filter}
}

func (m *Model) setSections(sections []visibility.Section) {
	m.sections = sections
	m.rows = nil
	for i, s := range sections {
		for _, t := range s.Trackers {
			m.rows = append(m.rows, row{Section: i, Tracker: t})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// nextFilter cycles through the status filters in display order.
func nextFilter(f constants.StatusFilter) constants.StatusFilter {
	for i, known := range constants.AllStatusFilters {
		if known == f {
			return constants.AllStatusFilters[(i+1)%len(constants.AllStatusFilters)]
		}
	}
	return constants.AllStatusFilters[0]
}

// viewDate is the day completions are shown and toggled for. The today
// filter pins it to the current day.
func (m Model) viewDate() time.Time {
	if m.filter == constants.FilterToday {
		return m.svc.Today()
	}
	return m.date
}
