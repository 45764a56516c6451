package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/stats"
	"github.com/julianstephens/tracker/internal/tracking"
	"github.com/julianstephens/tracker/internal/visibility"
)

type loadedMsg struct {
	sections   []visibility.Section
	done       map[string]bool
	counts     map[string]int
	stats      stats.Result
	categories []string
}

type eventMsg events.Event

type errMsg struct {
	err error
}

func (e errMsg) Error() string { return e.err.Error() }

// load reads everything the board shows for the current query.
func (m Model) load() tea.Cmd {
	ctx, svc, q := m.ctx, m.svc, m.query()
	return func() tea.Msg {
		return loadBoard(ctx, svc, q)
	}
}

func loadBoard(ctx context.Context, svc *tracking.Service, q visibility.Query) tea.Msg {
	sections, err := svc.VisibleCategories(ctx, q.Date, q.Search, q.Filter)
	if err != nil {
		return errMsg{err}
	}
	records, err := svc.Records(ctx)
	if err != nil {
		return errMsg{err}
	}
	result, err := svc.Statistics(ctx)
	if err != nil {
		return errMsg{err}
	}
	categories, err := svc.Categories(ctx)
	if err != nil {
		return errMsg{err}
	}

	date := q.Date
	if q.Filter == constants.FilterToday {
		date = svc.Today()
	}
	set := models.NewRecordSet(records...)
	done := make(map[string]bool)
	for _, s := range sections {
		for _, t := range s.Trackers {
			done[t.ID] = set.Has(t.ID, date)
		}
	}
	titles := make([]string, len(categories))
	for i, c := range categories {
		titles[i] = c.Title
	}

	return loadedMsg{
		sections:   sections,
		done:       done,
		counts:     stats.TrackerSummary(records),
		stats:      result,
		categories: titles,
	}
}

// waitForEvent blocks until the service publishes a change. A closed
// channel ends the subscription.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// run executes a service write and reports only failures. The resulting
// event triggers the reload.
func run(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			logger.Debug("board action failed", "action", name, "error", err)
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) toggleCmd(trackerID string, date time.Time) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return run("toggle", func() error {
		return svc.ToggleCompletion(ctx, trackerID, date)
	})
}

func (m Model) pinCmd(trackerID string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return run("pin", func() error {
		_, err := svc.TogglePin(ctx, trackerID)
		return err
	})
}

func (m Model) deleteCmd(trackerID string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return run("delete", func() error {
		return svc.DeleteTracker(ctx, trackerID)
	})
}

func (m Model) saveCmd(tracker models.Tracker, category string, isNew bool) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return run("save", func() error {
		if isNew {
			return svc.CreateTracker(ctx, tracker, category)
		}
		return svc.UpdateTracker(ctx, tracker, category)
	})
}
