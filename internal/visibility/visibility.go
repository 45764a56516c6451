package visibility

import (
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// Query selects what is visible.
type Query struct {
	Date   time.Time
	Search string
	Filter constants.StatusFilter
}

// Section is one titled group of visible trackers.
type Section struct {
	Title    string
	Pinned   bool
	Trackers []models.Tracker
}

// DisplayTitle returns the title to show, localizing the pinned group.
func (s Section) DisplayTitle(locale constants.Locale) string {
	if s.Pinned {
		return utils.StringsFor(locale).Pinned
	}
	return s.Title
}

// Derive computes the visible sections for q. Stages run in order: schedule
// filter, pin segregation, search, status filter, then empty sections are
// dropped. The pinned section comes first; categories and trackers keep
// their stored order.
func Derive(categories []models.Category, records models.RecordSet, q Query) []Section {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	pinned := Section{Title: constants.PinnedCategoryTitle, Pinned: true}
	var rest []Section
	for _, c := range categories {
		section := Section{Title: c.Title}
		for _, t := range c.Trackers {
			if !t.IsScheduled(q.Date) {
				continue
			}
			if t.IsPinned {
				pinned.Trackers = append(pinned.Trackers, t)
			} else {
				section.Trackers = append(section.Trackers, t)
			}
		}
		rest = append(rest, section)
	}

	var out []Section
	for _, s := range append([]Section{pinned}, rest...) {
		s.Trackers = keep(s.Trackers, func(t models.Tracker) bool {
			return t.MatchesSearch(search) && matchesFilter(t, records, q)
		})
		if len(s.Trackers) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func matchesFilter(t models.Tracker, records models.RecordSet, q Query) bool {
	switch q.Filter {
	case constants.FilterCompleted:
		return records.Has(t.ID, q.Date)
	case constants.FilterIncomplete:
		return !records.Has(t.ID, q.Date)
	default:
		return true
	}
}

func keep(trackers []models.Tracker, pred func(models.Tracker) bool) []models.Tracker {
	var out []models.Tracker
	for _, t := range trackers {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// Placeholder returns the text to show when Derive produced nothing: a
// "nothing found" message when a search or narrowing filter is active,
// otherwise the empty-day prompt.
func Placeholder(q Query, locale constants.Locale) string {
	strs := utils.StringsFor(locale)
	if strings.TrimSpace(q.Search) != "" || q.Filter == constants.FilterCompleted || q.Filter == constants.FilterIncomplete {
		return strs.NothingFound
	}
	return strs.NothingToday
}

// Count returns the number of trackers across sections.
func Count(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Trackers)
	}
	return n
}
