package stats

import (
	"fmt"
	"sort"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// Result holds the aggregate statistics.
type Result struct {
	BestPeriod        int     `json:"best_period" yaml:"best_period"`
	IdealDays         int     `json:"ideal_days" yaml:"ideal_days"`
	CompletedTrackers int     `json:"completed_trackers" yaml:"completed_trackers"`
	AverageValue      float64 `json:"average_value" yaml:"average_value"`
}

// IsEmpty reports whether there is nothing to show yet.
func (r Result) IsEmpty() bool {
	return r.CompletedTrackers == 0
}

// Line is one labeled value, for display.
type Line struct {
	Label string
	Value string
}

// Lines returns the result as localized label/value pairs in display order.
func (r Result) Lines(locale constants.Locale) []Line {
	s := utils.StringsFor(locale)
	return []Line{
		{Label: s.BestPeriod, Value: fmt.Sprint(r.BestPeriod)},
		{Label: s.IdealDays, Value: fmt.Sprint(r.IdealDays)},
		{Label: s.Completed, Value: fmt.Sprint(r.CompletedTrackers)},
		{Label: s.AverageValue, Value: fmt.Sprintf("%.1f", r.AverageValue)},
	}
}

// Calculate computes the statistics from all categories and records.
//
// BestPeriod is the longest run of calendar-consecutive days with at least
// one record. IdealDays counts record days whose scheduled trackers form a
// non-empty subset of the trackers completed that day. CompletedTrackers is
// the raw record count. AverageValue is the number of records on days with
// at least one scheduled tracker divided by the number of such days.
func Calculate(categories []models.Category, records []models.CompletionRecord) Result {
	set := models.NewRecordSet(records...)
	byDay := set.ByDay()
	trackers := models.AllTrackers(categories)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	result := Result{
		BestPeriod:        bestPeriod(days, byDay),
		CompletedTrackers: len(records),
	}

	activeDays, activeTotal := 0, 0
	for _, day := range days {
		dayRecords := byDay[day]
		date := dayRecords[0].Day

		completed := make(map[string]bool, len(dayRecords))
		for _, r := range dayRecords {
			completed[r.TrackerID] = true
		}

		scheduled, ideal := 0, true
		for _, t := range trackers {
			if !t.IsScheduled(date) {
				continue
			}
			scheduled++
			if !completed[t.ID] {
				ideal = false
			}
		}
		if scheduled == 0 {
			continue
		}
		if ideal {
			result.IdealDays++
		}
		activeDays++
		activeTotal += len(dayRecords)
	}
	if activeDays > 0 {
		result.AverageValue = float64(activeTotal) / float64(activeDays)
	}

	return result
}

func bestPeriod(days []string, byDay map[string][]models.CompletionRecord) int {
	best, run := 0, 0
	for i, day := range days {
		if i > 0 && utils.DaysBetween(byDay[days[i-1]][0].Day, byDay[day][0].Day) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// TrackerSummary returns the number of completed days per tracker ID.
func TrackerSummary(records []models.CompletionRecord) map[string]int {
	counts := make(map[string]int)
	for key := range models.NewRecordSet(records...) {
		counts[key.TrackerID]++
	}
	return counts
}
