package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// ConflictType represents the type of consistency problem
type ConflictType string

const (
	ConflictDuplicateCategory ConflictType = "duplicate_category"
	ConflictDuplicateTracker  ConflictType = "duplicate_tracker"
	ConflictInvalidTracker    ConflictType = "invalid_tracker"
	ConflictEmptySchedule     ConflictType = "empty_schedule"
	ConflictOrphanRecord      ConflictType = "orphan_record"
	ConflictFutureRecord      ConflictType = "future_record"
)

// Conflict represents a detected problem in stored data
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Titles involved
	TrackerIDs  []string // IDs of trackers involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks stored categories and records for consistency
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Validate checks categories and their trackers, then records against them.
// Records dated after today are reported as future records.
func (v *Validator) Validate(categories []models.Category, records []models.CompletionRecord, today time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := make(map[string][]string)
	for _, c := range categories {
		key := strings.ToLower(strings.TrimSpace(c.Title))
		titles[key] = append(titles[key], c.Title)
	}
	for _, key := range sortedKeys(titles) {
		if names := titles[key]; len(names) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateCategory,
				Description: fmt.Sprintf("Duplicate category title: %q (%d categories)", names[0], len(names)),
				Items:       names,
			})
		}
	}

	known := make(map[string]models.Tracker)
	for _, c := range categories {
		byTitle := make(map[string][]string)
		for _, t := range c.Trackers {
			known[t.ID] = t
			byTitle[t.Title] = append(byTitle[t.Title], t.ID)

			if len(t.Schedule) == 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictEmptySchedule,
					Description: fmt.Sprintf("Tracker %q has no scheduled days and is never shown", t.Title),
					Items:       []string{t.Title},
					TrackerIDs:  []string{t.ID},
				})
				continue
			}
			if err := Tracker(t); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidTracker,
					Description: fmt.Sprintf("Tracker %q is invalid: %v", t.Title, err),
					Items:       []string{t.Title},
					TrackerIDs:  []string{t.ID},
				})
			}
		}
		for _, title := range sortedKeys(byTitle) {
			if ids := byTitle[title]; len(ids) > 1 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictDuplicateTracker,
					Description: fmt.Sprintf("Duplicate tracker title %q in category %q (IDs: %v)", title, c.Title, ids),
					Items:       []string{c.Title, title},
					TrackerIDs:  ids,
				})
			}
		}
	}

	todayKey := utils.DayKey(today)
	orphans := make(map[string]int)
	for _, r := range records {
		day := utils.DayKey(r.Day)
		if _, ok := known[r.TrackerID]; !ok {
			orphans[r.TrackerID]++
			continue
		}
		if day > todayKey {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureRecord,
				Description: fmt.Sprintf("Tracker %q is marked complete on future date %s", known[r.TrackerID].Title, day),
				Date:        day,
				Items:       []string{known[r.TrackerID].Title},
				TrackerIDs:  []string{r.TrackerID},
			})
		}
	}
	for _, id := range sortedKeys(orphans) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictOrphanRecord,
			Description: fmt.Sprintf("%d completion record(s) reference missing tracker %s", orphans[id], id),
			TrackerIDs:  []string{id},
		})
	}

	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
