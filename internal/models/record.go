package models

import (
	"sort"
	"time"

	"github.com/julianstephens/tracker/internal/utils"
)

// CompletionRecord marks a tracker as completed on a calendar day.
type CompletionRecord struct {
	TrackerID string    `json:"tracker_id"`
	Day       time.Time `json:"day"`
}

// NewCompletionRecord creates a record with its day truncated to midnight.
func NewCompletionRecord(trackerID string, date time.Time) CompletionRecord {
	return CompletionRecord{TrackerID: trackerID, Day: utils.StartOfDay(date)}
}

// RecordKey identifies a record by tracker and calendar day.
type RecordKey struct {
	TrackerID string
	Day       string // YYYY-MM-DD format
}

// Key returns the deduplication key of the record.
func (r CompletionRecord) Key() RecordKey {
	return RecordKey{TrackerID: r.TrackerID, Day: utils.DayKey(r.Day)}
}

// RecordSet holds at most one record per tracker and day.
type RecordSet map[RecordKey]CompletionRecord

// NewRecordSet builds a set from records, normalizing days and collapsing duplicates.
func NewRecordSet(records ...CompletionRecord) RecordSet {
	s := make(RecordSet, len(records))
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// Add inserts r and reports whether it was new.
func (s RecordSet) Add(r CompletionRecord) bool {
	r.Day = utils.StartOfDay(r.Day)
	key := r.Key()
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = r
	return true
}

// Remove deletes the record for trackerID on the day of date, if present.
func (s RecordSet) Remove(trackerID string, date time.Time) bool {
	key := RecordKey{TrackerID: trackerID, Day: utils.DayKey(date)}
	if _, ok := s[key]; !ok {
		return false
	}
	delete(s, key)
	return true
}

// Has reports whether trackerID was completed on the day of date.
func (s RecordSet) Has(trackerID string, date time.Time) bool {
	_, ok := s[RecordKey{TrackerID: trackerID, Day: utils.DayKey(date)}]
	return ok
}

// CountFor returns the number of days trackerID was completed.
func (s RecordSet) CountFor(trackerID string) int {
	count := 0
	for key := range s {
		if key.TrackerID == trackerID {
			count++
		}
	}
	return count
}

// ByDay groups records by calendar day key.
func (s RecordSet) ByDay() map[string][]CompletionRecord {
	days := make(map[string][]CompletionRecord)
	for key, r := range s {
		days[key.Day] = append(days[key.Day], r)
	}
	return days
}

// Records returns the records sorted by day, then tracker ID.
func (s RecordSet) Records() []CompletionRecord {
	out := make([]CompletionRecord, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Key(), out[j].Key()
		if ki.Day != kj.Day {
			return ki.Day < kj.Day
		}
		return ki.TrackerID < kj.TrackerID
	})
	return out
}

// Len returns the number of records.
func (s RecordSet) Len() int {
	return len(s)
}
