package models

import "time"

// Category groups trackers under a unique title
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Trackers  []Tracker `json:"trackers"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackerIDs returns the IDs of the category's trackers in stored order
func (c Category) TrackerIDs() []string {
	ids := make([]string, len(c.Trackers))
	for i, t := range c.Trackers {
		ids[i] = t.ID
	}
	return ids
}

// AllTrackers flattens the trackers of every category, keeping order.
func AllTrackers(categories []Category) []Tracker {
	var trackers []Tracker
	for _, c := range categories {
		trackers = append(trackers, c.Trackers...)
	}
	return trackers
}
