package events

import (
	"sync"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/logger"
)

// Kind names what changed.
type Kind string

const (
	TrackerAdded    Kind = "tracker_added"
	TrackerUpdated  Kind = "tracker_updated"
	TrackerMoved    Kind = "tracker_moved"
	TrackerPinned   Kind = "tracker_pinned"
	TrackerDeleted  Kind = "tracker_deleted"
	CategoryAdded   Kind = "category_added"
	CategoryRenamed Kind = "category_renamed"
	CategoryDeleted Kind = "category_deleted"
	RecordAdded     Kind = "record_added"
	RecordRemoved   Kind = "record_removed"
	SettingsUpdated Kind = "settings_updated"
	DataImported    Kind = "data_imported"
)

// Event is a change notification. The fields are hints; subscribers
// re-read state rather than trusting them.
type Event struct {
	Kind      Kind
	TrackerID string
	Category  string
	Day       string // YYYY-MM-DD, set for record events
}

// Bus fans events out to subscribers without blocking the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a buffered event channel and a func that unsubscribes
// and closes it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, constants.SubscriberBufferSize)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			logger.Debug("dropping event for slow subscriber", "subscriber", id, "kind", e.Kind)
		}
	}
}

// Close unsubscribes everyone.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
