package tracking

import (
	"context"
	"time"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

// RecordStore reads and writes completion records, normalizing every date
// to the start of its day first.
type RecordStore struct {
	provider storage.Provider
}

func NewRecordStore(provider storage.Provider) *RecordStore {
	return &RecordStore{provider: provider}
}

// Add marks trackerID complete on the day of date. Adding twice is a no-op.
func (r *RecordStore) Add(ctx context.Context, trackerID string, date time.Time) error {
	return r.provider.AddRecord(ctx, models.NewCompletionRecord(trackerID, date))
}

// Delete removes the completion for the day of date, if any.
func (r *RecordStore) Delete(ctx context.Context, trackerID string, date time.Time) error {
	return r.provider.DeleteRecord(ctx, trackerID, date)
}

// Has reports whether trackerID is complete on the day of date.
func (r *RecordStore) Has(ctx context.Context, trackerID string, date time.Time) (bool, error) {
	return r.provider.HasRecord(ctx, trackerID, date)
}

// Count returns the number of days trackerID was completed.
func (r *RecordStore) Count(ctx context.Context, trackerID string) (int, error) {
	return r.provider.CountRecords(ctx, trackerID)
}

// Fetch returns every record as a set.
func (r *RecordStore) Fetch(ctx context.Context) (models.RecordSet, error) {
	records, err := r.provider.GetAllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewRecordSet(records...), nil
}
