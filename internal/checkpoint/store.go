// Package checkpoint persists per-run-date hitter records so an interrupted job can resume.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/hitter-splits/internal/models"
)

// Store persists the hitter records of each run date.
type Store interface {
	// Load returns the persisted checkpoint for runDate, or an empty one if none exists.
	Load(ctx context.Context, runDate time.Time) (*models.Checkpoint, error)
	// CompletedIDs returns the keys of the hitters already persisted for runDate.
	CompletedIDs(ctx context.Context, runDate time.Time) (map[string]struct{}, error)
	// Save merges the records of cp over the persisted ones for cp.RunDate in one atomic
	// step and returns the number of hitters persisted for that date afterwards.
	Save(ctx context.Context, cp *models.Checkpoint) (int, error)
	// Latest returns the checkpoint with the most recent run date, or models.ErrNotFound.
	Latest(ctx context.Context) (*models.Checkpoint, error)
	// Backend names the storage backend.
	Backend() string
	Close() error
}

// encodeRecords marshals each record of the checkpoint keyed by hitter key
func encodeRecords(cp *models.Checkpoint) (map[string]json.RawMessage, error) {
	encoded := make(map[string]json.RawMessage, cp.Len())
	for _, key := range cp.IDs() {
		rec, _ := cp.Get(key)
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode hitter %s: %w", key, err)
		}
		encoded[key] = data
	}
	return encoded, nil
}

// decodeRecord unmarshals one persisted record into the checkpoint
func decodeRecord(cp *models.Checkpoint, key string, data []byte) error {
	var rec models.HitterAggregateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to decode hitter %s: %w", key, err)
	}
	cp.Put(&rec)
	return nil
}

func dateKey(runDate time.Time) string {
	return models.TruncateToDate(runDate).Format(models.RunDateLayout)
}
