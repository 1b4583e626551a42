package models

import (
	"encoding/json"
	"sort"
	"time"
)

// RunDateLayout is the calendar date format used to key checkpoints
const RunDateLayout = "2006-01-02"

// Checkpoint accumulates the completed hitter records of one run date.
// It is passed into and returned from each per-hitter step; it is not safe for
// concurrent mutation.
type Checkpoint struct {
	RunDate time.Time
	hitters map[string]*HitterAggregateRecord
}

// NewCheckpoint creates an empty checkpoint for the given run date
func NewCheckpoint(runDate time.Time) *Checkpoint {
	return &Checkpoint{
		RunDate: TruncateToDate(runDate),
		hitters: make(map[string]*HitterAggregateRecord),
	}
}

// Has reports whether the hitter already has a complete entry
func (c *Checkpoint) Has(key string) bool {
	rec, ok := c.hitters[key]
	return ok && rec != nil
}

// Get returns the record for a hitter key
func (c *Checkpoint) Get(key string) (*HitterAggregateRecord, bool) {
	rec, ok := c.hitters[key]
	if !ok || rec == nil {
		return nil, false
	}
	return rec, true
}

// Put stores a hitter record, replacing any previous entry for the same key
func (c *Checkpoint) Put(rec *HitterAggregateRecord) {
	if rec == nil {
		return
	}
	c.hitters[rec.Key()] = rec
}

// Len returns the number of completed hitters
func (c *Checkpoint) Len() int {
	return len(c.hitters)
}

// IDs returns the completed hitter keys in sorted order
func (c *Checkpoint) IDs() []string {
	ids := make([]string, 0, len(c.hitters))
	for id := range c.hitters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DateKey returns the run date formatted as YYYY-MM-DD
func (c *Checkpoint) DateKey() string {
	return c.RunDate.Format(RunDateLayout)
}

// MarshalJSON writes the checkpoint as a map of hitter key to record
func (c *Checkpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.hitters)
}

// UnmarshalJSON reads a map of hitter key to record. RunDate is left untouched.
func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	hitters := make(map[string]*HitterAggregateRecord)
	if err := json.Unmarshal(data, &hitters); err != nil {
		return err
	}
	for key, rec := range hitters {
		if rec == nil {
			delete(hitters, key)
		}
	}
	c.hitters = hitters
	return nil
}

// TruncateToDate drops the clock component, keeping the calendar date in UTC
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
