package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/hitter-splits/internal/metrics"
	"github.com/yourusername/hitter-splits/internal/models"
)

// Run statuses reported to Prometheus
const (
	RunStatusSuccess   = "success"
	RunStatusFailure   = "failure"
	RunStatusCancelled = "cancelled"
)

// JobReport tracks statistics about one splits job run
type JobReport struct {
	RunID           uuid.UUID
	RunDate         time.Time
	StartTime       time.Time
	Duration        time.Duration
	Resumed         bool
	TotalHitters    int
	Processed       int
	Skipped         int
	GameLogFailures int
	Games           int
	DroppedGames    int
	UntaggedGames   int
	CheckpointSize  int
	Persisted       bool
}

// NewJobReport creates a report for a run on the given date
func NewJobReport(runDate time.Time) *JobReport {
	return &JobReport{
		RunID:     uuid.New(),
		RunDate:   models.TruncateToDate(runDate),
		StartTime: time.Now(),
	}
}

// RecordSkipped counts a hitter that was already complete
func (r *JobReport) RecordSkipped() {
	r.Skipped++
	metrics.RecordHitter("skipped")
}

// RecordProcessed folds one processed hitter into the report
func (r *JobReport) RecordProcessed(o hitterOutcome) {
	r.Processed++
	r.Games += o.games
	r.DroppedGames += o.dropped
	r.UntaggedGames += o.untagged
	if o.gameLogFailed {
		r.GameLogFailures++
		metrics.RecordGameLogFailure()
	}
	metrics.RecordHitter("processed")
	metrics.RecordGamesDropped(o.dropped)
	metrics.RecordHitterDuration(o.duration.Seconds())
}

// Finish stamps the duration and publishes the run outcome
func (r *JobReport) Finish(status string) {
	r.Duration = time.Since(r.StartTime)
	metrics.RecordJobRun(status, r.Duration.Seconds())
	if status == RunStatusSuccess {
		metrics.UpdateLastRunTimestamp(float64(time.Now().Unix()))
		if r.Persisted {
			metrics.UpdateCheckpointHitters(r.CheckpointSize)
		}
	}
}

// String returns a formatted string representation of the report
func (r *JobReport) String() string {
	untaggedRate := float64(0)
	if r.Games > 0 {
		untaggedRate = float64(r.UntaggedGames) / float64(r.Games) * 100
	}

	return fmt.Sprintf(
		"JobReport{Run=%s, Date=%s, Hitters=%d, Processed=%d, Skipped=%d, GameLogFailures=%d, Games=%d, Dropped=%d, Untagged=%d (%.1f%%), Checkpoint=%d, Duration=%v}",
		r.RunID,
		r.RunDate.Format(models.RunDateLayout),
		r.TotalHitters,
		r.Processed,
		r.Skipped,
		r.GameLogFailures,
		r.Games,
		r.DroppedGames,
		r.UntaggedGames,
		untaggedRate,
		r.CheckpointSize,
		r.Duration,
	)
}
