// Package logger provides splits-job-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// JobLogger provides dedicated logging for splits job runs.
type JobLogger struct {
	*logrus.Entry
}

// NewJobLogger creates a new job logger.
func NewJobLogger(baseLogger *logrus.Logger) *JobLogger {
	return &JobLogger{
		Entry: baseLogger.WithField("component", "splits_job"),
	}
}

// WithRun returns a copy of the logger tagged with a run id and run date.
func (jl *JobLogger) WithRun(runID, runDate string) *JobLogger {
	return &JobLogger{
		Entry: jl.WithFields(logrus.Fields{
			"run_id":   runID,
			"run_date": runDate,
		}),
	}
}

// LogRunStart logs the start of a run and whether it resumes a checkpoint.
func (jl *JobLogger) LogRunStart(totalHitters, alreadyComplete int, resumed bool) {
	mode := "fresh"
	if resumed {
		mode = "resume"
	}
	jl.WithFields(logrus.Fields{
		"total_hitters":    totalHitters,
		"already_complete": alreadyComplete,
		"mode":             mode,
	}).Info("Splits job started")
}

// LogProgress logs a processed hitter at a progress boundary.
func (jl *JobLogger) LogProgress(index, total int, hitterID int64, name string) {
	jl.WithFields(logrus.Fields{
		"index":     index,
		"total":     total,
		"hitter_id": hitterID,
		"name":      name,
	}).Info("Processing hitter")
}

// LogHitterSkipped logs a hitter that is already in the checkpoint.
func (jl *JobLogger) LogHitterSkipped(index, total int, hitterID int64, name string) {
	jl.WithFields(logrus.Fields{
		"index":     index,
		"total":     total,
		"hitter_id": hitterID,
		"name":      name,
	}).Info("Skipping hitter, already complete")
}

// LogGameLogFailure logs a failed game log fetch that is filled with zero games.
func (jl *JobLogger) LogGameLogFailure(hitterID int64, name string, err error) {
	jl.WithFields(logrus.Fields{
		"hitter_id": hitterID,
		"name":      name,
	}).WithError(err).Warn("Failed to fetch game log, filling with empty games")
}

// LogCircuitOpenWait logs a game log fetch held back until the provider circuit breaker cools down.
func (jl *JobLogger) LogCircuitOpenWait(hitterID int64, name string, wait time.Duration) {
	jl.WithFields(logrus.Fields{
		"hitter_id": hitterID,
		"name":      name,
		"wait_ms":   wait.Milliseconds(),
	}).Warn("Provider circuit open, retrying game log after cooldown")
}

// LogTaggingDegraded logs a game whose pitcher hand could not be resolved.
func (jl *JobLogger) LogTaggingDegraded(hitterID, gameID int64, reason string) {
	jl.WithFields(logrus.Fields{
		"hitter_id": hitterID,
		"game_id":   gameID,
		"reason":    reason,
	}).Warn("Pitcher hand unresolved, game left untagged")
}

// LogRunComplete logs the outcome of a finished run.
func (jl *JobLogger) LogRunComplete(processed, skipped, gameLogFailures, untaggedGames, checkpointSize int, duration time.Duration) {
	jl.WithFields(logrus.Fields{
		"processed":         processed,
		"skipped":           skipped,
		"game_log_failures": gameLogFailures,
		"untagged_games":    untaggedGames,
		"checkpoint_size":   checkpointSize,
		"duration_ms":       duration.Milliseconds(),
	}).Info("Splits job completed")
}
