package logger

import (
	"github.com/sirupsen/logrus"
)

// CheckpointLogger provides dedicated logging for checkpoint persistence.
type CheckpointLogger struct {
	*logrus.Entry
}

// NewCheckpointLogger creates a new checkpoint logger for a storage backend.
func NewCheckpointLogger(baseLogger *logrus.Logger, backend string) *CheckpointLogger {
	return &CheckpointLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "checkpoint",
			"backend":   backend,
		}),
	}
}

// LogLoaded logs a checkpoint read at the start of a run.
func (cl *CheckpointLogger) LogLoaded(runDate string, hitters int, found bool) {
	cl.WithFields(logrus.Fields{
		"run_date": runDate,
		"hitters":  hitters,
		"found":    found,
	}).Info("Checkpoint loaded")
}

// LogSaved logs a persisted checkpoint.
func (cl *CheckpointLogger) LogSaved(runDate, location string, hitters int) {
	cl.WithFields(logrus.Fields{
		"run_date": runDate,
		"location": location,
		"hitters":  hitters,
	}).Info("Checkpoint saved")
}

// LogDiscarded logs an unreadable checkpoint that is treated as missing.
func (cl *CheckpointLogger) LogDiscarded(runDate, location string, err error) {
	cl.WithFields(logrus.Fields{
		"run_date": runDate,
		"location": location,
	}).WithError(err).Warn("Checkpoint unreadable")
}

// LogRecordSkipped logs a single persisted record that cannot be used and is left out.
func (cl *CheckpointLogger) LogRecordSkipped(runDate, location, hitterKey string, err error) {
	cl.WithFields(logrus.Fields{
		"run_date":   runDate,
		"location":   location,
		"hitter_key": hitterKey,
	}).WithError(err).Warn("Skipping unusable checkpoint record")
}
