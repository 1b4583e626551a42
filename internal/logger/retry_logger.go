package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RetryLogger adapts a logrus entry to retryablehttp.LeveledLogger.
// Retry chatter is demoted to debug; errors stay at warn.
type RetryLogger struct {
	entry *logrus.Entry
}

// NewRetryLogger creates a new retry logger tagged with the provider name.
func NewRetryLogger(baseLogger *logrus.Logger, provider string) *RetryLogger {
	return &RetryLogger{
		entry: baseLogger.WithFields(logrus.Fields{
			"component": "http_client",
			"provider":  provider,
		}),
	}
}

func (rl *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	rl.entry.WithFields(kvFields(keysAndValues)).Warn(msg)
}

func (rl *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	rl.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (rl *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	rl.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (rl *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	rl.entry.WithFields(kvFields(keysAndValues)).Warn(msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	if len(keysAndValues)%2 == 1 {
		fields["extra"] = keysAndValues[len(keysAndValues)-1]
	}
	return fields
}
