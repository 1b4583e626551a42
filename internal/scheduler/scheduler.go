// Package scheduler runs the splits job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/service"
)

// DefaultRunTimeout bounds a single scheduled run
const DefaultRunTimeout = 4 * time.Hour

// JobRunner runs the splits job for one run date
type JobRunner interface {
	Run(ctx context.Context, runDate time.Time) (*service.JobReport, error)
}

// Scheduler manages the scheduled daily splits run. A tick that fires while a run
// is still in progress is skipped.
type Scheduler struct {
	cron            *cron.Cron
	job             JobRunner
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	running         atomic.Bool
	skipped         atomic.Int64
	runTimeout      time.Duration
	gracefulTimeout time.Duration
	now             func() time.Time
	background      sync.WaitGroup

	// base is cancelled by Stop so in-flight runs end without persisting
	base       context.Context
	cancelBase context.CancelFunc
}

// NewScheduler creates a new scheduler
func NewScheduler(job JobRunner, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		job:             job,
		logger:          log.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		runTimeout:      DefaultRunTimeout,
		gracefulTimeout: 30 * time.Second,
		now:             time.Now,
		base:            base,
		cancelBase:      cancel,
	}
}

// ScheduleDailyRun schedules the splits job with a standard five-field cron expression
func (s *Scheduler) ScheduleDailyRun(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() { s.RunNow(s.base) })
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled daily splits run")

	return nil
}

// RunNow runs the job for today's date unless a run is already in progress.
// It reports whether the run was started.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn("Previous splits run still in progress, skipping tick")
		return false
	}
	defer s.running.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	runDate := s.now().UTC()
	s.logger.WithField("run_date", runDate.Format("2006-01-02")).Info("Starting scheduled splits run")

	report, err := s.job.Run(runCtx, runDate)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled splits run failed")
		return true
	}
	s.logger.WithField("report", report.String()).Info("Scheduled splits run completed")
	return true
}

// RunInBackground starts a run outside the cron schedule on the scheduler's own context.
// Stop cancels it and waits for it like a cron-launched run.
func (s *Scheduler) RunInBackground() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return fmt.Errorf("scheduler is not running")
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.RunNow(s.base)
	}()
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop cancels any in-flight run and waits for it to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancelBase()

	stopped := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.background.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.gracefulTimeout):
		s.isRunning = false
		return fmt.Errorf("scheduler did not stop within %s", s.gracefulTimeout)
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsJobRunning returns whether a splits run is in progress
func (s *Scheduler) IsJobRunning() bool {
	return s.running.Load()
}

// SkippedTicks returns how many ticks were skipped because a run was in progress
func (s *Scheduler) SkippedTicks() int64 {
	return s.skipped.Load()
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
