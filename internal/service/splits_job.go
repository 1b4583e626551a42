package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/checkpoint"
	"github.com/yourusername/hitter-splits/internal/config"
	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/models"
	"github.com/yourusername/hitter-splits/internal/splits"
)

// DefaultProgressInterval is how many hitters pass between progress logs
const DefaultProgressInterval = 10

// JobOptions configures a splits job
type JobOptions struct {
	TeamIDs          []int64
	Season           int // zero means the run date's year
	Windows          []int
	ProgressInterval int
	BoxscoreTimeout  time.Duration
	// CircuitCooldown is how long a game log fetch waits before its one retry
	// when the provider circuit breaker is open
	CircuitCooldown time.Duration
}

// JobOptionsFromConfig maps application configuration onto job options
func JobOptionsFromConfig(cfg *config.Config) JobOptions {
	return JobOptions{
		TeamIDs:          cfg.Provider.TeamIDs,
		Season:           cfg.Provider.Season,
		Windows:          cfg.Job.Windows,
		ProgressInterval: cfg.Job.ProgressInterval,
		BoxscoreTimeout:  cfg.Provider.BoxscoreTimeout(),
		CircuitCooldown:  time.Duration(cfg.Provider.CircuitBreakerCooldownSeconds) * time.Second,
	}
}

// SplitsJob computes splits and streaks for every active hitter and checkpoints them by run date
type SplitsJob struct {
	provider   datasource.StatsProvider
	store      checkpoint.Store
	normalizer *GameNormalizer
	tagger     *HandednessTagger
	logger     *logger.JobLogger
	opts       JobOptions
}

type hitterOutcome struct {
	gameLogFailed bool
	games         int
	dropped       int
	untagged      int
	duration      time.Duration
}

// NewSplitsJob creates a new splits job
func NewSplitsJob(provider datasource.StatsProvider, store checkpoint.Store, opts JobOptions, log *logrus.Logger) *SplitsJob {
	if log == nil {
		log = logger.Discard()
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if len(opts.Windows) == 0 {
		opts.Windows = splits.DefaultWindows
	}
	if opts.CircuitCooldown <= 0 {
		opts.CircuitCooldown = datasource.DefaultHTTPClientConfig().CircuitBreakerCooldown
	}

	jobLogger := logger.NewJobLogger(log)
	return &SplitsJob{
		provider:   provider,
		store:      store,
		normalizer: NewGameNormalizer(log),
		tagger:     NewHandednessTagger(provider, opts.BoxscoreTimeout, jobLogger),
		logger:     jobLogger,
		opts:       opts,
	}
}

// Run processes every active hitter not yet checkpointed for runDate and persists the result.
// Only checkpoint I/O and roster listing failures are fatal. A cancelled context stops the
// run without persisting, leaving the last saved checkpoint as the recovery point.
func (j *SplitsJob) Run(ctx context.Context, runDate time.Time) (*JobReport, error) {
	report := NewJobReport(runDate)
	runDate = report.RunDate
	log := j.logger.WithRun(report.RunID.String(), runDate.Format(models.RunDateLayout))

	completed, err := j.store.CompletedIDs(ctx, runDate)
	if err != nil {
		report.Finish(RunStatusFailure)
		return report, fmt.Errorf("%w: %w", models.ErrCheckpointLoad, err)
	}
	report.Resumed = len(completed) > 0

	hitters, err := j.provider.ListActiveHitters(ctx, j.opts.TeamIDs)
	if err != nil {
		report.Finish(RunStatusFailure)
		return report, fmt.Errorf("failed to list active hitters: %w", err)
	}
	if len(hitters) == 0 {
		report.Finish(RunStatusFailure)
		return report, models.ErrNoHitters
	}

	report.TotalHitters = len(hitters)
	log.LogRunStart(len(hitters), len(completed), report.Resumed)

	cp := models.NewCheckpoint(runDate)
	for i, hitter := range hitters {
		if err := ctx.Err(); err != nil {
			report.Finish(RunStatusCancelled)
			return report, fmt.Errorf("splits job interrupted after %d hitters: %w", i, err)
		}

		idx := i + 1
		key := models.HitterKey(hitter.ID)
		if _, done := completed[key]; done || cp.Has(key) {
			if j.isProgressStep(idx, len(hitters)) {
				log.LogHitterSkipped(idx, len(hitters), hitter.ID, hitter.Name)
			}
			report.RecordSkipped()
			continue
		}

		if j.isProgressStep(idx, len(hitters)) {
			log.LogProgress(idx, len(hitters), hitter.ID, hitter.Name)
		}

		var outcome hitterOutcome
		cp, outcome = j.processHitter(ctx, cp, hitter, runDate)
		if err := ctx.Err(); err != nil {
			report.Finish(RunStatusCancelled)
			return report, fmt.Errorf("splits job interrupted during hitter %d: %w", hitter.ID, err)
		}
		report.RecordProcessed(outcome)
	}

	if cp.Len() > 0 {
		size, err := j.store.Save(ctx, cp)
		if err != nil {
			report.Finish(RunStatusFailure)
			return report, fmt.Errorf("%w: %w", models.ErrCheckpointSave, err)
		}
		report.CheckpointSize = size
		report.Persisted = true
	} else {
		report.CheckpointSize = len(completed)
	}

	report.Finish(RunStatusSuccess)
	log.LogRunComplete(report.Processed, report.Skipped, report.GameLogFailures, report.UntaggedGames, report.CheckpointSize, report.Duration)

	return report, nil
}

// ProcessHitter computes one hitter's record and returns the checkpoint with it added.
// It never fails: a game log that cannot be fetched yields a record of zero games.
func (j *SplitsJob) ProcessHitter(ctx context.Context, cp *models.Checkpoint, hitter datasource.Hitter, runDate time.Time) *models.Checkpoint {
	cp, _ = j.processHitter(ctx, cp, hitter, runDate)
	return cp
}

// BuildHitterRecord computes one hitter's record without touching any checkpoint
func (j *SplitsJob) BuildHitterRecord(ctx context.Context, hitter datasource.Hitter, runDate time.Time) *models.HitterAggregateRecord {
	rec, _ := j.buildRecord(ctx, hitter, models.TruncateToDate(runDate))
	return rec
}

func (j *SplitsJob) processHitter(ctx context.Context, cp *models.Checkpoint, hitter datasource.Hitter, runDate time.Time) (*models.Checkpoint, hitterOutcome) {
	rec, outcome := j.buildRecord(ctx, hitter, runDate)
	cp.Put(rec)
	return cp, outcome
}

func (j *SplitsJob) buildRecord(ctx context.Context, hitter datasource.Hitter, runDate time.Time) (*models.HitterAggregateRecord, hitterOutcome) {
	start := time.Now()
	var outcome hitterOutcome

	entries, err := j.fetchGameLog(ctx, hitter, j.seasonFor(runDate))
	if err != nil {
		outcome.gameLogFailed = true
		j.logger.LogGameLogFailure(hitter.ID, hitter.Name, err)
		entries = nil
	}

	games, dropped := j.normalizer.NormalizeAll(hitter.ID, entries)
	summary := j.tagger.TagAll(ctx, hitter.ID, games)

	rec := splits.BuildRecord(hitter.Name, hitter.ID, games, runDate, j.opts.Windows)

	outcome.games = len(games)
	outcome.dropped = dropped
	outcome.untagged = summary.Unresolved
	outcome.duration = time.Since(start)
	return rec, outcome
}

// fetchGameLog retries once after the cooldown when the provider circuit breaker is open
func (j *SplitsJob) fetchGameLog(ctx context.Context, hitter datasource.Hitter, season int) ([]datasource.RawGameEntry, error) {
	entries, err := j.provider.FetchGameLog(ctx, hitter.ID, season)
	if !errors.Is(err, datasource.ErrCircuitOpen) {
		return entries, err
	}

	j.logger.LogCircuitOpenWait(hitter.ID, hitter.Name, j.opts.CircuitCooldown)
	timer := time.NewTimer(j.opts.CircuitCooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return j.provider.FetchGameLog(ctx, hitter.ID, season)
}

func (j *SplitsJob) seasonFor(runDate time.Time) int {
	if j.opts.Season > 0 {
		return j.opts.Season
	}
	return runDate.Year()
}

func (j *SplitsJob) isProgressStep(idx, total int) bool {
	return idx == 1 || idx%j.opts.ProgressInterval == 0 || idx == total
}
