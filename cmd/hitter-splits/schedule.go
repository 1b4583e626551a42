package main

import (
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/hitter-splits/internal/checkpoint"
	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/health"
	"github.com/yourusername/hitter-splits/internal/scheduler"
	"github.com/yourusername/hitter-splits/internal/service"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the splits job on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			provider, err := datasource.NewFactory(cfg.Provider, appLog).NewStatsProvider()
			if err != nil {
				return err
			}

			store, err := checkpoint.NewStore(ctx, cfg, appLog)
			if err != nil {
				return err
			}
			defer store.Close()

			job := service.NewSplitsJob(provider, store, service.JobOptionsFromConfig(cfg), appLog)
			sched := scheduler.NewScheduler(job, appLog)
			if err := sched.ScheduleDailyRun(cfg.Job.Schedule); err != nil {
				return err
			}

			healthCfg := health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Commit:      GitCommit,
				Port:        strconv.Itoa(cfg.Metrics.Port),
				Logger:      appLog,
				Runs:        sched,
			}
			if pinger, ok := store.(health.Pinger); ok {
				healthCfg.Store = pinger
			}
			healthServer := health.NewServer(healthCfg)
			if cfg.Metrics.Enabled {
				if err := healthServer.Start(ctx); err != nil {
					return err
				}
			}

			if err := sched.Start(); err != nil {
				return err
			}
			healthServer.SetReady(true)

			appLog.WithFields(logrus.Fields{
				"cron":     cfg.Job.Schedule,
				"next_run": sched.GetNextRun(),
			}).Info("Waiting for scheduled runs")

			if cfg.Job.RunOnStart {
				if err := sched.RunInBackground(); err != nil {
					return err
				}
			}

			<-ctx.Done()
			appLog.Info("Shutdown signal received")
			healthServer.SetReady(false)
			return sched.Stop()
		},
	}
}
