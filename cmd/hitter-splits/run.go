package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/hitter-splits/internal/checkpoint"
	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/models"
	"github.com/yourusername/hitter-splits/internal/service"
)

func newRunCmd() *cobra.Command {
	var (
		date       string
		hitterID   int64
		hitterName string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the splits job once",
		Long: `Runs the splits job for one run date, resuming from the checkpoint of that date if one exists.
With --hitter, computes a single hitter's record and prints it without touching the checkpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runDate, err := parseRunDate(date)
			if err != nil {
				return err
			}

			provider, err := datasource.NewFactory(cfg.Provider, appLog).NewStatsProvider()
			if err != nil {
				return err
			}
			opts := service.JobOptionsFromConfig(cfg)

			if hitterID > 0 {
				job := service.NewSplitsJob(provider, nil, opts, appLog)
				rec := job.BuildHitterRecord(cmd.Context(), datasource.Hitter{ID: hitterID, Name: hitterName}, runDate)
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			store, err := checkpoint.NewStore(cmd.Context(), cfg, appLog)
			if err != nil {
				return err
			}
			defer store.Close()

			job := service.NewSplitsJob(provider, store, opts, appLog)
			report, err := job.Run(cmd.Context(), runDate)
			if report != nil {
				fmt.Println(report.String())
			}
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Run date as YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&hitterID, "hitter", 0, "Compute a single hitter by MLBAM id and print the record")
	cmd.Flags().StringVar(&hitterName, "name", "", "Display name for --hitter")

	return cmd
}

func parseRunDate(raw string) (time.Time, error) {
	if raw == "" {
		return models.TruncateToDate(time.Now()), nil
	}
	d, err := time.Parse(models.RunDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", raw)
	}
	return d, nil
}
