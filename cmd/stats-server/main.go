// Package main provides the entry point for the caching stats server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/hitter-splits/internal/checkpoint"
	"github.com/yourusername/hitter-splits/internal/config"
	"github.com/yourusername/hitter-splits/internal/datasource"
	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/metrics"
	"github.com/yourusername/hitter-splits/internal/statsserver"
)

var (
	configFile string
	envFile    string
	port       int
)

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before configuration")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides stats_server.port and $PORT)")
}

var rootCmd = &cobra.Command{
	Use:          "stats-server",
	Short:        "Serve cached MLB team and player lookups and the latest hitter splits",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func serve(ctx context.Context) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.LoadWithDefaults(config.ResolvePath(configFile))
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	client, err := datasource.NewFactory(cfg.Provider, appLog).NewMLBStatsClient()
	if err != nil {
		return err
	}

	serverCfg := statsserver.Config{
		Port:         listenPort(cfg),
		Directory:    client,
		TTLs:         statsserver.TTLsFromConfig(cfg.StatsServer),
		CacheCleanup: time.Duration(cfg.StatsServer.CleanupMinutes) * time.Minute,
		Logger:       appLog,
	}

	// Splits are served only when the checkpoint store can be opened
	store, err := checkpoint.NewStore(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Warn("Checkpoint store unavailable, /hitters/{id}/splits disabled")
	} else {
		defer store.Close()
		serverCfg.Records = store
	}

	server := statsserver.NewServer(serverCfg)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.WithFields(logrus.Fields{"port": serverCfg.Port}).Info("Stats server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func listenPort(cfg *config.Config) string {
	if port > 0 {
		return strconv.Itoa(port)
	}
	if env := os.Getenv("PORT"); env != "" {
		return env
	}
	return strconv.Itoa(cfg.StatsServer.Port)
}
