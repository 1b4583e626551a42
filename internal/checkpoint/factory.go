package checkpoint

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/config"
	"github.com/yourusername/hitter-splits/internal/database"
)

// NewStore opens the checkpoint store selected by the configuration
func NewStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Store, error) {
	switch cfg.Checkpoint.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Checkpoint.OutputDir, log)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.Checkpoint.SQLitePath, log)
	case config.BackendPostgres:
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres checkpoint store: %w", err)
		}
		return NewPostgresStore(db, log), nil
	default:
		return nil, fmt.Errorf("unsupported checkpoint backend: %s", cfg.Checkpoint.Backend)
	}
}
