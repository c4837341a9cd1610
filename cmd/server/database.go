package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lostfound-api/internal/config"
	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
)

// setupAppDatabase opens and pings the configured database.
func setupAppDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*sql.DB, sqlstore.Dialect, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	db, err := sqlstore.Open(ctx, dialect, cfg.URL, cfg.MaxOpenConns)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	logger.Info("database connection established", "driver", string(dialect))
	return db, dialect, nil
}
