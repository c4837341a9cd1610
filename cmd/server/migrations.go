package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
	"github.com/urfave/cli/v2"
)

func migrateSubcommand(command, usage string) *cli.Command {
	return &cli.Command{
		Name:  command,
		Usage: usage,
		Action: func(c *cli.Context) error {
			return migrateCommand(c, command)
		},
	}
}

// migrateCommand runs one goose command against the configured database.
func migrateCommand(c *cli.Context, command string) error {
	cfg, logger, err := loadAppConfig(c)
	if err != nil {
		return err
	}

	db, dialect, err := setupAppDatabase(c.Context, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	if err := sqlstore.Migrate(c.Context, db, dialect, command, logger); err != nil {
		return err
	}

	if command == sqlstore.MigrateVersion {
		version, err := sqlstore.SchemaVersion(c.Context, db, dialect)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "schema version %d\n", version)
	}
	return nil
}

// migrateUp applies pending migrations before the application starts.
func migrateUp(ctx context.Context, db *sql.DB, dialect sqlstore.Dialect, logger *slog.Logger) error {
	if err := sqlstore.Migrate(ctx, db, dialect, sqlstore.MigrateUp, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
