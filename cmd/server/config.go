package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/lostfound-api/internal/config"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/urfave/cli/v2"
)

// loadAppConfig loads the configuration named by the --config flag and
// sets up the default logger from it.
func loadAppConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"mail_driver", cfg.Mail.Driver)
	l.Debug("auth configuration", "jwt_secret_present", cfg.Auth.JWTSecret != "")

	return cfg, l, nil
}
