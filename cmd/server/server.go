package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
)

// startHTTPServer serves router until ctx is canceled, SIGINT or SIGTERM
// arrives, or the listener fails, then shuts down gracefully and releases
// the application resources.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-serverCtx.Done():
		app.logger.Info("shutting down server")
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("server failed", "error", err)
			runErr = err
		}
	}

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown failed: %w", err))
	}

	app.cleanup()

	app.logger.Info("server shutdown completed")
	return runErr
}

// openApplication loads configuration, opens the database and migrates
// it, and wires the application.
func openApplication(c *cli.Context) (*application, error) {
	cfg, logger, err := loadAppConfig(c)
	if err != nil {
		return nil, err
	}

	db, dialect, err := setupAppDatabase(c.Context, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := migrateUp(c.Context, db, dialect, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	app, err := newApplication(cfg, logger, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return app, nil
}

func serveCommand(c *cli.Context) error {
	app, err := openApplication(c)
	if err != nil {
		return err
	}
	return app.Run(c.Context)
}

func seedCommand(c *cli.Context) error {
	app, err := openApplication(c)
	if err != nil {
		return err
	}
	defer app.cleanup()

	created, err := app.categoryService.Bootstrap(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d categories created\n", created)
	return nil
}

func purgeCodesCommand(c *cli.Context) error {
	app, err := openApplication(c)
	if err != nil {
		return err
	}
	defer app.cleanup()

	purged, err := app.accountService.PurgeExpiredCodes(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d expired codes purged\n", purged)
	return nil
}
