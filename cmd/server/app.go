package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lostfound-api/internal/config"
	"github.com/phrazzld/lostfound-api/internal/events"
	"github.com/phrazzld/lostfound-api/internal/platform/filestore"
	"github.com/phrazzld/lostfound-api/internal/platform/mailer"
	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
	"github.com/phrazzld/lostfound-api/internal/service"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/phrazzld/lostfound-api/internal/task"
)

// stuckTaskAge is how long a task may stay in processing before the
// runner resets it.
const stuckTaskAge = 30 * time.Minute

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	dialect sqlstore.Dialect

	userStore     store.UserStore
	itemStore     store.ItemStore
	categoryStore store.CategoryStore
	codeStore     store.AuthCodeStore
	taskStore     task.TaskStore

	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	mailer     mailer.Mailer
	files      *filestore.Local
	images     *filestore.Images

	listingService  service.ListingService
	categoryService service.CategoryService
	itemService     service.ItemService
	accountService  service.AccountService
	profileService  service.ProfileService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires stores, services and the background task runner
// around an open, migrated database. Nothing is started.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		dialect: dialect,
	}

	app.userStore = sqlstore.NewUserStore(db, dialect)
	app.itemStore = sqlstore.NewItemStore(db, dialect)
	app.categoryStore = sqlstore.NewCategoryStore(db, dialect)
	app.codeStore = sqlstore.NewAuthCodeStore(db, dialect)
	app.taskStore = sqlstore.NewTaskStore(db, dialect)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.mailer, err = mailer.New(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app.files, err = filestore.NewLocal(cfg.Storage.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	app.images = filestore.NewImages(app.files,
		filestore.NewProcessor(cfg.Storage.MaxImageDimension), logger)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: stuckTaskAge,
	}, logger)
	app.taskRunner.RegisterFactory(task.TaskTypeImageCleanup,
		task.NewImageCleanupFactory(app.images, logger))

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(
		task.NewTaskFactoryEventHandler(app.taskRunner, app.taskRunner, logger))

	if err := app.initServices(); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

func (app *application) initServices() error {
	var err error

	app.listingService, err = service.NewListingService(
		app.itemStore, app.categoryStore, app.userStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create listing service: %w", err)
	}

	app.categoryService, err = service.NewCategoryService(
		app.db, app.categoryStore, app.itemStore, service.DefaultCountParallelism, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create category service: %w", err)
	}

	app.itemService, err = service.NewItemService(
		app.db, app.itemStore, app.categoryStore, app.images, app.eventEmitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create item service: %w", err)
	}

	app.accountService, err = service.NewAccountService(service.AccountDeps{
		DB:           app.db,
		Users:        app.userStore,
		Codes:        app.codeStore,
		Hasher:       app.hasher,
		Tokens:       app.jwtService,
		Mailer:       app.mailer,
		CodeLifetime: time.Duration(app.config.Auth.CodeLifetimeMinutes) * time.Minute,
		Logger:       app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create account service: %w", err)
	}

	app.profileService, err = service.NewProfileService(
		app.db, app.userStore, app.listingService, app.hasher, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create profile service: %w", err)
	}

	return nil
}

// start seeds categories, purges expired codes and starts the task runner.
func (app *application) start(ctx context.Context) error {
	created, err := app.categoryService.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if created > 0 {
		app.logger.Info("default categories created", "count", created)
	}

	// Purge failures are logged, not fatal.
	if purged, err := app.accountService.PurgeExpiredCodes(ctx); err != nil {
		app.logger.Warn("failed to purge expired verification codes", "error", err)
	} else if purged > 0 {
		app.logger.Info("expired verification codes purged", "count", purged)
	}

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	return nil
}

// Run starts the application and serves HTTP until ctx is canceled or a
// shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.start(ctx); err != nil {
		return err
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
