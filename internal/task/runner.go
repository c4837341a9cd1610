package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunnerStopped is returned by Submit after Stop has been called.
var ErrRunnerStopped = errors.New("task runner is stopped")

// ErrUnknownTaskType is returned when no factory is registered for a persisted task type.
var ErrUnknownTaskType = errors.New("unknown task type")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner persists submitted tasks and executes them on a worker pool.
type TaskRunner struct {
	store     TaskStore
	queue     *TaskQueue
	pool      *WorkerPool
	factories map[string]Factory
	config    TaskRunnerConfig
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	ctx, cancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:     store,
		queue:     queue,
		pool:      pool,
		factories: make(map[string]Factory),
		config:    config,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	pool.SetErrorHandler(func(task Task, err error) {
		logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	})
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// RegisterFactory makes tasks of taskType recoverable after a restart.
// Register every type before Start.
func (r *TaskRunner) RegisterFactory(taskType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = factory
}

// Factory returns the factory registered for taskType.
func (r *TaskRunner) Factory(taskType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[taskType]
	return f, ok
}

// Submit persists task as pending and queues it. When the queue is full the
// task stays pending in the store and is picked up on the next recovery.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	r.mu.RLock()
	stopped := r.stopped
	r.mu.RUnlock()
	if stopped {
		return ErrRunnerStopped
	}

	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", task.ID(), err)
	}
	return nil
}

// Start recovers unfinished tasks and starts the workers and the stuck
// task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start(r.processTask)

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop rejects further submissions, waits for running tasks to finish and
// closes the queue. Queued tasks that did not run remain pending in the store.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	r.pool.Stop()
	r.queue.Close()
}

// Recover loads pending and interrupted processing tasks from the store and
// queues them again.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(ctx, rec, false)
	}
	for _, rec := range processing {
		r.requeue(ctx, rec, true)
	}
	return nil
}

// requeue rebuilds a task from rec and queues it. Records without a
// registered factory are marked failed.
func (r *TaskRunner) requeue(ctx context.Context, rec Record, reset bool) {
	log := r.logger.With("task_id", rec.ID, "task_type", rec.Type)

	task, err := r.rebuild(rec)
	if err != nil {
		log.Error("failed to rebuild task", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark task as failed", "error", updateErr)
		}
		return
	}

	if reset {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "Reset after recovery"); err != nil {
			log.Error("failed to reset processing task status", "error", err)
			return
		}
	}

	if err := r.queue.Enqueue(task); err != nil {
		log.Error("failed to requeue task", "error", err)
	}
}

func (r *TaskRunner) rebuild(rec Record) (Task, error) {
	factory, ok := r.Factory(rec.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, rec.Type)
	}
	return factory(rec.ID, rec.Payload)
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) error {
	statusCtx := context.Background()
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return nil
	}

	logger.Debug("processing task")
	start := time.Now()

	if err := task.Execute(ctx); err != nil {
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		return err
	}

	logger.Info("task completed successfully", "duration_ms", time.Since(start).Milliseconds())
	if err := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusCompleted, ""); err != nil {
		logger.Error("failed to update task status to completed", "error", err)
	}
	return nil
}

// stuckTaskMonitor periodically resets tasks that have been processing for
// longer than StuckTaskAge and queues them again.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	if r.config.StuckTaskAge <= 0 {
		return
	}

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}
			if len(stuck) > 0 {
				r.logger.Info("found stuck tasks", "count", len(stuck))
			}
			for _, rec := range stuck {
				r.requeue(ctx, rec, true)
			}
		}
	}
}
