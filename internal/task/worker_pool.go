package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool runs a fixed number of goroutines that drain a TaskQueueReader
// until it is closed or the pool is stopped.
type WorkerPool struct {
	taskQueue   TaskQueueReader
	workerCount int

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler, when set, sees every failed task after it is logged.
	errorHandler func(task Task, err error)

	startOnce sync.Once
	stopOnce  sync.Once
}

// WorkerPoolConfig sizes the pool. Non-positive counts become 1.
type WorkerPoolConfig struct {
	WorkerCount int
}

// DefaultWorkerPoolConfig matches the task.worker_count default.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// NewWorkerPool builds a stopped pool; call Start to launch the workers.
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Each worker passes dequeued tasks to process,
// reporting its error (if any) to the error handler. Workers exit when the
// queue channel is closed or Stop is called. Calling Start twice is a no-op.
func (p *WorkerPool) Start(process func(ctx context.Context, task Task, workerID int) error) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i, process)
		}
		p.logger.Info("worker pool started", "worker_count", p.workerCount)
	})
}

// Stop signals all workers to exit and waits for in-flight tasks to finish.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int, process func(ctx context.Context, task Task, workerID int) error) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	tasks := p.taskQueue.GetChannel()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			if err := process(p.ctx, task, id); err != nil && p.errorHandler != nil {
				p.errorHandler(task, err)
			}
		}
	}
}
