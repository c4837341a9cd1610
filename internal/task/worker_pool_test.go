package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWorkerPool_ProcessesTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewTaskQueue(10, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 3}, discardLogger())

	var processed atomic.Int32
	pool.Start(func(ctx context.Context, task Task, workerID int) error {
		processed.Add(1)
		return task.Execute(ctx)
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(newMessageTask("task")))
	}

	assert.Eventually(t, func() bool { return processed.Load() == 5 }, time.Second, 5*time.Millisecond)

	pool.Stop()
	pool.Stop()
	q.Close()
}

func TestWorkerPool_ErrorHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewTaskQueue(1, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, discardLogger())

	boom := errors.New("boom")
	var (
		mu     sync.Mutex
		failed []error
	)
	pool.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	})
	pool.Start(func(ctx context.Context, task Task, workerID int) error {
		return boom
	})

	require.NoError(t, q.Enqueue(newMessageTask("fails")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failed) == 1
	}, time.Second, 5*time.Millisecond)

	pool.Stop()
	q.Close()
	assert.ErrorIs(t, failed[0], boom)
}

func TestWorkerPool_ExitsWhenQueueCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewTaskQueue(1, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, discardLogger())
	pool.Start(func(context.Context, Task, int) error { return nil })

	q.Close()
	pool.Stop()
}
