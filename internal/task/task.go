package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a persisted task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Registered task types.
const (
	// TaskTypeImageCleanup deletes image files released by item updates and deletes.
	TaskTypeImageCleanup = "image_cleanup"
)

// Task is one unit of background work. Payload is the JSON persisted with
// the task and handed back to its Factory on recovery.
type Task interface {
	ID() uuid.UUID
	Type() string
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Record is the persisted form of a task.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Factory rebuilds an executable task of one type from its persisted
// id and payload.
type Factory func(id uuid.UUID, payload []byte) (Task, error)

// TaskQueueReader is the consuming side of the queue used by workers.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producing side of the queue. Enqueue never blocks;
// it fails with ErrQueueFull or ErrQueueClosed.
type TaskQueueWriter interface {
	Enqueue(task Task) error
	Close()
}

// TaskStore persists tasks so that work queued before a restart is
// recovered. It is implemented by sqlstore.TaskStore.
type TaskStore interface {
	// SaveTask records task as pending.
	SaveTask(ctx context.Context, task Task) error
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)

	// GetPendingTasks returns pending tasks, oldest first.
	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks returns tasks stuck in processing for at least
	// olderThan. Zero returns all of them.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)

	WithTx(tx *sql.Tx) TaskStore
}
