package task

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/google/uuid"
)

// stubTask is a simple implementation of the Task interface for testing
type stubTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error

	executions atomic.Int32
}

// newStubTask creates a new stubTask with the given ID and type
func newStubTask(id uuid.UUID, taskType string, payload []byte) *stubTask {
	return &stubTask{
		TaskID:      id,
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(ctx context.Context) error { return nil },
	}
}

// newMessageTask creates a stubTask of type "stub" with a JSON message payload.
func newMessageTask(message string) *stubTask {
	data, _ := json.Marshal(map[string]string{"message": message})
	return newStubTask(uuid.New(), "stub", data)
}

// ID returns the task's unique identifier
func (t *stubTask) ID() uuid.UUID { return t.TaskID }

// Type returns the task type identifier
func (t *stubTask) Type() string { return t.TaskType }

// Payload returns the task data as a byte slice
func (t *stubTask) Payload() []byte { return t.TaskPayload }

// Status returns the current task status
func (t *stubTask) Status() TaskStatus { return t.TaskStatus }

// Execute runs ExecuteFn and counts the call.
func (t *stubTask) Execute(ctx context.Context) error {
	t.executions.Add(1)
	return t.ExecuteFn(ctx)
}

// Executions returns how many times Execute ran.
func (t *stubTask) Executions() int {
	return int(t.executions.Load())
}
