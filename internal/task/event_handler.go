package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/events"
)

// Submitter accepts tasks for background execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// FactoryProvider looks up the factory for a task type. *TaskRunner implements it.
type FactoryProvider interface {
	Factory(taskType string) (Factory, bool)
}

// TaskFactoryEventHandler implements events.EventHandler by turning task
// request events into tasks with the registered factory and submitting them.
type TaskFactoryEventHandler struct {
	factories FactoryProvider
	submitter Submitter
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that builds tasks
// with factories and submits them to submitter.
func NewTaskFactoryEventHandler(
	factories FactoryProvider,
	submitter Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFactoryEventHandler{
		factories: factories,
		submitter: submitter,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent builds a task for the event type and submits it. Events of
// a type with no registered factory are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	factory, ok := h.factories.Factory(event.Type)
	if !ok {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	task, err := factory(uuid.New(), event.Payload)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("task created and submitted",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
