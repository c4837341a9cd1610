package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// FileRemover deletes stored files by their public relative path.
// Removing a file that does not exist must not be an error.
type FileRemover interface {
	Delete(ctx context.Context, path string) error
}

// ImageCleanupPayload is the JSON payload of an image cleanup task.
type ImageCleanupPayload struct {
	Paths []string `json:"paths"`
}

// ImageCleanupTask deletes image files that no item references anymore.
type ImageCleanupTask struct {
	id      uuid.UUID
	payload ImageCleanupPayload
	raw     []byte
	status  TaskStatus
	remover FileRemover
	logger  *slog.Logger
}

// NewImageCleanupTask creates a cleanup task for paths.
func NewImageCleanupTask(id uuid.UUID, paths []string, remover FileRemover, logger *slog.Logger) (*ImageCleanupTask, error) {
	if remover == nil {
		return nil, fmt.Errorf("file remover cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	payload := ImageCleanupPayload{Paths: paths}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image cleanup payload: %w", err)
	}
	return &ImageCleanupTask{
		id:      id,
		payload: payload,
		raw:     raw,
		status:  TaskStatusPending,
		remover: remover,
		logger:  logger.With("component", "image_cleanup_task", "task_id", id),
	}, nil
}

// NewImageCleanupFactory returns a Factory that rebuilds image cleanup
// tasks from their JSON payload.
func NewImageCleanupFactory(remover FileRemover, logger *slog.Logger) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		var p ImageCleanupPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid image cleanup payload: %w", err)
		}
		return NewImageCleanupTask(id, p.Paths, remover, logger)
	}
}

// ID implements Task.
func (t *ImageCleanupTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *ImageCleanupTask) Type() string { return TaskTypeImageCleanup }

// Payload implements Task.
func (t *ImageCleanupTask) Payload() []byte { return t.raw }

// Status implements Task.
func (t *ImageCleanupTask) Status() TaskStatus { return t.status }

// Paths returns the files this task removes.
func (t *ImageCleanupTask) Paths() []string { return t.payload.Paths }

// Execute removes every path, continuing past failures, and returns all
// failures joined.
func (t *ImageCleanupTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	var errs []error
	for _, p := range t.payload.Paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := t.remover.Delete(ctx, p); err != nil {
			t.logger.Warn("failed to remove image", "path", p, "error", err)
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
			continue
		}
		t.logger.Debug("image removed", "path", p)
	}

	if err := errors.Join(errs...); err != nil {
		t.status = TaskStatusFailed
		return err
	}
	t.status = TaskStatusCompleted
	return nil
}
