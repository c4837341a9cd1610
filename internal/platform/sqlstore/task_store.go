package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/phrazzld/lostfound-api/internal/task"
)

const taskColumns = `id, type, payload, status, error_message, created_at, updated_at`

// TaskStore implements task.TaskStore.
type TaskStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewTaskStore creates a TaskStore on db for the given dialect.
func NewTaskStore(db store.DBTX, d Dialect) *TaskStore {
	return &TaskStore{db: db, dialect: d}
}

var _ task.TaskStore = (*TaskStore)(nil)

// WithTx implements task.TaskStore.
func (s *TaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &TaskStore{db: tx, dialect: s.dialect}
}

// SaveTask persists t as pending.
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	now := time.Now().UTC()
	query := s.dialect.Rebind(`
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, NULL, ?, ?)`)

	if _, err := s.db.ExecContext(ctx, query,
		t.ID(), t.Type(), string(t.Payload()), string(task.TaskStatusPending), now, now,
	); err != nil {
		logger.FromContext(ctx).Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}
	return nil
}

// UpdateTaskStatus sets the status and error message of a task. Updating
// an unknown task is a no-op.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	log := logger.FromContext(ctx)

	var msg sql.NullString
	if errorMsg != "" {
		msg = sql.NullString{String: errorMsg, Valid: true}
	}

	query := s.dialect.Rebind(`UPDATE tasks SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, string(status), msg, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Warn("no task found with ID to update status", slog.String("task_id", taskID.String()))
			return nil
		}
		return err
	}
	return nil
}

// GetTask implements task.TaskStore.
func (s *TaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	query := s.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	rec, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return rec, nil
}

// GetPendingTasks implements task.TaskStore.
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Record, error) {
	return s.byStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.
func (s *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Record, error) {
	return s.byStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *TaskStore) byStatus(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Record, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = ?`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at < ?`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []task.Record
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return records, nil
}

func scanTask(row rowScanner) (*task.Record, error) {
	var (
		rec     task.Record
		status  string
		payload []byte
		errMsg  sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Type, &payload, &status, &errMsg, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Payload = payload
	rec.Status = task.TaskStatus(status)
	rec.ErrorMessage = errMsg.String
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
