package task

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memTaskStore is an in-memory TaskStore for tests.
type memTaskStore struct {
	mutex   sync.RWMutex
	records map[uuid.UUID]*Record

	// SaveFn and UpdateStatusFn override the default behaviour when set.
	SaveFn         func(ctx context.Context, task Task) error
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// newMemTaskStore creates an empty memTaskStore.
func newMemTaskStore() *memTaskStore {
	return &memTaskStore{records: make(map[uuid.UUID]*Record)}
}

// SaveTask implements TaskStore.
func (s *memTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}
	s.Put(Record{
		ID:      task.ID(),
		Type:    task.Type(),
		Payload: task.Payload(),
		Status:  TaskStatusPending,
	})
	return nil
}

// Put stores rec directly, e.g. to simulate tasks left over from a previous run.
func (s *memTaskStore) Put(rec Record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	s.records[rec.ID] = &rec
}

// UpdateTaskStatus implements TaskStore. Unknown ids are a no-op.
func (s *memTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, ok := s.records[taskID]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.ErrorMessage = errorMsg
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// GetTask implements TaskStore.
func (s *memTaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rec, ok := s.records[taskID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

// GetPendingTasks implements TaskStore.
func (s *memTaskStore) GetPendingTasks(ctx context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

// GetProcessingTasks implements TaskStore.
func (s *memTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

// Status returns the stored status of a task, or "" when unknown.
func (s *memTaskStore) Status(taskID uuid.UUID) TaskStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if rec, ok := s.records[taskID]; ok {
		return rec.Status
	}
	return ""
}

// Records returns a snapshot of all records, oldest first.
func (s *memTaskStore) Records() []Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var out []Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && !rec.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// WithTx implements TaskStore; the in-memory store ignores transactions.
func (s *memTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}
