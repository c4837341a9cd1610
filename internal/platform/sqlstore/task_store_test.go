package sqlstore_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/phrazzld/lostfound-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messageTask is a minimal task.Task carrying a JSON message payload.
type messageTask struct {
	id      uuid.UUID
	payload []byte
}

func newMessageTask(t *testing.T, message string) *messageTask {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"message": message})
	require.NoError(t, err)
	return &messageTask{id: uuid.New(), payload: payload}
}

func (m *messageTask) ID() uuid.UUID                   { return m.id }
func (m *messageTask) Type() string                    { return "message" }
func (m *messageTask) Payload() []byte                 { return m.payload }
func (m *messageTask) Status() task.TaskStatus         { return task.TaskStatusPending }
func (m *messageTask) Execute(_ context.Context) error { return nil }

func TestTaskStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	first := newMessageTask(t, "first")
	second := newMessageTask(t, "second")
	require.NoError(t, f.tasks.SaveTask(ctx, first))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, f.tasks.SaveTask(ctx, second))

	pending, err := f.tasks.GetPendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID(), pending[0].ID)
	assert.Equal(t, "message", pending[0].Type)
	assert.JSONEq(t, `{"message":"first"}`, string(pending[0].Payload))

	t.Run("status transitions", func(t *testing.T) {
		require.NoError(t, f.tasks.UpdateTaskStatus(ctx, first.ID(), task.TaskStatusProcessing, ""))

		processing, err := f.tasks.GetProcessingTasks(ctx, 0)
		require.NoError(t, err)
		require.Len(t, processing, 1)
		assert.Equal(t, first.ID(), processing[0].ID)

		stuck, err := f.tasks.GetProcessingTasks(ctx, time.Hour)
		require.NoError(t, err)
		assert.Empty(t, stuck)

		require.NoError(t, f.tasks.UpdateTaskStatus(ctx, first.ID(), task.TaskStatusFailed, "file busy"))
		rec, err := f.tasks.GetTask(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, task.TaskStatusFailed, rec.Status)
		assert.Equal(t, "file busy", rec.ErrorMessage)
	})

	t.Run("unknown task", func(t *testing.T) {
		assert.NoError(t, f.tasks.UpdateTaskStatus(ctx, uuid.New(), task.TaskStatusCompleted, ""))
		_, err := f.tasks.GetTask(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := f.tasks.SaveTask(ctx, second)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}
