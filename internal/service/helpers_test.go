package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/events"
	"github.com/phrazzld/lostfound-api/internal/platform/mailer"
	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
	"github.com/phrazzld/lostfound-api/internal/task"
	"github.com/phrazzld/lostfound-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

// env wires real sqlite-backed stores with recording fakes for side effects.
type env struct {
	db         *testdb.DB
	users      *sqlstore.UserStore
	categories *sqlstore.CategoryStore
	items      *sqlstore.ItemStore
	codes      *sqlstore.AuthCodeStore
	discarded  *recordingDiscarder
	emitted    *recordingEmitter
	mail       *recordingMailer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.New(t)
	return &env{
		db:         db,
		users:      sqlstore.NewUserStore(db.DB, db.Dialect),
		categories: sqlstore.NewCategoryStore(db.DB, db.Dialect),
		items:      sqlstore.NewItemStore(db.DB, db.Dialect),
		codes:      sqlstore.NewAuthCodeStore(db.DB, db.Dialect),
		discarded:  &recordingDiscarder{},
		emitted:    &recordingEmitter{},
		mail:       &recordingMailer{},
	}
}

func (e *env) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser("Ann", "Lee", email, "$2a$10$hash")
	require.NoError(t, err)
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := domain.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, e.categories.CreateMany(context.Background(), []*domain.Category{c}))
	return c
}

func (e *env) item(
	t *testing.T,
	kind domain.Kind,
	owner *domain.User,
	cat *domain.Category,
	name string,
	eventDate, createdAt time.Time,
	images ...string,
) *domain.Item {
	t.Helper()
	it, err := domain.NewItem(kind, owner.ID, name, "", cat.ID, eventDate, images)
	require.NoError(t, err)
	it.CreatedAt = createdAt.UTC()
	it.UpdatedAt = createdAt.UTC()
	require.NoError(t, e.items.Create(context.Background(), it))
	return it
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func strPtr(s string) *string { return &s }

func itemIDs(listings []Listing) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Item.ID)
	}
	return out
}

type recordingDiscarder struct {
	mu    sync.Mutex
	paths []string
}

func (d *recordingDiscarder) Discard(_ context.Context, paths []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paths = append(d.paths, paths...)
}

func (d *recordingDiscarder) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.paths...)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

// ReleasedPaths decodes every image cleanup event emitted so far.
func (e *recordingEmitter) ReleasedPaths(t *testing.T) []string {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.events {
		require.Equal(t, task.TaskTypeImageCleanup, ev.Type)
		var p task.ImageCleanupPayload
		require.NoError(t, ev.UnmarshalPayload(&p))
		out = append(out, p.Paths...)
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) Last(t *testing.T) mailer.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}
