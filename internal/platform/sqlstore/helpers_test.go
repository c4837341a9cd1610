package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
	"github.com/phrazzld/lostfound-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

// fixture bundles the stores of one migrated test database.
type fixture struct {
	db         *testdb.DB
	users      *sqlstore.UserStore
	categories *sqlstore.CategoryStore
	items      *sqlstore.ItemStore
	codes      *sqlstore.AuthCodeStore
	tasks      *sqlstore.TaskStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	return &fixture{
		db:         db,
		users:      sqlstore.NewUserStore(db.DB, db.Dialect),
		categories: sqlstore.NewCategoryStore(db.DB, db.Dialect),
		items:      sqlstore.NewItemStore(db.DB, db.Dialect),
		codes:      sqlstore.NewAuthCodeStore(db.DB, db.Dialect),
		tasks:      sqlstore.NewTaskStore(db.DB, db.Dialect),
	}
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser("Ann", "Lee", email, "$2a$10$hash")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := domain.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, f.categories.CreateMany(context.Background(), []*domain.Category{c}))
	return c
}

// item inserts an item created at createdAt.
func (f *fixture) item(
	t *testing.T,
	kind domain.Kind,
	owner *domain.User,
	cat *domain.Category,
	name, description string,
	eventDate, createdAt time.Time,
) *domain.Item {
	t.Helper()
	it, err := domain.NewItem(kind, owner.ID, name, description, cat.ID, eventDate, []string{"img/" + uuid.NewString() + ".jpg"})
	require.NoError(t, err)
	it.CreatedAt = createdAt.UTC()
	it.UpdatedAt = createdAt.UTC()
	require.NoError(t, f.items.Create(context.Background(), it))
	return it
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func ids(items []*domain.Item) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
