package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
)

// UserStore persists accounts. Emails are stored normalized, so lookups by
// email expect NormalizeEmail'd input.
type UserStore interface {
	// Create fails with ErrEmailExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDs loads owners for a page of listings in one query. Unknown
	// ids are left out of the map.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)

	// Update rewrites profile fields and the password hash. It fails with
	// ErrUserNotFound or ErrEmailExists.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) UserStore
}
