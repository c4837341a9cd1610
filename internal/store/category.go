package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
)

// CategoryStore persists item categories. Categories are only ever created
// by the bootstrap seed step.
type CategoryStore interface {
	// List returns every category in insertion order.
	List(ctx context.Context) ([]*domain.Category, error)

	// GetByID retrieves a category.
	// Returns ErrCategoryNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// GetByIDs retrieves the categories with the given IDs keyed by ID.
	// Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Category, error)

	// Count returns the number of stored categories.
	Count(ctx context.Context) (int, error)

	// CreateMany saves the given categories in order.
	CreateMany(ctx context.Context, categories []*domain.Category) error

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
