package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
)

// ItemStore persists lost and found items. Every lookup is scoped to a
// kind: a lost item is never returned for a found-item id and vice versa.
type ItemStore interface {
	// Create saves a new item. A missing category or owner yields ErrInvalidEntity.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item of the given kind.
	// Returns ErrItemNotFound if no such item exists.
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Item, error)

	// Update overwrites the mutable fields of an existing item.
	// Returns ErrItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.Item) error

	// Delete removes an item of the given kind.
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error

	// Count returns how many items match the filter.
	Count(ctx context.Context, filter listing.Filter) (int, error)

	// Search returns one page of items matching the query, ordered by
	// creation time in the requested direction with id as tiebreak.
	Search(ctx context.Context, query listing.Query) ([]*domain.Item, error)

	// ListByUser returns every item of kind owned by userID, newest first.
	ListByUser(ctx context.Context, kind domain.Kind, userID uuid.UUID) ([]*domain.Item, error)

	// WithTx returns a new ItemStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ItemStore
}
