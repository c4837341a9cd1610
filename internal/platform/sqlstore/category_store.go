package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// CategoryStore implements store.CategoryStore.
type CategoryStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewCategoryStore creates a CategoryStore on db for the given dialect.
func NewCategoryStore(db store.DBTX, d Dialect) *CategoryStore {
	return &CategoryStore{db: db, dialect: d}
}

var _ store.CategoryStore = (*CategoryStore)(nil)

// WithTx implements store.CategoryStore.
func (s *CategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return &CategoryStore{db: tx, dialect: s.dialect}
}

// List implements store.CategoryStore.
func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY position, id`)
	if err != nil {
		return nil, store.NewStoreError("category", "list", "failed to list categories", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, store.NewStoreError("category", "list", "failed to scan category", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("category", "list", "failed to iterate categories", err)
	}
	return categories, nil
}

// GetByID implements store.CategoryStore.
func (s *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := s.dialect.Rebind(`SELECT id, name, created_at FROM categories WHERE id = ?`)

	var c domain.Category
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		return nil, MapError(err)
	}
	return &c, nil
}

// GetByIDs implements store.CategoryStore.
func (s *CategoryStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Category, error) {
	result := make(map[uuid.UUID]*domain.Category, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	query := s.dialect.Rebind(`SELECT id, name, created_at FROM categories WHERE id IN (` + placeholders(len(ids)) + `)`)
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, store.NewStoreError("category", "get", "failed to load categories", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, store.NewStoreError("category", "get", "failed to scan category", err)
		}
		result[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("category", "get", "failed to iterate categories", err)
	}
	return result, nil
}

// Count implements store.CategoryStore.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, store.NewStoreError("category", "count", "failed to count categories", MapError(err))
	}
	return n, nil
}

// CreateMany implements store.CategoryStore. Positions continue after the
// highest existing position so List keeps insertion order.
func (s *CategoryStore) CreateMany(ctx context.Context, categories []*domain.Category) error {
	var next int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM categories`).Scan(&next)
	if err != nil {
		return store.NewStoreError("category", "create", "failed to read category positions", MapError(err))
	}

	query := s.dialect.Rebind(`INSERT INTO categories (id, name, position, created_at) VALUES (?, ?, ?, ?)`)
	for _, c := range categories {
		next++
		if _, err := s.db.ExecContext(ctx, query, c.ID, c.Name, next, c.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to create category %q: %w", c.Name, MapError(err))
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
