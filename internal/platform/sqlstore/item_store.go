package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/store"
)

const itemColumns = `id, kind, name, description, category_id, user_id, images, event_date, created_at, updated_at`

// ItemStore implements store.ItemStore.
type ItemStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewItemStore creates an ItemStore on db for the given dialect.
func NewItemStore(db store.DBTX, d Dialect) *ItemStore {
	return &ItemStore{db: db, dialect: d}
}

var _ store.ItemStore = (*ItemStore)(nil)

// WithTx implements store.ItemStore.
func (s *ItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &ItemStore{db: tx, dialect: s.dialect}
}

// Create implements store.ItemStore.
func (s *ItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContext(ctx)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	images, err := encodeImages(item.Images)
	if err != nil {
		return err
	}

	query := s.dialect.Rebind(`
		INSERT INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = s.db.ExecContext(ctx, query,
		item.ID, string(item.Kind), item.Name, item.Description,
		item.CategoryID, item.UserID, images,
		item.EventDate.UTC(), item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to insert item",
			slog.String("item_id", item.ID.String()),
			slog.String("kind", string(item.Kind)),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("item created", slog.String("item_id", item.ID.String()), slog.String("kind", string(item.Kind)))
	return nil
}

// GetByID implements store.ItemStore.
func (s *ItemStore) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Item, error) {
	query := s.dialect.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE kind = ? AND id = ?`)

	item, err := scanItem(s.db.QueryRowContext(ctx, query, string(kind), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		logger.FromContext(ctx).Error("failed to get item",
			slog.String("item_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return item, nil
}

// Update implements store.ItemStore.
func (s *ItemStore) Update(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	images, err := encodeImages(item.Images)
	if err != nil {
		return err
	}

	query := s.dialect.Rebind(`
		UPDATE items
		SET name = ?, description = ?, category_id = ?, images = ?, event_date = ?, updated_at = ?
		WHERE kind = ? AND id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		item.Name, item.Description, item.CategoryID, images,
		item.EventDate.UTC(), item.UpdatedAt.UTC(),
		string(item.Kind), item.ID,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to update item",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrItemNotFound)
}

// Delete implements store.ItemStore.
func (s *ItemStore) Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	query := s.dialect.Rebind(`DELETE FROM items WHERE kind = ? AND id = ?`)

	result, err := s.db.ExecContext(ctx, query, string(kind), id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete item",
			slog.String("item_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrItemNotFound)
}

// Count implements store.ItemStore.
func (s *ItemStore) Count(ctx context.Context, filter listing.Filter) (int, error) {
	where, args := whereClause(s.dialect, filter)
	query := s.dialect.Rebind(`SELECT COUNT(*) FROM items WHERE ` + where)

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("item", "count", "failed to count items", MapError(err))
	}
	return n, nil
}

// Search implements store.ItemStore.
func (s *ItemStore) Search(ctx context.Context, q listing.Query) ([]*domain.Item, error) {
	where, args := whereClause(s.dialect, q.Filter)

	dir := "DESC"
	if q.Sort == listing.SortAsc {
		dir = "ASC"
	}

	query := s.dialect.Rebind(fmt.Sprintf(
		`SELECT %s FROM items WHERE %s ORDER BY created_at %s, id %s LIMIT ? OFFSET ?`,
		itemColumns, where, dir, dir,
	))
	args = append(args, q.Limit(), q.Offset())

	items, err := s.queryItems(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("item", "search", "failed to search items", err)
	}
	return items, nil
}

// ListByUser implements store.ItemStore.
func (s *ItemStore) ListByUser(ctx context.Context, kind domain.Kind, userID uuid.UUID) ([]*domain.Item, error) {
	query := s.dialect.Rebind(`SELECT ` + itemColumns + `
		FROM items WHERE kind = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC`)

	items, err := s.queryItems(ctx, query, string(kind), userID)
	if err != nil {
		return nil, store.NewStoreError("item", "list", "failed to list user items", err)
	}
	return items, nil
}

func (s *ItemStore) queryItems(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// whereClause translates a listing filter into a SQL condition with '?'
// placeholders. The kind is always constrained.
func whereClause(d Dialect, f listing.Filter) (string, []any) {
	conds := []string{"kind = ?"}
	args := []any{string(f.Kind)}

	if f.Text != nil {
		pattern := likePattern(*f.Text)
		conds = append(conds, "("+d.containsExpr("name")+" OR "+d.containsExpr("description")+")")
		args = append(args, pattern, pattern)
	}
	if f.CategoryID != nil {
		conds = append(conds, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.DateRange != nil {
		if f.DateRange.From != nil {
			conds = append(conds, "event_date >= ?")
			args = append(args, f.DateRange.From.UTC())
		}
		if f.DateRange.To != nil {
			conds = append(conds, "event_date <= ?")
			args = append(args, f.DateRange.To.UTC())
		}
	}

	return strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item   domain.Item
		kind   string
		images []byte
	)
	if err := row.Scan(
		&item.ID, &kind, &item.Name, &item.Description,
		&item.CategoryID, &item.UserID, &images,
		&item.EventDate, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.Kind = domain.Kind(kind)
	item.EventDate = item.EventDate.UTC()
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	if err := json.Unmarshal(images, &item.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images of item %s: %w", item.ID, err)
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	return &item, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(b), nil
}
