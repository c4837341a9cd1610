package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/store"
)

const userColumns = `id, name, surname, email, telegram, phone, hashed_password, created_at, updated_at`

// UserStore implements store.UserStore.
type UserStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewUserStore creates a UserStore on db for the given dialect.
func NewUserStore(db store.DBTX, d Dialect) *UserStore {
	return &UserStore{db: db, dialect: d}
}

var _ store.UserStore = (*UserStore)(nil)

// WithTx implements store.UserStore.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, dialect: s.dialect}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := s.dialect.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Surname, domain.NormalizeEmail(user.Email),
		user.Telegram, user.Phone, user.HashedPassword,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to insert user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := s.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.getOne(ctx, query, id)
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := s.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return s.getOne(ctx, query, domain.NormalizeEmail(email))
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return user, nil
}

// GetByIDs implements store.UserStore.
func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	result := make(map[uuid.UUID]*domain.User, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	query := s.dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `)`)
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, store.NewStoreError("user", "get", "failed to load users", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, store.NewStoreError("user", "get", "failed to scan user", err)
		}
		result[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "get", "failed to iterate users", err)
	}
	return result, nil
}

// Update implements store.UserStore.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := s.dialect.Rebind(`
		UPDATE users
		SET name = ?, surname = ?, email = ?, telegram = ?, phone = ?, hashed_password = ?, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query,
		user.Name, user.Surname, domain.NormalizeEmail(user.Email),
		user.Telegram, user.Phone, user.HashedPassword, user.UpdatedAt.UTC(),
		user.ID,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrEmailExists)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := s.dialect.Rebind(`DELETE FROM users WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Surname, &u.Email, &u.Telegram, &u.Phone,
		&u.HashedPassword, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
