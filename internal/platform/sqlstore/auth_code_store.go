package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// AuthCodeStore implements store.AuthCodeStore.
type AuthCodeStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewAuthCodeStore creates an AuthCodeStore on db for the given dialect.
func NewAuthCodeStore(db store.DBTX, d Dialect) *AuthCodeStore {
	return &AuthCodeStore{db: db, dialect: d}
}

var _ store.AuthCodeStore = (*AuthCodeStore)(nil)

// WithTx implements store.AuthCodeStore.
func (s *AuthCodeStore) WithTx(tx *sql.Tx) store.AuthCodeStore {
	return &AuthCodeStore{db: tx, dialect: s.dialect}
}

// Save implements store.AuthCodeStore.
func (s *AuthCodeStore) Save(ctx context.Context, code *domain.AuthCode) error {
	query := s.dialect.Rebind(`
		INSERT INTO auth_codes (id, email, code, purpose, verified_at, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
		ON CONFLICT (email, purpose) DO UPDATE
		SET id = excluded.id, code = excluded.code, verified_at = NULL, created_at = excluded.created_at`)

	_, err := s.db.ExecContext(ctx, query,
		code.ID, domain.NormalizeEmail(code.Email), code.Code, string(code.Purpose), code.CreatedAt.UTC(),
	)
	if err != nil {
		return store.NewStoreError("auth code", "save", "failed to save verification code", MapError(err))
	}
	return nil
}

// Get implements store.AuthCodeStore.
func (s *AuthCodeStore) Get(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.AuthCode, error) {
	query := s.dialect.Rebind(`
		SELECT id, email, code, purpose, verified_at, created_at
		FROM auth_codes WHERE email = ? AND purpose = ?`)

	var (
		c          domain.AuthCode
		p          string
		verifiedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email), string(purpose)).
		Scan(&c.ID, &c.Email, &c.Code, &p, &verifiedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAuthCodeNotFound
		}
		return nil, MapError(err)
	}

	c.Purpose = domain.CodePurpose(p)
	c.CreatedAt = c.CreatedAt.UTC()
	if verifiedAt.Valid {
		t := verifiedAt.Time.UTC()
		c.VerifiedAt = &t
	}
	return &c, nil
}

// MarkVerified implements store.AuthCodeStore.
func (s *AuthCodeStore) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := s.dialect.Rebind(`UPDATE auth_codes SET verified_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAuthCodeNotFound)
}

// Delete implements store.AuthCodeStore.
func (s *AuthCodeStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := s.dialect.Rebind(`DELETE FROM auth_codes WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return MapError(err)
	}
	return nil
}

// DeleteCreatedBefore implements store.AuthCodeStore.
func (s *AuthCodeStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := s.dialect.Rebind(`DELETE FROM auth_codes WHERE created_at < ?`)
	result, err := s.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, store.NewStoreError("auth code", "purge", "failed to purge verification codes", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
