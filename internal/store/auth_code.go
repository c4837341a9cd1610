package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
)

// AuthCodeStore persists email verification codes. At most one code exists
// per (email, purpose); saving a new one replaces the previous code.
type AuthCodeStore interface {
	// Save stores code, replacing any existing code for the same email and purpose.
	Save(ctx context.Context, code *domain.AuthCode) error

	// Get returns the current code for email and purpose.
	// Returns ErrAuthCodeNotFound if there is none.
	Get(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.AuthCode, error)

	// MarkVerified records that the code was confirmed at the given time.
	// Returns ErrAuthCodeNotFound if the code does not exist.
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error

	// Delete removes a code. Deleting a missing code is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteCreatedBefore removes every code created before cutoff and
	// returns how many were removed.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new AuthCodeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AuthCodeStore
}
