package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/lostfound-api/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// constraintKind classifies a driver constraint failure.
type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
	constraintCheck
	constraintNotNull
	constraintOther
)

// classify inspects a pgx or SQLite error and reports which constraint
// (if any) it violated, plus the constraint or column name when known.
func classify(err error) (constraintKind, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return constraintUnique, pgErr.ConstraintName
		case foreignKeyViolationCode:
			return constraintForeignKey, pgErr.ConstraintName
		case checkViolationCode:
			return constraintCheck, pgErr.ConstraintName
		case notNullViolationCode:
			return constraintNotNull, pgErr.ColumnName
		}
		return constraintNone, ""
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return constraintUnique, ""
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return constraintForeignKey, ""
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return constraintCheck, ""
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return constraintNotNull, ""
		}
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return constraintOther, ""
		}
	}
	return constraintNone, ""
}

// MapError maps a database error to the matching store sentinel while
// keeping the original error in the chain for logs.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	kind, name := classify(err)
	switch kind {
	case constraintUnique:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case constraintForeignKey:
		return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, name, err)
	case constraintCheck:
		return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, name, err)
	case constraintNotNull:
		return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, name, err)
	case constraintOther:
		return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	kind, _ := classify(err)
	return kind == constraintUnique
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	kind, _ := classify(err)
	return kind == constraintForeignKey
}

// CheckRowsAffected returns notFound when result reports no affected rows.
// UPDATE and DELETE by primary key use it to detect missing records.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}

// MapUniqueViolation maps a unique violation to specificError and any
// other error through MapError.
func MapUniqueViolation(err error, specificError error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) && specificError != nil {
		return fmt.Errorf("%w: %v", specificError, err)
	}
	return MapError(err)
}
