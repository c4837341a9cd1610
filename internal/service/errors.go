package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// Messages returned to callers for expected account failures.
const (
	MsgEmailTaken       = "User with this email already exists."
	MsgUnknownEmail     = "User with this email does not exist."
	MsgWrongCode        = "Verification code is wrong."
	MsgExpiredCode      = "Verification code is expired."
	MsgWrongPassword    = "Incorrect password."
	MsgPasswordMismatch = "Unmatching passwords."
	MsgCodeNotVerified  = "Verification code is not verified."
)

// ServiceError records which service operation failed on an unexpected error.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with operation context. Expected conditions
// (validation, conflict, access denied, not found, auth) are returned
// unchanged so callers can match them directly.
func NewServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	if isExpected(err) {
		return err
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}

func isExpected(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrAccessDenied) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		store.IsNotFoundError(err)
}
