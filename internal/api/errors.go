package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/lostfound-api/internal/api/shared"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/platform/filestore"
	"github.com/phrazzld/lostfound-api/internal/redact"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// Messages returned for the mapped error classes.
const (
	MsgAccessDenied  = "Access denied."
	MsgUnauthorized  = "Unauthorized."
	MsgUnexpected    = "An unexpected error occurred."
	MsgInvalidEntity = "Invalid entity data."
)

// MapErrorToStatusCode maps service and store errors onto HTTP status
// codes. Access denied and conflicts are 400 in this API.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Validation must be checked first: a missing category on add is a
	// ValidationError that also wraps a store not-found error.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, filestore.ErrUnsupportedImage):
		return http.StatusBadRequest

	case auth.IsTokenError(err),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Integrity violations are checked before not-found because they may
	// wrap a store not-found error for the missing reference.
	case errors.Is(err, domain.ErrIntegrity):
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to the client for err.
// notFound is used for 404s so each resource can name itself.
func GetSafeErrorMessage(err error, notFound string) string {
	if err == nil {
		return MsgUnexpected
	}

	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		return conflict.Message
	case errors.Is(err, domain.ErrAccessDenied):
		return MsgAccessDenied
	case auth.IsTokenError(err), errors.Is(err, domain.ErrUnauthorized):
		return MsgUnauthorized
	case errors.Is(err, store.ErrInvalidEntity):
		return MsgInvalidEntity
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusNotFound:
		if notFound != "" {
			return notFound
		}
		return "Not found."
	case http.StatusInternalServerError:
		return sanitizedMessage(err)
	default:
		return strings.TrimSpace(err.Error())
	}
}

// sanitizedMessage surfaces the redacted error text for 500s.
func sanitizedMessage(err error) string {
	msg := strings.TrimSpace(redact.Error(err))
	if msg == "" {
		return MsgUnexpected
	}
	return msg
}

// HandleAPIError writes the error response for err. Validation errors get a
// field map; everything else a message. notFound names the missing resource.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.HasErrors() {
		shared.RespondWithValidationError(w, r, verr.Fields)
		return
	}

	if errors.Is(err, filestore.ErrUnsupportedImage) {
		shared.RespondWithValidationError(w, r, map[string]string{
			"images": "Only JPEG and PNG images are accepted.",
		})
		return
	}

	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err, notFound), err)
}
