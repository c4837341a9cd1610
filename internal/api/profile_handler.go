package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lostfound-api/internal/api/shared"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/service"
)

const msgUserNotFound = "User not found."

// ProfileHandler serves /profile. Every route requires authentication.
type ProfileHandler struct {
	profiles service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles service.ProfileService, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProfileHandler")
	}
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "profile_handler")),
	}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, msgUserNotFound)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{
		Contact:    profile.User.Contact(),
		LostItems:  listingsToResponse(profile.LostItems),
		FoundItems: listingsToResponse(profile.FoundItems),
	})
}

// ChangePassword handles PUT /profile/password.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req ChangePasswordRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.profiles.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, msgUserNotFound)
		return
	}

	log.Info("password changed", slog.String("user_id", userID.String()))
	shared.RespondWithMessage(w, r, http.StatusOK, "Password changed successfully.")
}

// SetTelegram handles PUT /profile/telegram.
func (h *ProfileHandler) SetTelegram(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req TelegramRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.profiles.SetTelegram(r.Context(), userID, req.Telegram); err != nil {
		HandleAPIError(w, r, err, msgUserNotFound)
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Telegram nickname changed successfully.")
}

// SetPhone handles PUT /profile/phone.
func (h *ProfileHandler) SetPhone(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req PhoneRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.profiles.SetPhone(r.Context(), userID, req.Phone); err != nil {
		HandleAPIError(w, r, err, msgUserNotFound)
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Phone number changed successfully.")
}

// SetCredentials handles PUT /profile/credentials.
func (h *ProfileHandler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CredentialsRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	_, err := h.profiles.SetCredentials(r.Context(), userID, service.CredentialsInput{
		Name:    req.Name,
		Surname: req.Surname,
	})
	if err != nil {
		HandleAPIError(w, r, err, msgUserNotFound)
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "User credentials changed successfully.")
}
