package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/lostfound-api/internal/api/shared"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/service"
)

// AuthHandler handles signup, signin, token refresh and password recovery.
type AuthHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(accounts service.AccountService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// SendCode handles POST /auth/sendcode.
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.accounts.SendSignupCode(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Verification sent.")
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SignUpRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.accounts.SignUp(r.Context(), service.SignUpInput{
		Code:     req.Code,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("user signed up", slog.String("user_id", user.ID.String()))
	shared.RespondWithMessage(w, r, http.StatusOK, "User created successfully.")
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	pair, err := h.accounts.SignIn(r.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tokenPairToResponse(pair))
}

// RefreshToken handles POST /auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	pair, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tokenPairToResponse(pair))
}

// ForgotPasswordSendCode handles POST /auth/forgotpassword/sendcode.
func (h *AuthHandler) ForgotPasswordSendCode(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.accounts.ForgotPasswordSendCode(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Verification sent.")
}

// ForgotPasswordVerifyCode handles POST /auth/forgotpassword/verifycode.
func (h *AuthHandler) ForgotPasswordVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	err := h.accounts.ForgotPasswordVerifyCode(r.Context(), service.VerifyCodeInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Verification done.")
}

// ForgotPasswordChangePassword handles PUT /auth/forgotpassword/changepassword.
func (h *AuthHandler) ForgotPasswordChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	err := h.accounts.ForgotPasswordChangePassword(r.Context(), service.ChangePasswordInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Password changed successfully.")
}
