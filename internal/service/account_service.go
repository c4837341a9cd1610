package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/platform/mailer"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// DefaultCodeLifetime is how long an emailed verification code stays valid.
const DefaultCodeLifetime = 5 * time.Minute

// SignUpInput registers a user with a previously mailed signup code.
type SignUpInput struct {
	Code     string
	Email    string
	Password string
	Name     string
	Surname  string
}

// SignInInput authenticates with email and password.
type SignInInput struct {
	Email    string
	Password string
}

// VerifyCodeInput confirms a password reset code.
type VerifyCodeInput struct {
	Email string
	Code  string
}

// ChangePasswordInput sets a new password with a verified reset code.
type ChangePasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// AccountService handles signup, signin and password recovery.
type AccountService interface {
	SendSignupCode(ctx context.Context, email string) error
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, in SignInInput) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	ForgotPasswordSendCode(ctx context.Context, email string) error
	ForgotPasswordVerifyCode(ctx context.Context, in VerifyCodeInput) error
	ForgotPasswordChangePassword(ctx context.Context, in ChangePasswordInput) error

	// PurgeExpiredCodes removes codes older than the code lifetime and
	// returns how many were removed.
	PurgeExpiredCodes(ctx context.Context) (int64, error)
}

// AccountDeps groups the collaborators of the account service.
type AccountDeps struct {
	DB           *sql.DB
	Users        store.UserStore
	Codes        store.AuthCodeStore
	Hasher       auth.PasswordHasher
	Tokens       auth.JWTService
	Mailer       mailer.Mailer
	CodeLifetime time.Duration
	Logger       *slog.Logger
}

type accountService struct {
	db           *sql.DB
	users        store.UserStore
	codes        store.AuthCodeStore
	hasher       auth.PasswordHasher
	tokens       auth.JWTService
	mailer       mailer.Mailer
	codeLifetime time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(deps AccountDeps) (AccountService, error) {
	switch {
	case deps.DB == nil:
		return nil, fmt.Errorf("account service requires a database")
	case deps.Users == nil || deps.Codes == nil:
		return nil, fmt.Errorf("account service requires user and auth code stores")
	case deps.Hasher == nil || deps.Tokens == nil:
		return nil, fmt.Errorf("account service requires a password hasher and a token service")
	case deps.Mailer == nil:
		return nil, fmt.Errorf("account service requires a mailer")
	}
	if deps.CodeLifetime <= 0 {
		deps.CodeLifetime = DefaultCodeLifetime
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &accountService{
		db:           deps.DB,
		users:        deps.Users,
		codes:        deps.Codes,
		hasher:       deps.Hasher,
		tokens:       deps.Tokens,
		mailer:       deps.Mailer,
		codeLifetime: deps.CodeLifetime,
		now:          time.Now,
		logger:       deps.Logger.With(slog.String("component", "account_service")),
	}, nil
}

func (s *accountService) SendSignupCode(ctx context.Context, email string) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.NewConflictError(MsgEmailTaken)
	case !errors.Is(err, store.ErrUserNotFound):
		return NewServiceError("account", "send_signup_code", err)
	}

	return s.sendCode(ctx, email, domain.CodePurposeSignup)
}

func (s *accountService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	verr := &domain.ValidationError{}
	email := domain.NormalizeEmail(in.Email)
	checkEmail(email, verr)
	if strings.TrimSpace(in.Code) == "" {
		verr.Add("code", "Verification code is required.")
	}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "Name is required.")
	}
	if strings.TrimSpace(in.Surname) == "" {
		verr.Add("surname", "Surname is required.")
	}
	if err := domain.ValidatePassword("password", in.Password); err != nil {
		var perr *domain.ValidationError
		if errors.As(err, &perr) {
			verr.Add("password", perr.Fields["password"])
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, NewServiceError("account", "sign_up", err)
	}
	user, err := domain.NewUser(in.Name, in.Surname, email, hashed)
	if err != nil {
		return nil, domain.NewValidationError("email", "Email has invalid format.", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)
		txCodes := s.codes.WithTx(tx)

		if _, err := txUsers.GetByEmail(ctx, email); err == nil {
			return domain.NewConflictError(MsgEmailTaken)
		} else if !errors.Is(err, store.ErrUserNotFound) {
			return err
		}

		code, err := s.checkCode(ctx, txCodes, email, domain.CodePurposeSignup, in.Code)
		if err != nil {
			return err
		}

		if err := txUsers.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrEmailExists) {
				return domain.NewConflictError(MsgEmailTaken)
			}
			return err
		}
		return txCodes.Delete(ctx, code.ID)
	})
	if err != nil {
		return nil, NewServiceError("account", "sign_up", err)
	}

	log.Info("user signed up", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *accountService) SignIn(ctx context.Context, in SignInInput) (*auth.TokenPair, error) {
	verr := &domain.ValidationError{}
	email := domain.NormalizeEmail(in.Email)
	checkEmail(email, verr)
	if in.Password == "" {
		verr.Add("password", "Password is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewConflictError(MsgUnknownEmail)
		}
		return nil, NewServiceError("account", "sign_in", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.NewConflictError(MsgWrongPassword)
		}
		return nil, NewServiceError("account", "sign_in", err)
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, NewServiceError("account", "sign_in", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("user signed in",
		slog.String("user_id", user.ID.String()))
	return pair, nil
}

func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domain.NewValidationError("refreshToken", "Refresh token is required.", nil)
	}

	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: refresh token subject no longer exists", domain.ErrUnauthorized)
		}
		return nil, NewServiceError("account", "refresh", err)
	}

	pair, err := s.tokens.IssuePair(ctx, claims.UserID)
	if err != nil {
		return nil, NewServiceError("account", "refresh", err)
	}
	return pair, nil
}

func (s *accountService) ForgotPasswordSendCode(ctx context.Context, email string) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.NewConflictError(MsgUnknownEmail)
		}
		return NewServiceError("account", "forgot_password_send_code", err)
	}

	return s.sendCode(ctx, email, domain.CodePurposePasswordReset)
}

func (s *accountService) ForgotPasswordVerifyCode(ctx context.Context, in VerifyCodeInput) error {
	email, err := requireEmail(in.Email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.Code) == "" {
		return domain.NewValidationError("code", "Verification code is required.", nil)
	}

	code, err := s.checkCode(ctx, s.codes, email, domain.CodePurposePasswordReset, in.Code)
	if err != nil {
		return NewServiceError("account", "forgot_password_verify_code", err)
	}
	if err := s.codes.MarkVerified(ctx, code.ID, s.now().UTC()); err != nil {
		return NewServiceError("account", "forgot_password_verify_code", err)
	}
	return nil
}

func (s *accountService) ForgotPasswordChangePassword(ctx context.Context, in ChangePasswordInput) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email, err := requireEmail(in.Email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.Code) == "" {
		return domain.NewValidationError("code", "Verification code is required.", nil)
	}
	if err := domain.ValidatePassword("newPassword", in.NewPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return NewServiceError("account", "forgot_password_change_password", err)
	}

	var userID string
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)
		txCodes := s.codes.WithTx(tx)

		code, err := s.checkCode(ctx, txCodes, email, domain.CodePurposePasswordReset, in.Code)
		if err != nil {
			return err
		}
		if !code.Verified() {
			return domain.NewConflictError(MsgCodeNotVerified)
		}

		user, err := txUsers.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return domain.NewConflictError(MsgUnknownEmail)
			}
			return err
		}
		user.HashedPassword = hashed
		user.UpdatedAt = s.now().UTC()
		if err := txUsers.Update(ctx, user); err != nil {
			return err
		}
		userID = user.ID.String()
		return txCodes.Delete(ctx, code.ID)
	})
	if err != nil {
		return NewServiceError("account", "forgot_password_change_password", err)
	}

	log.Info("password reset completed", slog.String("user_id", userID))
	return nil
}

func (s *accountService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	n, err := s.codes.DeleteCreatedBefore(ctx, s.now().UTC().Add(-s.codeLifetime))
	if err != nil {
		return 0, NewServiceError("account", "purge_expired_codes", err)
	}
	if n > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("purged expired verification codes",
			slog.Int64("count", n))
	}
	return n, nil
}

func (s *accountService) sendCode(ctx context.Context, email string, purpose domain.CodePurpose) error {
	code, err := domain.NewAuthCode(email, purpose)
	if err != nil {
		return NewServiceError("account", "send_code", err)
	}
	code.CreatedAt = s.now().UTC()

	if err := s.codes.Save(ctx, code); err != nil {
		return NewServiceError("account", "send_code", err)
	}

	msg := mailer.Message{
		To:      email,
		Subject: "Your verification code",
		Body: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
			code.Code, int(s.codeLifetime/time.Minute)),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return NewServiceError("account", "send_code", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("verification code sent",
		slog.String("purpose", string(purpose)))
	return nil
}

// checkCode loads the stored code for email and purpose and compares it
// with supplied.
func (s *accountService) checkCode(
	ctx context.Context,
	codes store.AuthCodeStore,
	email string,
	purpose domain.CodePurpose,
	supplied string,
) (*domain.AuthCode, error) {
	code, err := codes.Get(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, store.ErrAuthCodeNotFound) {
			return nil, domain.NewConflictError(MsgWrongCode)
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(strings.TrimSpace(supplied))) != 1 {
		return nil, domain.NewConflictError(MsgWrongCode)
	}
	if code.Expired(s.now(), s.codeLifetime) {
		return nil, domain.NewConflictError(MsgExpiredCode)
	}
	return code, nil
}

func requireEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	verr := &domain.ValidationError{}
	checkEmail(email, verr)
	if err := verr.OrNil(); err != nil {
		return "", err
	}
	return email, nil
}

func checkEmail(email string, verr *domain.ValidationError) {
	switch {
	case email == "":
		verr.Add("email", "Email is required.")
	case !domain.ValidEmail(email):
		verr.Add("email", "Email has invalid format.")
	}
}
