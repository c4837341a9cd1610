package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/service/auth"
	"github.com/phrazzld/lostfound-api/internal/store"
)

// Profile is the caller's own account with their listings.
type Profile struct {
	User       *domain.User
	LostItems  []Listing
	FoundItems []Listing
}

// CredentialsInput changes name and surname. Nil or blank fields are kept.
type CredentialsInput struct {
	Name    *string
	Surname *string
}

// ProfileService reads and edits the authenticated user's account.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	SetTelegram(ctx context.Context, userID uuid.UUID, telegram string) (*domain.User, error)
	SetPhone(ctx context.Context, userID uuid.UUID, phone string) (*domain.User, error)
	SetCredentials(ctx context.Context, userID uuid.UUID, in CredentialsInput) (*domain.User, error)
}

type profileService struct {
	db       *sql.DB
	users    store.UserStore
	listings ListingService
	hasher   auth.PasswordHasher
	now      func() time.Time
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	db *sql.DB,
	users store.UserStore,
	listings ListingService,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (ProfileService, error) {
	if db == nil || users == nil || listings == nil || hasher == nil {
		return nil, fmt.Errorf("profile service requires a database, user store, listing service and hasher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		db:       db,
		users:    users,
		listings: listings,
		hasher:   hasher,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "profile_service")),
	}, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("profile", "get", err)
	}

	lost, err := s.listings.ListByUser(ctx, domain.KindLost, userID)
	if err != nil {
		return nil, err
	}
	found, err := s.listings.ListByUser(ctx, domain.KindFound, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, LostItems: lost, FoundItems: found}, nil
}

func (s *profileService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return domain.NewValidationError("currentPassword", "Current password is required.", nil)
	}
	if err := domain.ValidatePassword("newPassword", newPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return NewServiceError("profile", "change_password", err)
	}

	err = s.modify(ctx, userID, func(u *domain.User) error {
		if err := s.hasher.Compare(u.HashedPassword, currentPassword); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return domain.NewConflictError(MsgPasswordMismatch)
			}
			return err
		}
		u.HashedPassword = hashed
		return nil
	})
	if err != nil {
		return NewServiceError("profile", "change_password", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password changed",
		slog.String("user_id", userID.String()))
	return nil
}

func (s *profileService) SetTelegram(ctx context.Context, userID uuid.UUID, telegram string) (*domain.User, error) {
	var updated *domain.User
	err := s.modify(ctx, userID, func(u *domain.User) error {
		u.Telegram = strings.TrimSpace(telegram)
		updated = u
		return nil
	})
	if err != nil {
		return nil, NewServiceError("profile", "set_telegram", err)
	}
	return updated, nil
}

func (s *profileService) SetPhone(ctx context.Context, userID uuid.UUID, phone string) (*domain.User, error) {
	var updated *domain.User
	err := s.modify(ctx, userID, func(u *domain.User) error {
		u.Phone = strings.TrimSpace(phone)
		updated = u
		return nil
	})
	if err != nil {
		return nil, NewServiceError("profile", "set_phone", err)
	}
	return updated, nil
}

func (s *profileService) SetCredentials(ctx context.Context, userID uuid.UUID, in CredentialsInput) (*domain.User, error) {
	var updated *domain.User
	err := s.modify(ctx, userID, func(u *domain.User) error {
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Surname != nil && strings.TrimSpace(*in.Surname) != "" {
			u.Surname = strings.TrimSpace(*in.Surname)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, NewServiceError("profile", "set_credentials", err)
	}
	return updated, nil
}

// modify loads the user, applies fn and saves the result in one transaction.
func (s *profileService) modify(ctx context.Context, userID uuid.UUID, fn func(u *domain.User) error) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		user, err := txUsers.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		user.UpdatedAt = s.now().UTC()
		return txUsers.Update(ctx, user)
	})
}
