package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password length limits. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrEmptySurname        = errors.New("surname cannot be empty")
)

var emailValidator = validator.New()

// User represents a registered user. Contact fields (email, telegram, phone)
// are shown to other users on item detail views.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Surname        string    `json:"surname"`
	Email          string    `json:"email"`
	Telegram       string    `json:"telegram"`
	Phone          string    `json:"phone"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email looks like a deliverable address.
func ValidEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// ValidatePassword checks the plaintext password length policy.
func ValidatePassword(field, password string) error {
	switch {
	case password == "":
		return NewValidationError(field, "Password is required.", nil)
	case len(password) < MinPasswordLength:
		return NewValidationError(field, "Password must be at least 8 characters long.", nil)
	case len(password) > MaxPasswordLength:
		return NewValidationError(field, "Password must be at most 72 characters long.", nil)
	}
	return nil
}

// NewUser creates a new User with an already hashed password.
// Telegram and phone start empty.
func NewUser(name, surname, email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Surname:        strings.TrimSpace(surname),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if u.Surname == "" {
		return ErrEmptySurname
	}
	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}
	return nil
}

// Contact is the subset of User exposed to other users.
type Contact struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Surname  string    `json:"surname"`
	Email    string    `json:"email"`
	Telegram string    `json:"telegram"`
	Phone    string    `json:"phone"`
}

// Contact returns the public contact card of the user.
func (u *User) Contact() Contact {
	return Contact{
		ID:       u.ID,
		Name:     u.Name,
		Surname:  u.Surname,
		Email:    u.Email,
		Telegram: u.Telegram,
		Phone:    u.Phone,
	}
}
