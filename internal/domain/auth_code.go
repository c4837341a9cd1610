package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// CodePurpose tells which flow a verification code belongs to.
type CodePurpose string

// Verification code purposes.
const (
	CodePurposeSignup        CodePurpose = "signup"
	CodePurposePasswordReset CodePurpose = "password_reset"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// AuthCode is a short-lived numeric code mailed to an address to prove ownership.
type AuthCode struct {
	ID         uuid.UUID
	Email      string
	Code       string
	Purpose    CodePurpose
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

// GenerateCode returns a uniformly random, zero-padded 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// NewAuthCode creates a code for email and purpose with a freshly generated value.
func NewAuthCode(email string, purpose CodePurpose) (*AuthCode, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	return &AuthCode{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Code:      code,
		Purpose:   purpose,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Expired reports whether the code is older than lifetime at now.
func (c *AuthCode) Expired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(c.CreatedAt) > lifetime
}

// Verified reports whether the code was confirmed by its owner.
func (c *AuthCode) Verified() bool {
	return c.VerifiedAt != nil
}
