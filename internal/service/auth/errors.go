package auth

import "errors"

// Token validation errors. All of them mean the caller is unauthenticated.
var (
	// ErrInvalidToken indicates a malformed token or a bad signature.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the nbf claim lies in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates no bearer token was supplied.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates a refresh token was used as an access
	// token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates a malformed or forged refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)

// IsTokenError reports whether err is any token validation failure.
func IsTokenError(err error) bool {
	for _, target := range []error{
		ErrInvalidToken, ErrExpiredToken, ErrTokenNotYetValid, ErrMissingToken,
		ErrWrongTokenType, ErrInvalidRefreshToken, ErrExpiredRefreshToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
