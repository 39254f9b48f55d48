package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeAuthenticationFailed = "authentication_failed"
	TextCodeEmailTaken           = "email_taken"
	TextCodeTokenExpired         = "token_expired"
	TextCodeTokenMalformed       = "token_malformed"
	TextCodeInvalidSignature     = "token_invalid_signature"
	TextCodeDuplicateToken       = "duplicate_token"
	TextCodeRoleNotFound         = "role_not_found"
	TextCodeUserNotFound         = "user_not_found"
)

// ErrAuthenticationFailed covers every bad-credential outcome. It never
// distinguishes whether the email or the password was wrong.
var ErrAuthenticationFailed = errors.New("authentication failed", errors.CategoryAuth).
	WithTextCode(TextCodeAuthenticationFailed).
	WithCode(errors.CodeUnauthorized)

// ErrEmailTaken is returned when signing up with an email that already exists.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrTokenExpired is returned when a token's expiry is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be decoded.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidSignature is returned when a token's signature does not match
// the configured signing key.
var ErrInvalidSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidSignature).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateToken is a ledger integrity violation: the same token string
// was recorded twice. Unreachable in normal operation.
var ErrDuplicateToken = errors.New("token already recorded", errors.CategoryInternal).
	WithTextCode(TextCodeDuplicateToken)

// ErrRoleNotFound signals a data integrity fault, not a user error: a role
// the system depends on is missing from storage.
var ErrRoleNotFound = errors.New("role not found", errors.CategoryNotFound).
	WithTextCode(TextCodeRoleNotFound).
	WithCode(errors.CodeNotFound)

// ErrUserNotFound is a lookup miss for a user the caller expected to exist.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty input to the hashing primitives.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput)

// ErrMismatchedHashAndPassword is the bcrypt mismatch outcome.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsAuthenticationFailedError checks for the uniform credential rejection.
func IsAuthenticationFailedError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// IsEmailTakenError checks for the sign-up duplicate email rejection.
func IsEmailTakenError(err error) bool {
	return errors.Is(err, ErrEmailTaken)
}

// IsDuplicateTokenError checks for the ledger uniqueness violation.
func IsDuplicateTokenError(err error) bool {
	return errors.Is(err, ErrDuplicateToken)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
