package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenPair is the credential set handed to a client after a successful
// sign-in or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Authenticator holds the token lifecycle operations
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, authorization string) (*TokenPair, error)
	Logout(ctx context.Context, authorization string) error
}

// TokenCodec encodes and decodes signed tokens. Issue and Verify are pure
// functions of the signing key and the claim set; no state is consulted.
type TokenCodec interface {
	Issue(subject string, extra map[string]any, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
	ExtractSubject(token string) (string, error)
}

// CredentialVerifier checks a submitted email/password pair against stored,
// hashed credentials.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*User, error)
}

// Config holds auth options
type Config interface {
	GetSigningSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetIssuer() string
}

// PasswordHasher hashes and compares passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
