package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// BearerScheme is the authorization scheme carried on the wire.
const BearerScheme = "Bearer"

// Auther is the authentication state machine: sign-up, sign-in, refresh,
// and logout. Session state lives implicitly in the token ledger; the
// operations here are the transitions.
type Auther struct {
	users      UserRegistry
	roles      Roles
	ledger     Tokens
	verifier   CredentialVerifier
	codec      TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther
func NewAuthenticator(repo RepositoryManager, codec TokenCodec, cfg Config) *Auther {
	return &Auther{
		users:      repo.Users(),
		roles:      repo.Roles(),
		ledger:     repo.Tokens(),
		verifier:   NewCredentialVerifier(repo.Users()),
		codec:      codec,
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
		logger:     defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithCredentialVerifier overrides the default store backed verifier.
func (s *Auther) WithCredentialVerifier(verifier CredentialVerifier) *Auther {
	if verifier != nil {
		s.verifier = verifier
	}
	return s
}

// WithTokenLedger overrides the ledger the orchestrator records into.
func (s *Auther) WithTokenLedger(ledger Tokens) *Auther {
	if ledger != nil {
		s.ledger = ledger
	}
	return s
}

// SignUp creates a new user with the default role. No tokens are issued.
func (s *Auther) SignUp(ctx context.Context, email, password string) (*User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	role, err := s.roles.GetByName(ctx, RoleUser)
	if err != nil {
		s.logger.Error("SignUp default role lookup failed", "error", err)
		return nil, err
	}

	user, err := s.users.Register(ctx, &User{
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist user")
	}

	return user, nil
}

// SignIn verifies the credentials and, on success, issues a fresh token
// pair. Every previously valid access token for the user is revoked before
// the new one is recorded, so at most one access token per user is valid
// at any instant. The refresh token is returned but never persisted.
func (s *Auther) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if IsAuthenticationFailedError(err) {
			s.logger.Info("SignIn rejected", "email", email)
			return nil, err
		}
		s.logger.Error("SignIn verifier error", "error", err)
		return nil, err
	}

	// Authorities are re-derived from storage on every sign-in rather than
	// embedded in the token; a miss here is a data integrity fault.
	authorities, err := s.roles.AuthoritiesForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("SignIn authority lookup failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	s.logger.Debug("SignIn authorities resolved", "user_id", user.ID, "count", len(authorities))

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.supersede(ctx, user, pair.AccessToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new access token. The same
// refresh token is echoed back; refresh tokens are not rotated.
//
// Any failure (missing or malformed header, unknown subject, bad signature,
// expired token) is a silent no-op: no tokens and no error. Callers must
// treat "nothing happened" as a rejection. This mirrors the reference
// behavior deliberately; it means a malformed request and an expired token
// are indistinguishable on the wire.
func (s *Auther) Refresh(ctx context.Context, authorization string) (*TokenPair, error) {
	raw, ok := bearerToken(authorization)
	if !ok {
		return nil, nil
	}

	subject, err := s.codec.ExtractSubject(raw)
	if err != nil {
		s.logger.Debug("Refresh subject extraction failed", "error", err)
		return nil, nil
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Debug("Refresh subject has no user", "subject", subject)
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user for refresh")
	}

	authorities, err := s.roles.AuthoritiesForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("Refresh authority lookup failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	s.logger.Debug("Refresh authorities resolved", "user_id", user.ID, "count", len(authorities))

	claims, err := s.codec.Verify(raw)
	if err != nil || claims.Subject != user.Email {
		s.logger.Debug("Refresh token rejected", "subject", subject)
		return nil, nil
	}

	access, err := s.codec.Issue(user.Email, nil, s.accessTTL)
	if err != nil {
		return nil, err
	}

	if err := s.supersede(ctx, user, access); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
	}, nil
}

// Logout revokes the presented access token. It is idempotent: a missing
// Bearer prefix or an unknown token is a no-op, never an error.
func (s *Auther) Logout(ctx context.Context, authorization string) error {
	raw, ok := bearerToken(authorization)
	if !ok {
		return nil
	}

	stored, err := s.ledger.FindByToken(ctx, raw)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load token for logout")
	}

	if err := s.ledger.Revoke(ctx, []*Token{stored}); err != nil {
		return err
	}

	s.logger.Info("Logout revoked token", "user_id", stored.UserID)

	return nil
}

func (s *Auther) issuePair(user *User) (*TokenPair, error) {
	access, err := s.codec.Issue(user.Email, nil, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.Issue(user.Email, nil, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Auther) supersede(ctx context.Context, user *User, access string) error {
	_, err := s.ledger.Supersede(ctx, user.ID, &Token{
		Token:  access,
		Type:   TokenTypeBearer,
		UserID: user.ID,
	})

	if err != nil {
		s.logger.Error("supersede failed", "user_id", user.ID, "error", err)
		return err
	}

	return nil
}

func bearerToken(authorization string) (string, bool) {
	raw, ok := strings.CutPrefix(authorization, BearerScheme+" ")
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
