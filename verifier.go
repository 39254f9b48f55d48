package auth

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UserStore is the slice of the user repository the verifier needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PasswordVerifier checks submitted credentials against stored bcrypt
// hashes. The check is stateless; failure never reveals whether the email
// or the password was at fault.
type PasswordVerifier struct {
	store  UserStore
	logger Logger
}

var _ CredentialVerifier = (*PasswordVerifier)(nil)

// NewCredentialVerifier will create a new PasswordVerifier
func NewCredentialVerifier(store UserStore) *PasswordVerifier {
	return &PasswordVerifier{
		store:  store,
		logger: defLogger{},
	}
}

func (v *PasswordVerifier) WithLogger(l Logger) *PasswordVerifier {
	if l != nil {
		v.logger = l
	}
	return v
}

// Verify looks the user up by email and compares the password against the
// stored hash. Both the lookup miss and the hash mismatch collapse into
// ErrAuthenticationFailed; on a miss we still burn a bcrypt comparison so
// the two paths stay indistinguishable to a timing observer.
func (v *PasswordVerifier) Verify(ctx context.Context, email, password string) (*User, error) {
	user, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			_ = ComparePasswordAndHash(password, decoyHash())
			return nil, ErrAuthenticationFailed
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrAuthenticationFailed
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	return user, nil
}

var (
	decoyOnce sync.Once
	decoy     string
)

// decoyHash is a hash no password matches, used to equalize the cost of
// the unknown-email path with the wrong-password path.
func decoyHash() string {
	decoyOnce.Do(func() {
		decoy, _ = HashPassword(uuid.NewString())
	})
	return decoy
}
