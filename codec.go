package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// JWTCodec implements TokenCodec over HMAC-SHA256 signed JWTs.
type JWTCodec struct {
	signingKey []byte
	issuer     string
	logger     Logger
}

var _ TokenCodec = (*JWTCodec)(nil)

// NewTokenCodec builds a codec from the configured signing secret. The
// secret is base64 encoded key material; decoding it is a construction
// concern, a bad secret never surfaces as a runtime error.
func NewTokenCodec(cfg Config) (*JWTCodec, error) {
	secret := cfg.GetSigningSecret()
	if secret == "" {
		return nil, errors.New("signing secret is required", errors.CategoryBadInput)
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "signing secret is not valid base64")
	}

	return &JWTCodec{
		signingKey: key,
		issuer:     cfg.GetIssuer(),
		logger:     defLogger{},
	}, nil
}

func (c *JWTCodec) WithLogger(logger Logger) *JWTCodec {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Issue builds a signed token whose payload carries the subject, an
// issued-at of now, an expiry of now plus ttl, and any extra claims merged
// at the top level. Registered claims always win over extras.
func (c *JWTCodec) Issue(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	for key, val := range extra {
		claims[key] = val
	}

	claims[claimSubject] = subject
	claims[claimIssuedAt] = jwt.NewNumericDate(now)
	claims[claimExpiresAt] = jwt.NewNumericDate(now.Add(ttl))
	if c.issuer != "" {
		claims[claimIssuer] = c.issuer
	}
	ensureTokenID(claims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Verify parses and signature-checks the token, returning its claims.
// Failures map onto ErrTokenExpired, ErrInvalidSignature, or
// ErrTokenMalformed.
func (c *JWTCodec) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, c.keyFunc)
	if err != nil {
		return nil, c.mapParseError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		c.logger.Error("TokenCodec verify could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claimsFromMap(claims), nil
}

// ExtractSubject surfaces the subject of a signature-valid token without
// checking claim validity, so an expired token still yields its subject.
// Parse and signature failures report the same kinds as Verify.
func (c *JWTCodec) ExtractSubject(tokenString string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.ParseWithClaims(tokenString, jwt.MapClaims{}, c.keyFunc)
	if err != nil {
		return "", c.mapParseError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenMalformed
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrTokenMalformed
	}

	return subject, nil
}

// ensureTokenID gives every issued token a unique jti so two issuances for
// the same subject within one clock second never collide in the ledger.
func ensureTokenID(claims jwt.MapClaims) {
	if _, ok := claims[claimTokenID]; !ok {
		claims[claimTokenID] = uuid.NewString()
	}
}

func (c *JWTCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		c.logger.Error("TokenCodec encountered unexpected signing method", "alg", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.signingKey, nil
}

func (c *JWTCodec) mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
}
