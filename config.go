package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// SimpleConfig is a plain value implementation of Config. Every field is
// required at startup; a missing secret or TTL is a construction error,
// never a runtime one.
type SimpleConfig struct {
	// SigningSecret is base64 encoded key material for HS256.
	SigningSecret string
	// AccessTokenTTL bounds the life of short lived access tokens.
	AccessTokenTTL time.Duration
	// RefreshTokenTTL bounds the life of refresh tokens. Deployments keep
	// it above AccessTokenTTL; that relation is not enforced here.
	RefreshTokenTTL time.Duration
	// Issuer is an optional iss claim stamped on issued tokens.
	Issuer string
}

var _ Config = (*SimpleConfig)(nil)

// NewConfig validates and returns an immutable configuration value.
func NewConfig(secret string, accessTTL, refreshTTL time.Duration) (*SimpleConfig, error) {
	cfg := &SimpleConfig{
		SigningSecret:   secret,
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid auth configuration")
	}

	return cfg, nil
}

// Validate will run validation rules
func (c SimpleConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.SigningSecret,
			validation.Required,
			is.Base64,
		),
		validation.Field(&c.AccessTokenTTL, validation.Required),
		validation.Field(&c.RefreshTokenTTL, validation.Required),
	)
}

func (c SimpleConfig) GetSigningSecret() string {
	return c.SigningSecret
}

func (c SimpleConfig) GetAccessTokenTTL() time.Duration {
	return c.AccessTokenTTL
}

func (c SimpleConfig) GetRefreshTokenTTL() time.Duration {
	return c.RefreshTokenTTL
}

func (c SimpleConfig) GetIssuer() string {
	return c.Issuer
}
