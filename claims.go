package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the transient payload carried by a signed token. It is
// produced and consumed by the TokenCodec and never persisted.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// ExpiresIn returns the remaining lifetime at the moment of the call.
// Negative durations mean the token already expired.
func (c *TokenClaims) ExpiresIn() time.Duration {
	return time.Until(c.ExpiresAt)
}

const (
	claimSubject   = "sub"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
	claimIssuer    = "iss"
	claimTokenID   = "jti"
)

// claimsFromMap decomposes parsed jwt claims into a TokenClaims value,
// keeping any non registered claims in Extra.
func claimsFromMap(mc jwt.MapClaims) *TokenClaims {
	claims := &TokenClaims{}

	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}

	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	for key, val := range mc {
		switch key {
		case claimSubject, claimIssuedAt, claimExpiresAt, claimIssuer, claimTokenID:
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]any)
		}
		claims.Extra[key] = val
	}

	return claims
}
