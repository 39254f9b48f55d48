package auth

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ClaimsContextKey is where RequireValidToken stores verified claims.
const ClaimsContextKey = "auth_claims"

// RequireValidToken guards a route with the full validity rule: the bearer
// token must carry a good signature, be unexpired, and still be live in
// the ledger (neither flag set). Ledger state is consulted on every
// request so a revoked token stops working immediately.
func RequireValidToken(codec TokenCodec, ledger Tokens, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = defaultGuardErrorHandler
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, ok := bearerToken(ctx.GetString(router.HeaderAuthorization, ""))
			if !ok {
				return errorHandler(ctx, ErrTokenMalformed)
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				return errorHandler(ctx, err)
			}

			// A signature-valid token the ledger never recorded is treated
			// the same as a revoked one.
			stored, err := ledger.FindByToken(ctx.Context(), raw)
			if err != nil {
				if errors.IsNotFound(err) {
					return errorHandler(ctx, ErrTokenExpired)
				}
				return errorHandler(ctx, err)
			}

			if !stored.Valid() {
				return errorHandler(ctx, ErrTokenExpired)
			}

			ctx.Locals(ClaimsContextKey, claims)

			return next(ctx)
		}
	}
}

func defaultGuardErrorHandler(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": "invalid or expired token",
	})
}
