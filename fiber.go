package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// NewFiberTokenGuard returns a fiber-native handler enforcing the same
// validity rule as RequireValidToken, for apps mounting fiber directly
// instead of going through the router abstraction.
func NewFiberTokenGuard(codec TokenCodec, ledger Tokens, errorHandler func(*fiber.Ctx, error) error) func(*fiber.Ctx) error {
	if errorHandler == nil {
		errorHandler = defaultFiberGuardErrorHandler
	}

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return errorHandler(c, ErrTokenMalformed)
		}

		claims, err := codec.Verify(raw)
		if err != nil {
			return errorHandler(c, err)
		}

		stored, err := ledger.FindByToken(c.UserContext(), raw)
		if err != nil {
			if errors.IsNotFound(err) {
				return errorHandler(c, ErrTokenExpired)
			}
			return errorHandler(c, err)
		}

		if !stored.Valid() {
			return errorHandler(c, ErrTokenExpired)
		}

		c.Locals(ClaimsContextKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

// GetFiberClaims recovers the claims a guard stored on the request.
func GetFiberClaims(c *fiber.Ctx) (*TokenClaims, bool) {
	claims, ok := c.Locals(ClaimsContextKey).(*TokenClaims)
	return claims, ok
}

func defaultFiberGuardErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "invalid or expired token",
	})
}
