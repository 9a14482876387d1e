package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
)

// IdentityKey is the echo context key holding the verified auth.Identity.
const IdentityKey = "identity"

// TokenVerifier is the part of the token service the bearer middleware needs.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Bearer verifies "Authorization: Bearer <token>" and stores the caller
// identity on the context. Every failure renders the same 401 body.
func Bearer(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  IdentityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := verifier.Verify(token)
			if err != nil {
				return nil, err
			}
			return claims.Identity(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
			return echo.NewHTTPError(http.StatusUnauthorized, httpErr.ToErrorResponse())
		},
	})
}

// CallerFrom returns the identity stored by Bearer.
func CallerFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(IdentityKey).(auth.Identity)
	return id, ok
}

// ForceJSON makes every response JSON regardless of what the client asked for.
func ForceJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Request().Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
			return next(c)
		}
	}
}
