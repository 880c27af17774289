package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"esecretary/internal/auth"
	apperrors "esecretary/internal/errors"
)

// JWT returns the auth gateway middleware. It extracts the bearer token
// from the Authorization header, verifies it, and attaches the claims to
// the request context. Missing or invalid tokens fail closed with 401.
// Claims embedded at issuance are trusted for the token's lifetime; the
// user row is not re-fetched per request.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			message := "Invalid or expired token"
			if errors.Is(err, echojwt.ErrJWTMissing) {
				message = "Authentication required"
			}
			return c.JSON(http.StatusUnauthorized, apperrors.New(message))
		},
	})
}

// ClaimsFrom extracts the verified claims the JWT middleware attached to
// the context.
func ClaimsFrom(c echo.Context) (*auth.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("no token in request context")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

// RawToken returns the bearer token string from the Authorization header,
// or "" if absent or malformed.
func RawToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}
