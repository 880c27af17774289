package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"esecretary/internal/auth"
	apperrors "esecretary/internal/errors"
	"esecretary/internal/middleware"
)

var errNoIdentity = errors.New("no verified identity in request context")

// identity returns the verified claims and parsed user id attached by the
// auth gateway. Failure means the middleware did not run or the claims are
// malformed; callers translate it to 401.
func identity(c echo.Context) (uuid.UUID, *auth.Claims, error) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		return uuid.Nil, nil, errNoIdentity
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, nil, errNoIdentity
	}
	return userID, claims, nil
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, apperrors.New("Invalid or expired token"))
}
