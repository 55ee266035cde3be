package api

import (
	"crypto/subtle"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

// AdminSecret guards the operator endpoints with a shared secret header,
// separate from customer auth.
func AdminSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get("X-Admin-Secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return c.JSON(401, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}

// sessionToken returns the JWT set by echo-jwt along with its typed claims.
func sessionToken(c echo.Context) (*jwt.Token, *service.JwtCustomClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, nil, errors.New("missing token")
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	if !ok || claims.UserID == "" {
		return nil, nil, errors.New("invalid token claims")
	}
	return token, claims, nil
}

// userID extracts the authenticated user's id from the JWT set by echo-jwt.
func userID(c echo.Context) (string, error) {
	_, claims, err := sessionToken(c)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// httpError maps service errors onto status codes and the error JSON shape.
func httpError(c echo.Context, err error) error {
	var stockErr *service.StockError
	var notFound *service.CardNotFoundError

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(401, map[string]string{"error": "USER_NOT_FOUND"})
	case errors.Is(err, service.ErrInvalidLogin):
		return c.JSON(401, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrPostNotFound):
		return c.JSON(404, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrInvalidShipping),
		errors.Is(err, service.ErrCountryNotAllowed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrMissingTracking):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.As(err, &stockErr), errors.As(err, &notFound):
		return c.JSON(400, map[string]string{"error": err.Error()})
	default:
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
}
