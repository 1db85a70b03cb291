package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoIdentity   = errors.New("no authenticated identity on request")
)

// userIDContextKey is where Middleware stores the authenticated user ID on
// the echo context.
const userIDContextKey = "auth.user_id"

// Middleware rejects requests without a valid bearer token and records the
// authenticated user ID for GetUserIDFromContext.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := bearerUserID(c.Request().Header.Get("Authorization"))
		switch {
		case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case err != nil:
			return echo.NewHTTPError(http.StatusInternalServerError, "auth configuration error")
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

// bearerUserID validates an Authorization header value and returns the user
// ID carried in the token's subject claim.
func bearerUserID(header string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return uuid.Nil, ErrMissingToken
	}

	secret, err := jwtSecretFromEnv()
	if err != nil {
		return uuid.Nil, err
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// GetUserIDFromContext retrieves the user ID set by Middleware.
func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(userIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoIdentity
	}
	return id, nil
}
