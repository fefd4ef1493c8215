package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/windbnb/booking-service/pkg/token"
)

const userIDKey = "user_id"

// Auth requires a valid bearer token and stores the caller's user id in the context.
func Auth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			if h == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !strings.HasPrefix(h, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "empty token")
			}

			claims, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			SetUserID(c, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or 0 outside Auth.
func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}

// SetUserID records id as the acting user for the rest of the request.
func SetUserID(c echo.Context, id uint) {
	c.Set(userIDKey, id)
}
