package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// Identity resolves the acting user from the X-User-ID header and
// stores the ID on the request context. Requests without a valid
// header are rejected.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("X-User-ID")
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing X-User-ID header")
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid X-User-ID header")
			}

			c.Set(userIDKey, id)
			return next(c)
		}
	}
}

// UserID returns the user ID set by Identity, or 0 when absent.
func UserID(c echo.Context) int64 {
	if id, ok := c.Get(userIDKey).(int64); ok {
		return id
	}
	return 0
}
