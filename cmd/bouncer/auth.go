package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// Establishes the acting user from a platform session token, when one is
// presented. Submissions may be anonymous, so a missing token is not an
// error here; endpoints which require identity (reports) enforce it
// themselves. A token that is present but invalid is always rejected.
func (s *Server) actorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		hdr := c.Request().Header.Get(echo.HeaderAuthorization)
		if hdr == "" {
			return next(c)
		}
		raw, ok := strings.CutPrefix(hdr, "Bearer ")
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "session token missing subject")
		}
		c.Set(actorContextKey, sub)
		return next(c)
	}
}

// actorID returns the authenticated user's identifier, or empty string for
// anonymous requests.
func actorID(c echo.Context) string {
	if v, ok := c.Get(actorContextKey).(string); ok {
		return v
	}
	return ""
}
