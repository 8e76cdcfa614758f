package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/api/view"
)

// RequireAdmin answers 403 with the Not Authorized page unless the session
// holds the admin role. Compose it after RequireAuthenticated.
func RequireAdmin(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.From(c)
			if !s.IsAdmin() {
				log.Warn().
					Str("username", s.Username).
					Str("path", c.Request().URL.Path).
					Msg("admin route refused")
				return c.Render(http.StatusForbidden, view.NotAuthorized, view.Page{Title: "Not Authorized", Session: s})
			}
			return next(c)
		}
	}
}
