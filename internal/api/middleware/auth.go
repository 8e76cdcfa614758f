package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/members-portal/internal/api/session"
)

// RequireAuthenticated lets authenticated sessions through and silently
// redirects everyone else to the login form.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !session.From(c).Authenticated {
				return c.Redirect(http.StatusFound, "/login")
			}
			return next(c)
		}
	}
}
