package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/api/metrics"
	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/api/view"
	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

const (
	msgUpdateFailed = "Error updating user"

	maxLookupLen = 20
)

type PageHandler struct {
	userService ports.UserService
	log         zerolog.Logger
}

func NewPageHandler(userService ports.UserService, log zerolog.Logger) *PageHandler {
	return &PageHandler{userService: userService, log: log}
}

// Home renders the landing page for anonymous and authenticated sessions.
//
// @Summary      Landing page
// @Tags         pages
// @Produce      html
// @Success      200
// @Router       / [get]
func (h *PageHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, view.Home, view.Page{})
}

// Member renders the members area.
//
// @Summary      Members area
// @Tags         pages
// @Produce      html
// @Success      200
// @Success      302  "Redirect to /login when not authenticated"
// @Router       /member [get]
func (h *PageHandler) Member(c echo.Context) error {
	return c.Render(http.StatusOK, view.Member, view.Page{Title: "Members"})
}

// Admin lists every account.
//
// @Summary      User administration
// @Tags         admin
// @Produce      html
// @Success      200
// @Success      302  "Redirect to /login when not authenticated"
// @Failure      403  "Not Authorized"
// @Router       /admin [get]
func (h *PageHandler) Admin(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.Admin, view.Page{Title: "Admin", Users: users})
}

// Promote grants the admin role.
//
// @Summary      Promote a user to admin
// @Tags         admin
// @Param        username  path  string  true  "Username"
// @Success      302  "Redirect to /admin"
// @Failure      403  "Not Authorized"
// @Failure      404  "Error updating user"
// @Failure      500  "Error updating user"
// @Router       /promote/{username} [get]
func (h *PageHandler) Promote(c echo.Context) error {
	return h.changeUserType(c, domain.UserTypeAdmin, h.userService.Promote)
}

// Demote returns a user to the plain role.
//
// @Summary      Demote a user to user
// @Tags         admin
// @Param        username  path  string  true  "Username"
// @Success      302  "Redirect to /admin"
// @Failure      403  "Not Authorized"
// @Failure      404  "Error updating user"
// @Failure      500  "Error updating user"
// @Router       /demote/{username} [get]
func (h *PageHandler) Demote(c echo.Context) error {
	return h.changeUserType(c, domain.UserTypeUser, h.userService.Demote)
}

func (h *PageHandler) changeUserType(c echo.Context, t domain.UserType, apply func(ctx context.Context, username string) error) error {
	username := c.Param("username")
	if err := apply(c.Request().Context(), username); err != nil {
		metrics.RoleChangesTotal.WithLabelValues(t.String(), "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		return renderMessage(c, status, msgUpdateFailed, "/admin")
	}

	metrics.RoleChangesTotal.WithLabelValues(t.String(), "success").Inc()
	h.log.Info().
		Str("by", session.From(c).Username).
		Str("username", username).
		Str("user_type", t.String()).
		Msg("user type updated")
	return c.Redirect(http.StatusFound, "/admin")
}

// NoSQLInjection greets the user named in the query and refuses inputs shaped
// like MongoDB query operators.
//
// @Summary      Username lookup demo
// @Tags         pages
// @Produce      html
// @Param        user  query  string  false  "Username, at most 20 characters"
// @Success      200
// @Success      302  "Redirect to /login on operator-shaped input"
// @Router       /nosql-injection [get]
func (h *PageHandler) NoSQLInjection(c echo.Context) error {
	params := c.QueryParams()
	for key := range params {
		if strings.HasPrefix(key, "user[") {
			return h.injectionDetected(c, key)
		}
	}

	username := c.QueryParam("user")
	if username == "" {
		return c.Render(http.StatusOK, view.NoSQL, view.Page{Title: "Lookup"})
	}
	if len(params["user"]) > 1 || len(username) > maxLookupLen {
		return h.injectionDetected(c, "user")
	}

	user, err := h.userService.GetUser(c.Request().Context(), username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		h.log.Info().Str("user", username).Msg("lookup found no user")
	case err != nil:
		h.log.Error().Err(err).Str("user", username).Msg("lookup failed")
	default:
		h.log.Info().Str("user", user.Username).Str("email", user.Email).Msg("lookup found user")
	}

	return c.Render(http.StatusOK, view.NoSQL, view.Page{Title: "Lookup", Message: username})
}

func (h *PageHandler) injectionDetected(c echo.Context, key string) error {
	h.log.Warn().
		Str("param", key).
		Str("remote_ip", c.RealIP()).
		Msg("NoSQL injection attempt detected")
	return c.Redirect(http.StatusFound, "/login")
}
