package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/api/view"
	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders the 404 page for unknown routes.
//   - Maps known domain errors to their status codes and messages.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		var renderErr error
		if code == http.StatusNotFound && msg == "" {
			renderErr = c.Render(code, view.NotFound, view.Page{Title: "Not found"})
		} else {
			renderErr = c.Render(code, view.Message, view.Page{Message: msg, RetryURL: "/"})
		}
		if renderErr != nil {
			log.Error().Err(renderErr).Msg("failed to render error page")
			_ = c.String(code, msg)
		}
	}
}

// resolveError returns the status and message for err. An empty message
// with 404 selects the not-found page.
func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			return http.StatusNotFound, ""
		}
		if he.Internal != nil {
			log.Warn().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgBadPassword
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, msgUserNotFound
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusConflict, msgEmailExists
	case errors.Is(err, domain.ErrUsernameExists):
		return http.StatusConflict, msgUsernameExists
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgInternal
}

const (
	msgBadPassword    = "Incorrect email/password combination"
	msgUserNotFound   = "User does not exist"
	msgEmailExists    = "Email already exists"
	msgUsernameExists = "Username already exists"
	msgInternal       = "Something went wrong. Please try again later."
)
