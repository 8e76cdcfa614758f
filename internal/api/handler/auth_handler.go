package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/api/metrics"
	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/api/view"
	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

const (
	msgLoginFields       = "Please fill out both email and password fields."
	msgUserNotFound      = "User does not exist"
	msgBadPassword       = "Incorrect email/password combination"
	msgEmailExists       = "Email already exists"
	msgUsernameExists    = "Username already exists"
	msgInvalidSubmission = "Invalid form submission."
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    *session.Manager
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions *session.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

type signupForm struct {
	Username string `form:"username" validate:"required,alphanum,max=20"`
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required,max=20"`
}

type loginForm struct {
	Email    string `form:"email"    validate:"required,max=20"`
	Password string `form:"password"`
}

// SignupForm renders the registration form.
//
// @Summary      Registration form
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /signup [get]
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.Signup, view.Page{Title: "Sign up"})
}

// SubmitUser creates an account and logs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username  formData  string  true  "Alphanumeric, at most 20 characters"
// @Param        email     formData  string  true  "Email address"
// @Param        password  formData  string  true  "At most 20 characters"
// @Success      302  "Redirect to /member"
// @Failure      400  "Missing or invalid field"
// @Failure      409  "Email or username already exists"
// @Failure      500  "Store failure"
// @Router       /submitUser [post]
func (h *AuthHandler) SubmitUser(c echo.Context) error {
	var form signupForm
	if err := c.Bind(&form); err != nil {
		return renderMessage(c, http.StatusBadRequest, msgInvalidSubmission, "/signup")
	}
	if err := c.Validate(&form); err != nil {
		return h.authFailure(c, metrics.OpRegister, err)
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return h.authFailure(c, metrics.OpRegister, err)
	}

	if err := h.sessions.Authenticate(c, user); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.OpRegister, "error").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues(metrics.OpRegister, "success").Inc()
	return c.Redirect(http.StatusFound, "/member")
}

// LoginForm renders the login form.
//
// @Summary      Login form
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /login [get]
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.Login, view.Page{Title: "Log in"})
}

// LoggingIn authenticates the session against the credential store.
//
// @Summary      Log in
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        email     formData  string  true  "At most 20 characters"
// @Param        password  formData  string  true  "Password"
// @Success      302  "Redirect to /member"
// @Failure      400  "Missing email"
// @Failure      401  "Incorrect email/password combination"
// @Failure      404  "User does not exist"
// @Failure      500  "Store failure"
// @Router       /loggingIn [post]
func (h *AuthHandler) LoggingIn(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return renderMessage(c, http.StatusBadRequest, msgInvalidSubmission, "/login")
	}
	if err := c.Validate(&form); err != nil {
		return h.authFailure(c, metrics.OpLogin, err)
	}

	user, err := h.authService.Login(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		return h.authFailure(c, metrics.OpLogin, err)
	}

	if err := h.sessions.Authenticate(c, user); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.OpLogin, "error").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues(metrics.OpLogin, "success").Inc()
	return c.Redirect(http.StatusFound, "/member")
}

// LoggedIn sends authenticated sessions to the members area and everyone
// else home.
func (h *AuthHandler) LoggedIn(c echo.Context) error {
	if session.From(c).Authenticated {
		return c.Redirect(http.StatusFound, "/member")
	}
	return c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session.
//
// @Summary      Log out
// @Tags         auth
// @Success      302  "Redirect to /"
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	username := session.From(c).Username
	ended, err := h.sessions.Destroy(c)
	switch {
	case err != nil:
		h.log.Error().Err(err).Str("username", username).Msg("failed to destroy session")
	case ended:
		metrics.SessionsDestroyedTotal.Inc()
		if username != "" {
			h.log.Info().Str("username", username).Msg("logged out")
		}
	}
	return c.Redirect(http.StatusFound, "/")
}

// authFailure renders the user-facing outcome of a failed registration or
// login. Unexpected errors are returned for the HTTP error handler.
func (h *AuthHandler) authFailure(c echo.Context, op string, err error) error {
	retry := "/signup"
	if op == metrics.OpLogin {
		retry = "/login"
	}

	var (
		status int
		msg    string
		result string
		ve     *domain.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		status, msg, result = http.StatusBadRequest, ve.Message, "invalid_input"
		if op == metrics.OpLogin {
			msg = msgLoginFields
		}
	case errors.Is(err, domain.ErrEmailExists):
		status, msg, result = http.StatusConflict, msgEmailExists, "conflict"
	case errors.Is(err, domain.ErrUsernameExists):
		status, msg, result = http.StatusConflict, msgUsernameExists, "conflict"
	case errors.Is(err, domain.ErrUserNotFound):
		status, msg, result = http.StatusNotFound, msgUserNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, msg, result = http.StatusUnauthorized, msgBadPassword, "bad_password"
	default:
		metrics.AuthAttemptsTotal.WithLabelValues(op, "error").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues(op, result).Inc()
	h.log.Debug().Str("operation", op).Str("result", result).Msg("auth attempt rejected")
	return renderMessage(c, status, msg, retry)
}

func renderMessage(c echo.Context, status int, msg, retryURL string) error {
	return c.Render(status, view.Message, view.Page{Message: msg, RetryURL: retryURL})
}
