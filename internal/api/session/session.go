// Package session binds a server-side domain.Session to each request.
//
// The browser holds a cookie whose value is an HS256 JWT carrying an opaque
// random session id ("sid"). The id is resolved against a ports.SessionStore
// on every request by Middleware and exposed to handlers through From.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

const (
	CookieName = "portal_session"

	ctxSession = "session"
	ctxToken   = "session_token"

	tokenBytes = 32
)

type Options struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

type Manager struct {
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

func NewManager(store ports.SessionStore, opts Options, log zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		secure: opts.Secure,
		log:    log,
		now:    time.Now,
	}
}

type tokenClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Middleware loads the session named by the request cookie. Requests without
// a valid cookie, or whose session is gone or expired, get an anonymous one.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			Attach(c, m.load(c))
			return next(c)
		}
	}
}

func (m *Manager) load(c echo.Context) *domain.Session {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return &domain.Session{}
	}

	token, err := m.parse(cookie.Value)
	if err != nil {
		m.log.Debug().Err(err).Msg("rejected session cookie")
		return &domain.Session{}
	}

	sess, err := m.store.Load(c.Request().Context(), token)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return &domain.Session{}
	case err != nil:
		m.log.Error().Err(err).Msg("failed to load session")
		return &domain.Session{}
	}
	if sess.IsExpiredAt(m.now()) {
		return &domain.Session{}
	}

	c.Set(ctxToken, token)
	return sess
}

// From returns the request's session. It is never nil; without Middleware
// the request is anonymous.
func From(c echo.Context) *domain.Session {
	if s, ok := c.Get(ctxSession).(*domain.Session); ok && s != nil {
		return s
	}
	s := &domain.Session{}
	Attach(c, s)
	return s
}

// Attach binds s to the request in place of whatever Middleware loaded.
func Attach(c echo.Context, s *domain.Session) {
	c.Set(ctxSession, s)
}

// Authenticate binds user to a fresh session id and stores it. Any session
// the request already had is discarded so an id issued before login is never
// promoted to an authenticated one.
func (m *Manager) Authenticate(c echo.Context, user *domain.User) error {
	ctx := c.Request().Context()

	if old, ok := c.Get(ctxToken).(string); ok && old != "" {
		if err := m.store.Destroy(ctx, old); err != nil {
			m.log.Warn().Err(err).Msg("failed to discard previous session")
		}
	}

	token, err := newToken()
	if err != nil {
		return err
	}

	now := m.now()
	sess := From(c)
	sess.Authenticate(user, now, m.ttl)

	if err := m.store.Save(ctx, token, sess); err != nil {
		sess.Clear()
		return fmt.Errorf("save session: %w", err)
	}

	signed, err := m.sign(token, now)
	if err != nil {
		return err
	}

	c.Set(ctxToken, token)
	c.SetCookie(m.cookie(signed, int(m.ttl.Seconds())))
	return nil
}

// Destroy removes the session from the store and expires the cookie. The
// request continues as anonymous. ended reports whether a stored session was
// removed.
func (m *Manager) Destroy(c echo.Context) (ended bool, err error) {
	From(c).Clear()
	c.SetCookie(m.cookie("", -1))

	token, ok := c.Get(ctxToken).(string)
	if !ok || token == "" {
		return false, nil
	}
	c.Set(ctxToken, "")
	if err := m.store.Destroy(c.Request().Context(), token); err != nil {
		return false, fmt.Errorf("destroy session: %w", err)
	}
	return true, nil
}

func (m *Manager) sign(token string, now time.Time) (string, error) {
	claims := tokenClaims{
		SID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parse(value string) (string, error) {
	var claims tokenClaims
	tkn, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.SID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.SID, nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
