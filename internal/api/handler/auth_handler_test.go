package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/members-portal/internal/api/metrics"
	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func signupValues(username, email, password string) url.Values {
	return url.Values{"username": {username}, "email": {email}, "password": {password}}
}

func TestAuthHandler_SubmitUser_Success(t *testing.T) {
	e := newTestEcho(t)
	store := newMemSessionStore()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "a@x.com" || in.Password != "pw1234" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{Username: in.Username, Email: in.Email, UserType: domain.UserTypeUser}, nil
		},
	}
	h := NewAuthHandler(stub, newTestSessions(store), zerolog.Nop())

	c, rec := postForm(e, "/submitUser", signupValues("alice", "a@x.com", "pw1234"))
	if err := h.SubmitUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	expectRedirect(t, rec, "/member")
	if !hasSessionCookie(rec) {
		t.Fatalf("expected a session cookie")
	}

	sessions := store.authenticated()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 stored session, got %d", len(sessions))
	}
	if sessions[0].Username != "alice" || sessions[0].UserType != domain.UserTypeUser {
		t.Fatalf("unexpected session: %+v", sessions[0])
	}
}

func TestAuthHandler_SubmitUser_Rejected(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		err    error
		code   int
		body   string
	}{
		{"missing email", signupValues("alice", "", "pw"), nil, http.StatusBadRequest, "email is required"},
		{"bad username", signupValues("al ice", "a@x.com", "pw"), nil, http.StatusBadRequest,
			"Error: username must only contain alpha-numeric characters."},
		{"email exists", signupValues("bob", "a@x.com", "pw"), domain.ErrEmailExists, http.StatusConflict, "Email already exists"},
		{"username exists", signupValues("alice", "b@x.com", "pw"), domain.ErrUsernameExists, http.StatusConflict, "Username already exists"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(t)
			store := newMemSessionStore()
			called := false
			stub := &stubAuthService{
				registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
					called = true
					return nil, tc.err
				},
			}
			h := NewAuthHandler(stub, newTestSessions(store), zerolog.Nop())

			c, rec := postForm(e, "/submitUser", tc.values)
			if err := h.SubmitUser(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			expectPage(t, rec, tc.code, tc.body, `href="/signup"`)
			if called != (tc.err != nil) {
				t.Fatalf("service called = %v", called)
			}
			if hasSessionCookie(rec) {
				t.Fatalf("rejected signup set a session cookie")
			}
			if n := len(store.authenticated()); n != 0 {
				t.Fatalf("expected no stored session, got %d", n)
			}
		})
	}
}

func TestAuthHandler_SubmitUser_StoreErrorIsReturned(t *testing.T) {
	e := newTestEcho(t)
	storeErr := errors.New("mongo unavailable")
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) { return nil, storeErr },
	}
	h := NewAuthHandler(stub, newTestSessions(newMemSessionStore()), zerolog.Nop())

	c, _ := postForm(e, "/submitUser", signupValues("alice", "a@x.com", "pw"))
	if err := h.SubmitUser(c); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthHandler_LoggingIn_Success(t *testing.T) {
	e := newTestEcho(t)
	store := newMemSessionStore()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "a@x.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.User{Username: "alice", Email: email, UserType: domain.UserTypeAdmin}, nil
		},
	}
	h := NewAuthHandler(stub, newTestSessions(store), zerolog.Nop())

	c, rec := postForm(e, "/loggingIn", url.Values{"email": {"a@x.com"}, "password": {"secret"}})
	if err := h.LoggingIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	expectRedirect(t, rec, "/member")
	sessions := store.authenticated()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 stored session, got %d", len(sessions))
	}
	if !sessions[0].IsAdmin() || sessions[0].Email != "a@x.com" {
		t.Fatalf("unexpected session: %+v", sessions[0])
	}
}

func TestAuthHandler_LoggingIn_Rejected(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		err    error
		code   int
		body   string
	}{
		{"missing email", url.Values{"password": {"x"}}, nil, http.StatusBadRequest, "Please fill out both email and password fields."},
		{"email too long", url.Values{"email": {"someone.long@example.com"}, "password": {"x"}}, nil, http.StatusBadRequest,
			"Please fill out both email and password fields."},
		{"unknown email", url.Values{"email": {"ghost@x.com"}, "password": {"x"}}, domain.ErrUserNotFound, http.StatusNotFound,
			"User does not exist"},
		{"wrong password", url.Values{"email": {"a@x.com"}, "password": {"bad"}}, domain.ErrInvalidCredentials, http.StatusUnauthorized,
			"Incorrect email/password combination"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(t)
			store := newMemSessionStore()
			stub := &stubAuthService{
				loginFn: func(context.Context, string, string) (*domain.User, error) { return nil, tc.err },
			}
			h := NewAuthHandler(stub, newTestSessions(store), zerolog.Nop())

			c, rec := postForm(e, "/loggingIn", tc.values)
			if err := h.LoggingIn(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			expectPage(t, rec, tc.code, tc.body, `href="/login"`)
			if session.From(c).Authenticated {
				t.Fatalf("failed login left the request authenticated")
			}
			if n := len(store.authenticated()); n != 0 {
				t.Fatalf("expected no stored session, got %d", n)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho(t)
	store := newMemSessionStore()
	sessions := newTestSessions(store)
	h := NewAuthHandler(&stubAuthService{}, sessions, zerolog.Nop())

	c, rec := get(e, "/logout", nil)
	if err := sessions.Authenticate(c, &domain.User{Username: "alice"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if n := len(store.authenticated()); n != 1 {
		t.Fatalf("expected 1 stored session, got %d", n)
	}

	before := testutil.ToFloat64(metrics.SessionsDestroyedTotal)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	expectRedirect(t, rec, "/")
	if session.From(c).Authenticated {
		t.Fatalf("session still authenticated after logout")
	}
	if n := len(store.authenticated()); n != 0 {
		t.Fatalf("expected stored session removed, %d left", n)
	}
	if got := testutil.ToFloat64(metrics.SessionsDestroyedTotal) - before; got != 1 {
		t.Fatalf("expected one destroyed session counted, got %v", got)
	}
}

func TestAuthHandler_Logout_Anonymous(t *testing.T) {
	e := newTestEcho(t)
	h := NewAuthHandler(&stubAuthService{}, newTestSessions(newMemSessionStore()), zerolog.Nop())

	before := testutil.ToFloat64(metrics.SessionsDestroyedTotal)
	c, rec := get(e, "/logout", nil)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	expectRedirect(t, rec, "/")
	if got := testutil.ToFloat64(metrics.SessionsDestroyedTotal) - before; got != 0 {
		t.Fatalf("logout without a session counted %v destroyed sessions", got)
	}
}

func TestAuthHandler_LoggedIn(t *testing.T) {
	e := newTestEcho(t)
	h := NewAuthHandler(&stubAuthService{}, newTestSessions(newMemSessionStore()), zerolog.Nop())

	c, rec := get(e, "/loggedin", &domain.Session{Authenticated: true})
	if err := h.LoggedIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/member")

	c, rec = get(e, "/loggedin", nil)
	if err := h.LoggedIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectRedirect(t, rec, "/")
}
