package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/infrastructure/security"
)

type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (r *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailExists
		}
		if existing.Username == u.Username {
			return nil, domain.ErrUsernameExists
		}
	}
	clone := *u
	clone.ID = u.Username
	r.users = append(r.users, &clone)
	out := clone
	return &out, nil
}

func (r *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memUsers) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memUsers) SetUserType(_ context.Context, username string, t domain.UserType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u.UserType = t
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func (s *memSessions) Load(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *memSessions) Save(_ context.Context, token string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = *sess
	return nil
}

func (s *memSessions) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type portal struct {
	t     *testing.T
	e     *echo.Echo
	users *memUsers
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	users := &memUsers{}
	e, err := NewRouter(Dependencies{
		Log:               zerolog.Nop(),
		Users:             users,
		Sessions:          &memSessions{sessions: map[string]domain.Session{}},
		Hasher:            security.NewBcryptHasher(bcrypt.MinCost),
		Session:           session.Options{Secret: "test-secret", TTL: time.Hour},
		MetricsRegisterer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return &portal{t: t, e: e, users: users}
}

// browser keeps the session cookie between requests.
type browser struct {
	p      *portal
	cookie *http.Cookie
}

func (p *portal) browser() *browser { return &browser{p: p} }

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.p.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name != session.CookieName {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			b.cookie = nil
		} else {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) signup(username, email, password string) *httptest.ResponseRecorder {
	return b.post("/submitUser", url.Values{"username": {username}, "email": {email}, "password": {password}})
}

func (b *browser) login(email, password string) *httptest.ResponseRecorder {
	return b.post("/loggingIn", url.Values{"email": {email}, "password": {password}})
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, location, rec.Header().Get(echo.HeaderLocation))
}

func TestPortal_AliceAndBob(t *testing.T) {
	p := newPortal(t)
	alice := p.browser()
	bob := p.browser()

	assertRedirect(t, alice.signup("alice", "a@x.com", "alicepw"), "/member")
	assertRedirect(t, bob.signup("bob", "b@x.com", "bobpw"), "/member")

	rec := bob.get("/member")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello, bob.")

	// alice is bootstrapped to admin out of band and picks the role up on her next login.
	require.NoError(t, p.users.SetUserType(context.Background(), "alice", domain.UserTypeAdmin))
	assertRedirect(t, alice.login("a@x.com", "alicepw"), "/member")

	rec = alice.get("/admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
	assert.Contains(t, rec.Body.String(), "b@x.com")

	rec = bob.get("/admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Authorized")

	assertRedirect(t, alice.get("/promote/bob"), "/admin")
	u, err := p.users.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeAdmin, u.UserType)

	assertRedirect(t, alice.get("/demote/bob"), "/admin")
	u, err = p.users.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeUser, u.UserType)

	assertRedirect(t, bob.get("/logout"), "/")
	assertRedirect(t, bob.get("/member"), "/login")
}

func TestPortal_AdminMutationsRejectNonAdmins(t *testing.T) {
	p := newPortal(t)
	bob := p.browser()
	assertRedirect(t, bob.signup("bob", "b@x.com", "bobpw"), "/member")
	anon := p.browser()

	for _, path := range []string{"/admin", "/promote/bob", "/demote/bob"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, bob.get(path).Code)
			assertRedirect(t, anon.get(path), "/login")
		})
	}

	u, err := p.users.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeUser, u.UserType)
}

func TestPortal_RegistrationAndLoginFailures(t *testing.T) {
	p := newPortal(t)
	b := p.browser()

	rec := b.signup("alice", "", "pw")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is required")
	assert.Empty(t, p.users.users)

	assertRedirect(t, b.signup("alice", "a@x.com", "pw"), "/member")
	assertRedirect(t, b.get("/logout"), "/")

	other := p.browser()
	rec = other.signup("carol", "a@x.com", "pw")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists")
	assert.Len(t, p.users.users, 1)
	assert.Nil(t, other.cookie)

	rec = other.login("ghost@x.com", "pw")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User does not exist")

	rec = other.login("a@x.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect email/password combination")
	assertRedirect(t, other.get("/member"), "/login")

	assertRedirect(t, other.post("/loggingin", url.Values{"email": {"a@x.com"}, "password": {"pw"}}), "/member")
	assert.Equal(t, http.StatusOK, other.get("/member").Code)
}

func TestPortal_WideCharacterPassword(t *testing.T) {
	p := newPortal(t)
	b := p.browser()
	pw := strings.Repeat("😀", 19)

	assertRedirect(t, b.signup("dave", "d@x.com", pw), "/member")
	assertRedirect(t, b.get("/logout"), "/")

	assertRedirect(t, b.login("d@x.com", pw), "/member")
	assert.Equal(t, http.StatusOK, b.get("/member").Code)
}

func TestPortal_NotFoundAndProbes(t *testing.T) {
	p := newPortal(t)
	b := p.browser()

	rec := b.get("/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found - 404")

	assert.Equal(t, http.StatusOK, b.get("/health").Code)
	assert.Equal(t, http.StatusOK, b.get("/health/ready").Code)
	assert.Equal(t, http.StatusOK, b.get("/metrics").Code)
}
