package accounts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-adoption-portal/internal/ports/auth"
)

type testRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func newTestRepo() *testRepo { return &testRepo{users: map[string]User{}} }

func (r *testRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.find(func(u User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *testRepo) find(match func(User) bool) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

type stubIssuer struct{ issued []auth.Claims }

func (s *stubIssuer) Issue(ctx context.Context, c auth.Claims) (string, time.Time, error) {
	s.issued = append(s.issued, c)
	return "token-" + c.UserID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newTestService(opts ...Option) (*Service, *testRepo, *stubIssuer) {
	repo := newTestRepo()
	iss := &stubIssuer{}
	return NewService(repo, iss, opts...), repo, iss
}

func register(t *testing.T, svc *Service, username, email string) User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username, Email: email, Password1: "s3creta-larga", Password2: "s3creta-larga",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "Ana", "ana@example.com")

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "x@example.com", Password1: "12345678", Password2: "12345678"}, "username"},
		{"username taken ignoring case", RegisterInput{Username: "ANA", Email: "x@example.com", Password1: "12345678", Password2: "12345678"}, "username"},
		{"email taken ignoring case", RegisterInput{Username: "otra", Email: "ANA@Example.com", Password1: "12345678", Password2: "12345678"}, "email"},
		{"bad email", RegisterInput{Username: "otra", Email: "ana@", Password1: "12345678", Password2: "12345678"}, "email"},
		{"short password", RegisterInput{Username: "otra", Email: "x@example.com", Password1: "1234567", Password2: "1234567"}, "password1"},
		{"missing confirmation", RegisterInput{Username: "otra", Email: "x@example.com", Password1: "12345678"}, "password2"},
		{"mismatch", RegisterInput{Username: "otra", Email: "x@example.com", Password1: "12345678", Password2: "12345679"}, "password2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, repo, _ := newTestService()
	u := register(t, svc, "ana", "ana@example.com")

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.PasswordHash, "s3creta")
	assert.NotEmpty(t, stored.PasswordSalt)
	assert.False(t, stored.Staff)

	ok, err := verifyPassword("s3creta-larga", stored.PasswordSalt, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = verifyPassword("otra-cosa", stored.PasswordSalt, stored.PasswordHash)
	assert.False(t, ok)
}

func TestLogin_UsernameThenEmail(t *testing.T) {
	svc, _, iss := newTestService()
	u := register(t, svc, "ana", "Ana@Example.com")

	for _, ident := range []string{"ana", "ANA", "ana@example.com", " ANA@EXAMPLE.COM "} {
		sess, err := svc.Login(context.Background(), LoginInput{Identifier: ident, Password: "s3creta-larga"})
		require.NoError(t, err, ident)
		assert.Equal(t, u.ID, sess.User.ID)
		assert.Equal(t, "token-"+u.ID, sess.Token)
	}
	require.Len(t, iss.issued, 4)
	assert.Equal(t, "ana", iss.issued[0].Username)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "ana", Password: "incorrecta"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Identifier: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_RateLimitedPerIP(t *testing.T) {
	svc, _, _ := newTestService(WithLimiter(NewLimiter(time.Hour, 2)))
	in := LoginInput{Identifier: "nadie", Password: "x", ClientIP: "10.0.0.1"}

	for i := 0; i < 2; i++ {
		_, err := svc.Login(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := svc.Login(context.Background(), in)
	assert.ErrorIs(t, err, ErrRateLimited)

	in.ClientIP = "10.0.0.2"
	_, err = svc.Login(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateModerator_IsStaff(t *testing.T) {
	svc, _, _ := newTestService()
	u, err := svc.CreateModerator(context.Background(), "mod", "mod@example.com", "moderador-1")
	require.NoError(t, err)

	ok, err := svc.IsStaff(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsStaff(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginHandler_SetsCookieAndRedirects(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "ana", "ana@example.com")

	r := chi.NewRouter()
	RegisterRoutes(r, svc, HandlerOptions{CookieName: "sessionid"})

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/accounts/login/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := post(url.Values{"usuario_o_email": {"ana@example.com"}, "password": {"s3creta-larga"}, "next": {"/publicar/?modo=form"}})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/publicar/?modo=form", rr.Header().Get("Location"))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sessionid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rr = post(url.Values{"usuario_o_email": {"ana"}, "password": {"s3creta-larga"}, "next": {"//evil.example"}})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = post(url.Values{"usuario_o_email": {"ana"}, "password": {"mal"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfileHandler_RequiresSession(t *testing.T) {
	svc, _, _ := newTestService()
	r := chi.NewRouter()
	RegisterRoutes(r, svc, HandlerOptions{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts/profile/", nil))
	require.Equal(t, http.StatusFound, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "/accounts/login/?next="))
}
