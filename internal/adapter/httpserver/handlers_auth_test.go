package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginRequest(csrf *http.Cookie, username, password string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	if csrf != nil {
		form.Set(csrfTokenCookieName, csrf.Value)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if csrf != nil {
		req.AddCookie(csrf)
	}
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			found = c
		}
	}
	return found
}

func TestLoginPage(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	t.Run("renders with a CSRF token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Login "))
		assert.Greater(t, len(strings.TrimSpace(strings.TrimPrefix(rec.Body.String(), "Login "))), 0)
	})

	t.Run("redirects a signed in admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		setSessionAdmin(t, srv, req, "admin")
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, formHome, rec.Header().Get("Location"))
	})
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})
	csrf := csrfCookie(t, srv, formHome)

	t.Run("valid credentials start a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, loginRequest(csrf, "admin", "secret"))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, formHome, rec.Header().Get("Location"))
		cookie := sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.Positive(t, cookie.MaxAge)

		next := httptest.NewRequest(http.MethodGet, formHome, nil)
		next.AddCookie(cookie)
		nextRec := httptest.NewRecorder()
		srv.echo.ServeHTTP(nextRec, next)
		assert.Equal(t, http.StatusOK, nextRec.Code)
	})

	t.Run("wrong password re-renders the form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, loginRequest(csrf, "admin", "nope"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid username or password")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("missing CSRF token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, loginRequest(nil, "admin", "secret"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin_UnexpectedError(t *testing.T) {
	srv := newTestServer(t, &mockAppService{
		loginFn: func(string, string) error { return errors.New("boom") },
	})
	csrf := csrfCookie(t, srv, formHome)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, loginRequest(csrf, "admin", "secret"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to verify credentials")
}

func TestLogin_RateLimited(t *testing.T) {
	srv := newTestServer(t, &mockAppService{}, withRateLimit(0.01, 1))
	csrf := csrfCookie(t, srv, formHome)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, loginRequest(csrf, "admin", "nope"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, loginRequest(csrf, "admin", "secret"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})
	csrf := csrfCookie(t, srv, formHome)

	form := url.Values{}
	form.Set(csrfTokenCookieName, csrf.Value)
	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)
	setSessionAdmin(t, srv, req, "admin")
	rec := httptest.NewRecorder()

	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)
}

func TestRequireAuth_RedirectsPages(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	for _, path := range []string{formHome, "/form/existing-client", "/success?type=client", "/error?msg=x"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}
