package httpserver

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/mikeohgml-jpg/coaching-portal/internal/app"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockAppService struct {
	registerClientFn  func(ctx context.Context, req app.NewClientRequest) (*app.RegistrationResult, error)
	recordSessionFn   func(ctx context.Context, req app.SessionRequest) (*app.SessionResult, error)
	listClientItemsFn func(ctx context.Context) ([]app.ClientItem, error)
	clientHistoryFn   func(ctx context.Context, name string) ([]app.SessionItem, error)
	loginFn           func(username, password string) error
}

func (m *mockAppService) RegisterClient(ctx context.Context, req app.NewClientRequest) (*app.RegistrationResult, error) {
	if m.registerClientFn != nil {
		return m.registerClientFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) RecordSession(ctx context.Context, req app.SessionRequest) (*app.SessionResult, error) {
	if m.recordSessionFn != nil {
		return m.recordSessionFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) ListClientItems(ctx context.Context) ([]app.ClientItem, error) {
	if m.listClientItemsFn != nil {
		return m.listClientItemsFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) ClientHistory(ctx context.Context, name string) ([]app.SessionItem, error) {
	if m.clientHistoryFn != nil {
		return m.clientHistoryFn(ctx, name)
	}
	return nil, nil
}

func (m *mockAppService) Login(username, password string) error {
	if m.loginFn != nil {
		return m.loginFn(username, password)
	}
	if username == "admin" && password == "secret" {
		return nil
	}
	return app.ErrInvalidCredentials
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	tmpl := template.Must(template.New("login.html").Parse(`Login {{.CSRFToken}} {{.Error}}`))
	template.Must(tmpl.New("new_client_form.html").Parse(`NewClient {{.CSRFToken}}`))
	template.Must(tmpl.New("existing_client_form.html").Parse(`Existing {{.Error}}{{range .Clients}}[{{.Name}}]{{end}}`))
	template.Must(tmpl.New("success.html").Parse(`Success {{.Message}}`))
	template.Must(tmpl.New("error.html").Parse(`Error {{.Message}}`))

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			LedgerBackend:      config.BackendSQLite,
			CORSOrigins:        "*",
			RateLimitPerSecond: 100,
			RateLimitBurst:     100,
		},
		app:          app,
		sessionStore: store,
		templates:    tmpl,
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withRateLimit(perSecond float64, burst int) func(*Server) {
	return func(s *Server) {
		s.config.RateLimitPerSecond = perSecond
		s.config.RateLimitBurst = burst
	}
}

func withRegistry(reg *prometheus.Registry) func(*Server) {
	return func(s *Server) {
		s.registry = reg
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

func setSessionAdmin(t *testing.T, srv *Server, req *http.Request, username string) {
	t.Helper()
	rec := httptest.NewRecorder()
	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyAdmin] = username
	require.NoError(t, session.Save(req, rec))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}

// csrfCookie performs a GET on path and returns the CSRF cookie it set.
func csrfCookie(t *testing.T, srv *Server, path string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	setSessionAdmin(t, srv, req, "admin")
	srv.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfTokenCookieName {
			return c
		}
	}
	t.Fatalf("no CSRF cookie set by %s", path)
	return nil
}

const csrfTokenCookieName = "csrf_token"
