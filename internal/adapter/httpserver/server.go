package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/app"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/config"
	"github.com/mikeohgml-jpg/coaching-portal/web"
	"github.com/prometheus/client_golang/prometheus"
)

type appService interface {
	RegisterClient(ctx context.Context, req app.NewClientRequest) (*app.RegistrationResult, error)
	RecordSession(ctx context.Context, req app.SessionRequest) (*app.SessionResult, error)
	ListClientItems(ctx context.Context) ([]app.ClientItem, error)
	ClientHistory(ctx context.Context, name string) ([]app.SessionItem, error)
	Login(username, password string) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app appService

	templates *template.Template

	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck
	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	startTime    time.Time
}

// NewServer builds the HTTP surface. reg may be nil, in which case /metrics
// is not served and requests are not measured.
func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck, reg *prometheus.Registry) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: setupSessionStore(cfg),
		templates:    templates,
		healthChecks: healthChecks,
		registry:     reg,
		startTime:    time.Now(),
	}
	if reg != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(reg)
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName     = "coaching-session"
	sessionKeyAdmin = "admin"
)

func (s *Server) renderTemplate(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "template", name, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(status, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
