package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mikeohgml-jpg/coaching-portal/internal/app"
	apperrors "github.com/mikeohgml-jpg/coaching-portal/internal/platform/errors"
)

const formHome = "/form/new-client"

func (s *Server) registerAuthRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/login", s.handleLoginPage, csrfMiddleware)
	s.echo.POST("/login", s.handleLogin, rateLimiter, csrfMiddleware)
	s.echo.POST("/logout", s.handleLogout, s.requireAuth, csrfMiddleware)
}

// requireAuth guards HTML pages, sending anonymous visitors to the login page.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		admin, ok := s.sessionAdmin(c)
		if !ok {
			return c.Redirect(http.StatusFound, "/login")
		}
		c.Set(sessionKeyAdmin, admin)
		return next(c)
	}
}

// requireAPIAuth guards JSON endpoints, answering 401 instead of redirecting.
func (s *Server) requireAPIAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		admin, ok := s.sessionAdmin(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		c.Set(sessionKeyAdmin, admin)
		return next(c)
	}
}

func (s *Server) sessionAdmin(c echo.Context) (string, bool) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return "", false
	}
	admin, ok := session.Values[sessionKeyAdmin].(string)
	return admin, ok && admin != ""
}

func (s *Server) handleLoginPage(c echo.Context) error {
	if _, ok := s.sessionAdmin(c); ok {
		if err := c.Redirect(http.StatusFound, formHome); err != nil {
			return fmt.Errorf("failed to redirect: %w", err)
		}
		return nil
	}
	return s.renderLogin(c, http.StatusOK, "")
}

func (s *Server) renderLogin(c echo.Context, status int, message string) error {
	data := map[string]any{
		"CSRFToken": c.Get("csrf"),
		"Error":     message,
	}
	return s.renderTemplate(c, status, "login.html", data)
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.FormValue("username")

	if err := s.app.Login(username, c.FormValue("password")); err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			slog.WarnContext(ctx, "Rejected admin login", "username", username, "ip", c.RealIP())
			return s.renderLogin(c, http.StatusUnauthorized, "Invalid username or password")
		}
		return apperrors.InternalError("failed to verify credentials", err)
	}

	// Rotate the session on login so a pre-auth session ID cannot be reused.
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err == nil {
		session.Options.MaxAge = -1
		if err := session.Save(c.Request(), c.Response().Writer); err != nil {
			return apperrors.InternalError("failed to invalidate old session", err)
		}
	}

	session, err = s.sessionStore.New(c.Request(), sessionName)
	if err != nil {
		return apperrors.InternalError("failed to create new session", err)
	}
	session.Values[sessionKeyAdmin] = username
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	slog.InfoContext(ctx, "Admin logged in", "username", username)

	if err := c.Redirect(http.StatusFound, formHome); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get session during logout", "error", err)
		session, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			return apperrors.InternalError("failed to create new session during logout", err)
		}
	}
	session.Options.MaxAge = -1

	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save logout session", err)
	}

	slog.InfoContext(ctx, "Admin logged out", "username", c.Get(sessionKeyAdmin))

	if err := c.Redirect(http.StatusFound, "/login"); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}
