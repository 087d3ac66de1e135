package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

var successMessages = map[string]string{
	"client":  "Client registered successfully",
	"session": "Session recorded successfully",
}

func (s *Server) registerFormRoutes(csrfMiddleware echo.MiddlewareFunc) {
	s.echo.GET("/form/new-client", s.handleNewClientForm, s.requireAuth, csrfMiddleware)
	s.echo.GET("/form/existing-client", s.handleExistingClientForm, s.requireAuth, csrfMiddleware)
	s.echo.GET("/success", s.handleSuccess, s.requireAuth)
	s.echo.GET("/error", s.handleErrorPage, s.requireAuth)
}

func (s *Server) handleNewClientForm(c echo.Context) error {
	data := map[string]any{
		"CSRFToken": c.Get("csrf"),
	}
	return s.renderTemplate(c, http.StatusOK, "new_client_form.html", data)
}

// handleExistingClientForm still renders when the client list cannot be
// loaded, so the page explains the problem instead of failing outright.
func (s *Server) handleExistingClientForm(c echo.Context) error {
	ctx := c.Request().Context()
	data := map[string]any{
		"CSRFToken": c.Get("csrf"),
		"Error":     "",
	}

	clients, err := s.app.ListClientItems(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load clients for session form", "error", err)
		data["Error"] = "Could not load the client list. Please try again shortly."
	}
	data["Clients"] = clients

	return s.renderTemplate(c, http.StatusOK, "existing_client_form.html", data)
}

func (s *Server) handleSuccess(c echo.Context) error {
	message, ok := successMessages[c.QueryParam("type")]
	if !ok {
		message = "Saved successfully"
	}
	return s.renderTemplate(c, http.StatusOK, "success.html", map[string]any{"Message": message})
}

func (s *Server) handleErrorPage(c echo.Context) error {
	message := c.QueryParam("msg")
	if message == "" {
		message = "An unexpected error occurred"
	}
	return s.renderTemplate(c, http.StatusOK, "error.html", map[string]any{"Message": message})
}
