package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/mikeohgml-jpg/coaching-portal/internal/app"
	apperrors "github.com/mikeohgml-jpg/coaching-portal/internal/platform/errors"
)

func (s *Server) registerAPIRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	api := s.echo.Group("/api", s.setupCORSMiddleware(), rateLimiter, s.requireAPIAuth, csrfMiddleware)
	api.POST("/clients/new", s.handleRegisterClient)
	api.POST("/clients/existing-session", s.handleRecordSession)
	api.GET("/clients", s.handleListClients)
	api.GET("/clients/:name/sessions", s.handleClientSessions)
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) handleRegisterClient(c echo.Context) error {
	var req app.NewClientRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.RegisterClient(c.Request().Context(), req)
	if err != nil {
		return err
	}

	slog.InfoContext(c.Request().Context(), "Client registered via API", "client_id", result.ClientID, "email_sent", result.EmailSent)

	if err := c.JSON(http.StatusCreated, apiResponse{Status: "success", Message: result.Message, Data: result}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleRecordSession(c echo.Context) error {
	var req app.SessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.RecordSession(c.Request().Context(), req)
	if err != nil {
		return err
	}

	slog.InfoContext(c.Request().Context(), "Session recorded via API", "invoice_number", result.InvoiceNumber, "email_sent", result.EmailSent)

	if err := c.JSON(http.StatusCreated, apiResponse{Status: "success", Message: result.Message, Data: result}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListClients(c echo.Context) error {
	clients, err := s.app.ListClientItems(c.Request().Context())
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []app.ClientItem{}
	}

	response := map[string]any{"status": "success", "clients": clients}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleClientSessions(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return apperrors.ValidationError("invalid client name").WithField("name", c.Param("name"))
	}

	sessions, err := s.app.ClientHistory(c.Request().Context(), name)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []app.SessionItem{}
	}

	response := map[string]any{"status": "success", "sessions": sessions}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
