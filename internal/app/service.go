package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
)

const (
	statusSuccess = "success"

	msgClientRegistered = "Client registered successfully"
	msgSessionRecorded  = "Session recorded successfully"
)

// AdminCredentials is the single operator account.
type AdminCredentials struct {
	Username string
	Password string
}

// Service orchestrates registrations and session bookings. It is the only
// component that references the ledger and the notification side together.
type Service struct {
	ledger   domain.ClientLedger
	renderer domain.NotificationRenderer
	mailer   domain.Mailer
	clock    clockwork.Clock
	admin    AdminCredentials
}

// NewService creates the application layer service.
// mailer may be nil when mail delivery is not configured.
func NewService(ledger domain.ClientLedger, renderer domain.NotificationRenderer, mailer domain.Mailer, clock clockwork.Clock, admin AdminCredentials) *Service {
	return &Service{
		ledger:   ledger,
		renderer: renderer,
		mailer:   mailer,
		clock:    clock,
		admin:    admin,
	}
}

// RegisterClient validates req, rejects duplicate emails, stores the client
// and sends the welcome email. A failing duplicate check does not block the
// registration and a failing email does not undo it.
func (s *Service) RegisterClient(ctx context.Context, req NewClientRequest) (*RegistrationResult, error) {
	data, err := validateNewClient(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.ledger.CheckDuplicateClient(ctx, data.Name, data.Email)
	switch {
	case err != nil:
		slog.Warn("Duplicate check failed, continuing registration", "email", data.Email, "error", err)
	case existing != nil:
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, data.Email)
	}

	client, err := s.ledger.AddClient(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to add client: %w", err)
	}

	sent := s.notify(ctx, domain.EmailWelcome, func() (domain.EmailContent, error) {
		return s.renderer.Welcome(ctx, *client)
	})

	slog.Info("Client registered", "client_id", client.ID, "email_sent", sent)
	return &RegistrationResult{
		Status:         statusSuccess,
		ClientID:       client.ID,
		ClientName:     client.Name,
		ClientEmail:    client.Email,
		ContractNumber: client.ContractNumber,
		InvoiceNumber:  client.InvoiceNumber,
		Message:        msgClientRegistered,
		EmailSent:      sent,
	}, nil
}

// RecordSession validates req, appends the session, optionally moves the
// client's end date and sends the invoice.
func (s *Service) RecordSession(ctx context.Context, req SessionRequest) (*SessionResult, error) {
	if err := validateSession(req); err != nil {
		return nil, err
	}

	client, err := s.ledger.FindClientByName(ctx, req.ClientName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrClientNotFound, strings.TrimSpace(req.ClientName))
	}

	session, err := s.ledger.AddSession(ctx, domain.NewSession{
		ClientName:      client.Name,
		CoachingType:    req.CoachingType,
		CoachingHours:   req.CoachingHours,
		AmountCollected: req.AmountCollected,
		SessionDate:     strings.TrimSpace(req.SessionDate),
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add session: %w", err)
	}

	if newEnd := strings.TrimSpace(req.NewEndDate); newEnd != "" {
		found, err := s.ledger.UpdateClientEndDate(ctx, client.Name, newEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to update end date: %w", err)
		}
		if !found {
			slog.Warn("Client vanished before end date update", "client_name", client.Name)
		}
	}

	sent := s.notify(ctx, domain.EmailInvoice, func() (domain.EmailContent, error) {
		return s.renderer.Invoice(ctx, domain.InvoiceDetails{
			ClientName:       client.Name,
			ClientEmail:      client.Email,
			CoachingType:     session.CoachingType,
			SessionDate:      session.SessionDate,
			CoachingHours:    session.CoachingHours,
			ParticipantCount: req.ParticipantCount,
			AmountCollected:  session.AmountCollected,
			RemainingBalance: session.RemainingBalance,
			PaymentMethod:    session.PaymentMethod,
			InvoiceNumber:    session.InvoiceNumber,
		})
	})

	slog.Info("Session recorded", "client_id", client.ID, "invoice_number", session.InvoiceNumber, "email_sent", sent)
	return &SessionResult{
		Status:           statusSuccess,
		ClientName:       client.Name,
		SessionDate:      session.SessionDate,
		AmountCollected:  session.AmountCollected,
		RemainingBalance: session.RemainingBalance,
		InvoiceNumber:    session.InvoiceNumber,
		Message:          msgSessionRecorded,
		EmailSent:        sent,
	}, nil
}

// notify renders and sends one email and reports whether it went out.
// Failures are logged only.
func (s *Service) notify(ctx context.Context, kind domain.EmailKind, render func() (domain.EmailContent, error)) bool {
	if s.mailer == nil {
		slog.Debug("Mail delivery not configured, skipping email", "kind", kind)
		return false
	}

	content, err := render()
	if err != nil {
		slog.Error("Failed to render email", "kind", kind, "error", err)
		return false
	}
	if err := s.mailer.Send(ctx, content); err != nil {
		slog.Error("Failed to send email", "kind", kind, "to", content.To, "error", err)
		return false
	}
	return true
}

// ListClientItems returns every client for the session form picker.
func (s *Service) ListClientItems(ctx context.Context) ([]ClientItem, error) {
	clients, err := s.ledger.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]ClientItem, 0, len(clients))
	for _, c := range clients {
		items = append(items, ClientItem{
			Name:        c.Name,
			Email:       c.Email,
			PackageType: c.PackageType,
			Active:      c.Active(now),
		})
	}
	return items, nil
}

// ClientHistory returns the sessions recorded for the named client.
func (s *Service) ClientHistory(ctx context.Context, name string) ([]SessionItem, error) {
	if err := validateName("client_name", name); err != nil {
		return nil, err
	}

	client, err := s.ledger.FindClientByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrClientNotFound, strings.TrimSpace(name))
	}

	sessions, err := s.ledger.ListSessionsForClient(ctx, client.Name)
	if err != nil {
		return nil, err
	}

	items := make([]SessionItem, 0, len(sessions))
	for _, ss := range sessions {
		items = append(items, SessionItem{
			SessionDate:      ss.SessionDate,
			CoachingType:     ss.CoachingType,
			CoachingHours:    ss.CoachingHours,
			AmountCollected:  ss.AmountCollected,
			RemainingBalance: ss.RemainingBalance,
			PaymentMethod:    ss.PaymentMethod.String(),
			InvoiceNumber:    ss.InvoiceNumber,
			Notes:            ss.Notes,
		})
	}
	return items, nil
}

// ErrInvalidCredentials is returned by Login for a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// VerifyAdmin compares both credentials in constant time.
func (s *Service) VerifyAdmin(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	return userOK && passOK && s.admin.Password != ""
}

// Login is VerifyAdmin returning ErrInvalidCredentials on mismatch.
func (s *Service) Login(username, password string) error {
	if !s.VerifyAdmin(strings.TrimSpace(username), password) {
		return ErrInvalidCredentials
	}
	return nil
}
