// Package mailer delivers rendered notifications over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/wneessen/go-mail"
)

const sendTimeout = 30 * time.Second

// Config holds the SMTP account used as sender.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
}

// sender is the part of *mail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends multipart/alternative messages over implicit TLS.
type SMTPMailer struct {
	client  sender
	from    string
	name    string
	cb      circuitbreaker.CircuitBreaker[any]
	metrics *metrics.NotificationMetrics
}

var _ domain.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer for cfg. m may be nil.
func NewSMTPMailer(cfg Config, m *metrics.NotificationMetrics) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return newSMTPMailer(client, cfg.Username, cfg.SenderName, m), nil
}

func newSMTPMailer(client sender, from, name string, m *metrics.NotificationMetrics) *SMTPMailer {
	return &SMTPMailer{
		client:  client,
		from:    from,
		name:    name,
		cb:      newBreaker(m),
		metrics: m,
	}
}

// newBreaker opens at a 60% failure rate over at least 5 sends in 10 minutes
// and allows a probe after 2 minutes.
func newBreaker(m *metrics.NotificationMetrics) circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Minute).
		WithDelay(2 * time.Minute).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "smtp",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			m.BreakerChanged("smtp", e.NewState.String(), stateToFloat(e.NewState))
		}).
		Build()
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// Send delivers content with a plain-text body and an HTML alternative.
func (s *SMTPMailer) Send(ctx context.Context, content domain.EmailContent) error {
	msg, err := s.build(content)
	if err != nil {
		s.metrics.Delivered(string(content.Kind), err)
		return err
	}

	if !s.cb.TryAcquirePermit() {
		err := fmt.Errorf("smtp circuit breaker open: %w", circuitbreaker.ErrOpen)
		s.metrics.Delivered(string(content.Kind), err)
		return err
	}

	err = s.client.DialAndSendWithContext(ctx, msg)
	s.metrics.Delivered(string(content.Kind), err)
	if err != nil {
		s.cb.RecordError(err)
		return fmt.Errorf("failed to send %s email: %w", content.Kind, err)
	}
	s.cb.RecordSuccess()

	slog.Info("Email sent", "kind", content.Kind, "to", content.To, "subject", content.Subject)
	return nil
}

func (s *SMTPMailer) build(content domain.EmailContent) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.name, s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(content.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(content.Subject)
	msg.SetDate()

	text := content.TextBody
	if text == "" {
		text = content.Subject
	}
	msg.SetBodyString(mail.TypeTextPlain, text)
	if content.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, content.HTMLBody)
	}
	return msg, nil
}
