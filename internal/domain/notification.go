package domain

import "context"

type EmailKind string

const (
	EmailWelcome EmailKind = "welcome"
	EmailInvoice EmailKind = "invoice"
)

type EmailContent struct {
	Kind     EmailKind
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// InvoiceDetails carries what an invoice email shows about one session.
type InvoiceDetails struct {
	ClientName       string
	ClientEmail      string
	CoachingType     string
	SessionDate      string
	CoachingHours    float64
	ParticipantCount int
	AmountCollected  float64
	RemainingBalance float64
	PaymentMethod    PaymentMethod
	InvoiceNumber    string
}

type NotificationRenderer interface {
	Welcome(ctx context.Context, client Client) (EmailContent, error)
	Invoice(ctx context.Context, details InvoiceDetails) (EmailContent, error)
}

type Mailer interface {
	Send(ctx context.Context, msg EmailContent) error
}

// TextGenerator produces free-form text from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
