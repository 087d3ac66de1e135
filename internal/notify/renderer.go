// Package notify renders the welcome and invoice emails.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strconv"
	"strings"
	texttemplate "text/template"

	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
)

//go:embed templates/*.html templates/*.txt
var templateFiles embed.FS

const (
	sourceAI       = "ai"
	sourceTemplate = "template"

	defaultSignature = "The Coaching Team"
)

// Renderer turns records into email content. HTML bodies come from the text
// generator when one is configured and from the embedded templates
// otherwise. Plain-text bodies always come from the templates.
type Renderer struct {
	gen       domain.TextGenerator
	html      *htmltemplate.Template
	text      *texttemplate.Template
	signature string
	metrics   *metrics.NotificationMetrics
}

var _ domain.NotificationRenderer = (*Renderer)(nil)

// NewRenderer parses the embedded templates. gen and m may be nil. signature
// closes every email; blank means "The Coaching Team".
func NewRenderer(gen domain.TextGenerator, signature string, m *metrics.NotificationMetrics) (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFiles, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	if strings.TrimSpace(signature) == "" {
		signature = defaultSignature
	}
	return &Renderer{gen: gen, html: html, text: text, signature: signature, metrics: m}, nil
}

type welcomeData struct {
	Name           string
	Email          string
	Package        string
	StartDate      string
	EndDate        string
	Amount         string
	ContractNumber string
	InvoiceNumber  string
	Signature      string
}

type invoiceData struct {
	Name             string
	Email            string
	CoachingType     string
	SessionDate      string
	Hours            string
	Participants     int
	Amount           string
	RemainingBalance string
	ShowBalance      bool
	InvoiceNumber    string
	Signature        string
}

// Welcome renders the registration confirmation for client.
func (r *Renderer) Welcome(ctx context.Context, client domain.Client) (domain.EmailContent, error) {
	data := welcomeData{
		Name:           orDefault(client.Name, "Valued Client"),
		Email:          client.Email,
		Package:        orDefault(client.PackageType, "Coaching Program"),
		StartDate:      client.StartDate,
		EndDate:        client.EndDate,
		Amount:         formatMoney(client.AmountPaid),
		ContractNumber: client.ContractNumber,
		InvoiceNumber:  client.InvoiceNumber,
		Signature:      r.signature,
	}

	return r.render(ctx, domain.EmailWelcome, client.Email,
		fmt.Sprintf("Welcome to Your Coaching Program, %s!", data.Name),
		"welcome", welcomePrompt(data), data)
}

// Invoice renders the receipt for one recorded session.
func (r *Renderer) Invoice(ctx context.Context, d domain.InvoiceDetails) (domain.EmailContent, error) {
	data := invoiceData{
		Name:             orDefault(d.ClientName, "Valued Client"),
		Email:            d.ClientEmail,
		CoachingType:     orDefault(d.CoachingType, "Coaching Session"),
		SessionDate:      d.SessionDate,
		Hours:            strconv.FormatFloat(d.CoachingHours, 'f', -1, 64),
		Participants:     max(d.ParticipantCount, 1),
		Amount:           formatMoney(d.AmountCollected),
		RemainingBalance: formatMoney(d.RemainingBalance),
		ShowBalance:      d.PaymentMethod != domain.PayPerSession,
		InvoiceNumber:    d.InvoiceNumber,
		Signature:        r.signature,
	}

	return r.render(ctx, domain.EmailInvoice, d.ClientEmail,
		fmt.Sprintf("Coaching Session Invoice - %s", d.SessionDate),
		"invoice", invoicePrompt(data), data)
}

func (r *Renderer) render(ctx context.Context, kind domain.EmailKind, to, subject, name, prompt string, data any) (domain.EmailContent, error) {
	var text bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return domain.EmailContent{}, fmt.Errorf("failed to render %s text: %w", kind, err)
	}

	content := domain.EmailContent{
		Kind:     kind,
		To:       to,
		Subject:  subject,
		TextBody: text.String(),
	}

	if html, ok := r.generate(ctx, kind, prompt); ok {
		content.HTMLBody = html
		r.metrics.Rendered(string(kind), sourceAI)
		return content, nil
	}

	var html bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return domain.EmailContent{}, fmt.Errorf("failed to render %s html: %w", kind, err)
	}
	content.HTMLBody = html.String()
	r.metrics.Rendered(string(kind), sourceTemplate)
	return content, nil
}

// generate asks the text generator for an HTML body. It reports false when
// no generator is configured, the call fails or the answer is blank.
func (r *Renderer) generate(ctx context.Context, kind domain.EmailKind, prompt string) (string, bool) {
	if r.gen == nil {
		return "", false
	}

	out, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("Text generation failed, using template", "kind", kind, "error", err)
		return "", false
	}
	out = strings.TrimSpace(out)
	if out == "" {
		slog.Warn("Text generation returned nothing, using template", "kind", kind)
		return "", false
	}
	return out, true
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
