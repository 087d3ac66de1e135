package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.generateFn(ctx, prompt)
}

func testClient() domain.Client {
	return domain.Client{
		ID:             "CL-1A2B3C4D",
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		PackageType:    "Executive",
		StartDate:      "2026-03-01",
		EndDate:        "2026-09-01",
		AmountPaid:     1200,
		ContractNumber: "CT-2026-001",
		InvoiceNumber:  "INV-5001",
	}
}

func testInvoice() domain.InvoiceDetails {
	return domain.InvoiceDetails{
		ClientName:       "Jane Doe",
		ClientEmail:      "jane@example.com",
		CoachingType:     "Leadership",
		SessionDate:      "2026-03-15",
		CoachingHours:    1.5,
		ParticipantCount: 2,
		AmountCollected:  150,
		RemainingBalance: 1050,
		PaymentMethod:    domain.UpfrontDeposit,
		InvoiceNumber:    "INV-007",
	}
}

func TestWelcome_TemplateWithoutGenerator(t *testing.T) {
	r, err := NewRenderer(nil, "", nil)
	require.NoError(t, err)

	got, err := r.Welcome(context.Background(), testClient())
	require.NoError(t, err)

	assert.Equal(t, domain.EmailWelcome, got.Kind)
	assert.Equal(t, "jane@example.com", got.To)
	assert.Equal(t, "Welcome to Your Coaching Program, Jane Doe!", got.Subject)
	assert.Contains(t, got.HTMLBody, "<html>")
	assert.Contains(t, got.HTMLBody, "Hello Jane Doe,")
	assert.Contains(t, got.HTMLBody, "$1200.00")
	assert.Contains(t, got.HTMLBody, "CT-2026-001")
	assert.Contains(t, got.HTMLBody, "The Coaching Team")
	assert.Contains(t, got.TextBody, "Package: Executive")
	assert.Contains(t, got.TextBody, "Investment: $1200.00")
}

func TestWelcome_EscapesUserInput(t *testing.T) {
	r, err := NewRenderer(nil, "", nil)
	require.NoError(t, err)

	c := testClient()
	c.Name = "<script>alert(1)</script>"
	got, err := r.Welcome(context.Background(), c)
	require.NoError(t, err)

	assert.NotContains(t, got.HTMLBody, "<script>")
	assert.Contains(t, got.HTMLBody, "&lt;script&gt;")
}

func TestInvoice_Template(t *testing.T) {
	r, err := NewRenderer(nil, "Coach Kim", nil)
	require.NoError(t, err)

	got, err := r.Invoice(context.Background(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, domain.EmailInvoice, got.Kind)
	assert.Equal(t, "Coaching Session Invoice - 2026-03-15", got.Subject)
	assert.Contains(t, got.HTMLBody, "INV-007")
	assert.Contains(t, got.HTMLBody, "<td>1.5</td>")
	assert.Contains(t, got.HTMLBody, "<td>2</td>")
	assert.Contains(t, got.HTMLBody, "$150.00")
	assert.Contains(t, got.HTMLBody, "$1050.00")
	assert.Contains(t, got.HTMLBody, "Coach Kim")
	assert.Contains(t, got.TextBody, "Remaining Balance: $1050.00")
}

func TestInvoice_PayPerSessionHidesBalance(t *testing.T) {
	r, err := NewRenderer(nil, "", nil)
	require.NoError(t, err)

	d := testInvoice()
	d.PaymentMethod = domain.PayPerSession
	d.ParticipantCount = 0
	got, err := r.Invoice(context.Background(), d)
	require.NoError(t, err)

	assert.NotContains(t, got.HTMLBody, "Remaining Balance")
	assert.NotContains(t, got.TextBody, "Remaining Balance")
	assert.Contains(t, got.TextBody, "Participants: 1")
}

func TestRender_UsesGeneratorOutput(t *testing.T) {
	var prompt string
	gen := &mockGenerator{generateFn: func(_ context.Context, p string) (string, error) {
		prompt = p
		return "  <html><body>Generated</body></html>\n", nil
	}}
	reg := prometheus.NewRegistry()
	m := metrics.NewNotificationMetrics(reg)
	r, err := NewRenderer(gen, "", m)
	require.NoError(t, err)

	got, err := r.Invoice(context.Background(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "<html><body>Generated</body></html>", got.HTMLBody)
	assert.Contains(t, got.TextBody, "INV-007")
	assert.Contains(t, prompt, "- Client Name: Jane Doe")
	assert.Contains(t, prompt, "- Participants: 2")
	assert.Contains(t, prompt, "wrapped in <html> tags")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("invoice", "ai")))
}

func TestRender_FallsBackToTemplate(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
	}{
		{name: "generator error", err: errors.New("breaker open")},
		{name: "blank answer", out: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{generateFn: func(context.Context, string) (string, error) {
				return tt.out, tt.err
			}}
			reg := prometheus.NewRegistry()
			m := metrics.NewNotificationMetrics(reg)
			r, err := NewRenderer(gen, "", m)
			require.NoError(t, err)

			got, err := r.Welcome(context.Background(), testClient())
			require.NoError(t, err)

			assert.Contains(t, got.HTMLBody, "Welcome to Your Coaching Program!")
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("welcome", "template")))
		})
	}
}
