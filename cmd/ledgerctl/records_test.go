package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClients(t *testing.T) {
	in := `
clients:
  - id: CL-OLD
    name: Jane Doe
    email: jane@example.com
    package_type: Gold
    amount_paid: 750.5
    payment_method: pay_per_session
    contract_number: CT-2025-004
  - name: John Roe
    email: john@example.com
`
	clients, err := decodeClients(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.Equal(t, "CL-OLD", clients[0].ID)
	assert.Equal(t, 750.5, clients[0].AmountPaid)
	assert.Equal(t, domain.PayPerSession, clients[0].PaymentMethod)
	assert.Equal(t, domain.UpfrontDeposit, clients[1].PaymentMethod)
	assert.Empty(t, clients[1].ID)
}

func TestDecodeClients_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad method":    "clients:\n  - name: A\n    email: a@example.com\n    payment_method: barter\n",
		"missing email": "clients:\n  - name: A\n",
		"not yaml":      "clients: [",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeClients(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestEncodeClients(t *testing.T) {
	var buf bytes.Buffer
	err := encodeClients(&buf, []domain.Client{{
		ID: "CL-1", Name: "Jane Doe", Email: "jane@example.com", AmountPaid: 900,
		PaymentMethod: domain.UpfrontDeposit, ContractNumber: "CT-2026-001", InvoiceNumber: "INV-5001",
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "- id: CL-1\n")
	assert.Contains(t, out, "payment_method: upfront_deposit")
	assert.NotContains(t, out, "address")

	back, err := decodeClients(&buf)
	require.NoError(t, err)
	assert.Equal(t, "INV-5001", back[0].InvoiceNumber)
}
