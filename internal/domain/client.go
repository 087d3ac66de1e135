package domain

import (
	"context"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Client is one row of the Clients collection.
type Client struct {
	ID             string
	Name           string
	Address        string
	Contact        string
	Email          string
	PackageType    string
	StartDate      string
	EndDate        string
	AmountPaid     float64
	PaymentMethod  PaymentMethod
	ContractNumber string
	InvoiceNumber  string
	CreatedAt      string
	Notes          string

	// Row is the 1-indexed sheet row the record was read from. Zero for
	// records that were not read from the ledger.
	Row int
}

// Active reports whether the client's program has not ended yet. Clients
// whose end date is blank or unparseable count as active.
func (c *Client) Active(now time.Time) bool {
	end, err := time.Parse(DateLayout, strings.TrimSpace(c.EndDate))
	if err != nil {
		return true
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return !end.Before(today)
}

// NewClient is the input for creating a client. Identifier, numbers and
// timestamps are assigned by the ledger.
type NewClient struct {
	Name          string
	Address       string
	Contact       string
	Email         string
	PackageType   string
	StartDate     string
	EndDate       string
	AmountPaid    float64
	PaymentMethod PaymentMethod
	Notes         string
}

// ClientLedger is the record store for clients and their sessions.
type ClientLedger interface {
	ListClients(ctx context.Context) ([]Client, error)
	FindClientByName(ctx context.Context, name string) (*Client, error)
	CheckDuplicateClient(ctx context.Context, name, email string) (*Client, error)
	AddClient(ctx context.Context, data NewClient) (*Client, error)
	AddSession(ctx context.Context, data NewSession) (*Session, error)
	ListSessionsForClient(ctx context.Context, name string) ([]Session, error)
	UpdateClientEndDate(ctx context.Context, name, newDate string) (bool, error)
}
