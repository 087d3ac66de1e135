package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
)

// Clients columns, A..N.
const (
	colClientID = iota
	colName
	colAddress
	colContact
	colEmail
	colPackageType
	colStartDate
	colEndDate
	colAmountPaid
	colPaymentMethod
	colContractNumber
	colInvoiceNumber
	colCreatedAt
	colNotes
	clientColumns
)

// Sessions columns, A..M.
const (
	scolClientID = iota
	scolClientName
	scolCoachingType
	scolCoachingHours
	scolAmountPaid
	scolAmountCollected
	scolAmountBalance
	scolSessionDate
	scolPaymentMethod
	scolContractNumber
	scolInvoiceNumber
	scolCreatedAt
	scolNotes
	sessionColumns
)

var ClientHeaders = []string{
	"Client ID", "Name", "Address", "Contact", "Email", "Package Type", "Start Date", "End Date",
	"Amount Paid", "Payment Method", "Contract Number", "Invoice Number", "Created At", "Notes",
}

var SessionHeaders = []string{
	"Client ID", "Client Name", "Coaching Type", "Coaching Hours", "Amount Paid ($)", "Amount Collected",
	"Amount Balance", "Session Date", "Payment Method", "Contract Number", "Invoice Number", "Created At", "Notes",
}

var (
	clientsRange  = "A:" + ColumnName(clientColumns-1)
	sessionsRange = "A:" + ColumnName(sessionColumns-1)
)

// Headers returns the canonical header row of a collection.
func Headers(c Collection) []string {
	if c == Sessions {
		return SessionHeaders
	}
	return ClientHeaders
}

// cells reads a row that the backend may have truncated after its last
// non-blank cell.
type cells struct {
	collection Collection
	row        int
	values     []string
}

func (c cells) str(col int) string {
	if col < len(c.values) {
		return strings.TrimSpace(c.values[col])
	}
	return ""
}

func (c cells) amount(col int, name string) (float64, error) {
	raw := c.str(col)
	if raw == "" {
		return 0, nil
	}
	v, err := parseAmount(raw)
	if err != nil {
		return 0, c.malformed(name, raw, err)
	}
	return v, nil
}

func (c cells) payment(col int) (domain.PaymentMethod, error) {
	raw := c.str(col)
	pm, err := domain.ParsePaymentMethod(raw)
	if err != nil {
		return "", c.malformed("PaymentMethod", raw, err)
	}
	return pm, nil
}

func (c cells) malformed(column, value string, err error) error {
	return &domain.MalformedRecordError{
		Collection: string(c.collection),
		Row:        c.row,
		Column:     column,
		Value:      value,
		Err:        err,
	}
}

// parseAmount accepts plain numbers plus the currency formatting a
// spreadsheet applies to USER_ENTERED values ("$1,500.00").
func parseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	return v, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseClientRow parses a Clients row. row is the 1-indexed sheet row.
func parseClientRow(row int, values []string) (domain.Client, error) {
	c := cells{collection: Clients, row: row, values: values}

	amount, err := c.amount(colAmountPaid, "AmountPaid")
	if err != nil {
		return domain.Client{}, err
	}
	pm, err := c.payment(colPaymentMethod)
	if err != nil {
		return domain.Client{}, err
	}

	return domain.Client{
		ID:             c.str(colClientID),
		Name:           c.str(colName),
		Address:        c.str(colAddress),
		Contact:        c.str(colContact),
		Email:          c.str(colEmail),
		PackageType:    c.str(colPackageType),
		StartDate:      c.str(colStartDate),
		EndDate:        c.str(colEndDate),
		AmountPaid:     amount,
		PaymentMethod:  pm,
		ContractNumber: c.str(colContractNumber),
		InvoiceNumber:  c.str(colInvoiceNumber),
		CreatedAt:      c.str(colCreatedAt),
		Notes:          c.str(colNotes),
		Row:            row,
	}, nil
}

func clientRow(cl domain.Client) []string {
	row := make([]string, clientColumns)
	row[colClientID] = cl.ID
	row[colName] = cl.Name
	row[colAddress] = cl.Address
	row[colContact] = cl.Contact
	row[colEmail] = cl.Email
	row[colPackageType] = cl.PackageType
	row[colStartDate] = cl.StartDate
	row[colEndDate] = cl.EndDate
	row[colAmountPaid] = formatAmount(cl.AmountPaid)
	row[colPaymentMethod] = cl.PaymentMethod.String()
	row[colContractNumber] = cl.ContractNumber
	row[colInvoiceNumber] = cl.InvoiceNumber
	row[colCreatedAt] = cl.CreatedAt
	row[colNotes] = cl.Notes
	return row
}

func parseSessionRow(row int, values []string) (domain.Session, error) {
	c := cells{collection: Sessions, row: row, values: values}

	hours, err := c.amount(scolCoachingHours, "CoachingHours")
	if err != nil {
		return domain.Session{}, err
	}
	pkg, err := c.amount(scolAmountPaid, "AmountPaid")
	if err != nil {
		return domain.Session{}, err
	}
	collected, err := c.amount(scolAmountCollected, "AmountCollected")
	if err != nil {
		return domain.Session{}, err
	}
	balance, err := c.amount(scolAmountBalance, "AmountBalance")
	if err != nil {
		return domain.Session{}, err
	}
	pm, err := c.payment(scolPaymentMethod)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		ClientID:         c.str(scolClientID),
		ClientName:       c.str(scolClientName),
		CoachingType:     c.str(scolCoachingType),
		CoachingHours:    hours,
		PackageAmount:    pkg,
		AmountCollected:  collected,
		RemainingBalance: balance,
		SessionDate:      c.str(scolSessionDate),
		PaymentMethod:    pm,
		ContractNumber:   c.str(scolContractNumber),
		InvoiceNumber:    c.str(scolInvoiceNumber),
		CreatedAt:        c.str(scolCreatedAt),
		Notes:            c.str(scolNotes),
		Row:              row,
	}, nil
}

func sessionRow(s domain.Session) []string {
	row := make([]string, sessionColumns)
	row[scolClientID] = s.ClientID
	row[scolClientName] = s.ClientName
	row[scolCoachingType] = s.CoachingType
	row[scolCoachingHours] = formatAmount(s.CoachingHours)
	row[scolAmountPaid] = formatAmount(s.PackageAmount)
	row[scolAmountCollected] = formatAmount(s.AmountCollected)
	row[scolAmountBalance] = formatAmount(s.RemainingBalance)
	row[scolSessionDate] = s.SessionDate
	row[scolPaymentMethod] = s.PaymentMethod.String()
	row[scolContractNumber] = s.ContractNumber
	row[scolInvoiceNumber] = s.InvoiceNumber
	row[scolCreatedAt] = s.CreatedAt
	row[scolNotes] = s.Notes
	return row
}

// cellRef returns the A1 reference of a single cell.
func cellRef(col, row int) string {
	return ColumnName(col) + strconv.Itoa(row)
}
