package ledger

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	clientInvoicePattern  = regexp.MustCompile(`(?i)INV-5(\d+)`)
	sessionInvoicePattern = regexp.MustCompile(`(?i)INV-?(\d+)`)
)

// Numbering series names, used as allocator keys.
const (
	seriesClientInvoice  = "client_invoice"
	seriesSessionInvoice = "session_invoice"
)

func contractSeries(year int) string { return fmt.Sprintf("contract:%d", year) }

// maxContractSeq returns the highest sequence among CT-<year>-<seq> values
// for the given year. Values from other years and unparseable values are
// ignored.
func maxContractSeq(values []string, year int) int {
	highest := 0
	for _, v := range values {
		parts := strings.Split(strings.TrimSpace(v), "-")
		if len(parts) < 3 {
			continue
		}
		y, err := strconv.Atoi(parts[1])
		if err != nil || y != year {
			continue
		}
		seq, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		highest = max(highest, seq)
	}
	return highest
}

// maxClientInvoiceSeq scans for the INV-5NNN client series.
func maxClientInvoiceSeq(values []string) int {
	highest := 0
	for _, v := range values {
		m := clientInvoicePattern.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		highest = max(highest, seq)
	}
	return highest
}

// maxSessionInvoiceSeq scans for the INV-NNN session series. Legacy values
// written in the client series (INV-5NNN) are folded back with mod 1000.
func maxSessionInvoiceSeq(values []string) int {
	highest := 0
	for _, v := range values {
		m := sessionInvoicePattern.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seq > 999 {
			seq %= 1000
		}
		highest = max(highest, seq)
	}
	return highest
}

func formatContractNumber(year, seq int) string { return fmt.Sprintf("CT-%d-%03d", year, seq) }
func formatClientInvoice(seq int) string        { return fmt.Sprintf("INV-5%03d", seq) }
func formatSessionInvoice(seq int) string       { return fmt.Sprintf("INV-%03d", seq) }

// next turns the highest scanned sequence into the next one, going through
// the allocator when one is configured.
func (l *Ledger) next(ctx context.Context, series string, scanned int) (int, error) {
	if l.sequences == nil {
		return scanned + 1, nil
	}
	seq, err := l.sequences.Reserve(ctx, series, scanned)
	if err != nil {
		return 0, backendError("reserving "+series+" sequence", err)
	}
	return seq, nil
}

// columnValues reads one column of a collection, header excluded.
func (l *Ledger) columnValues(ctx context.Context, c Collection, col int) ([]string, error) {
	name := ColumnName(col)
	rows, err := l.read(ctx, c, name+":"+name)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		values = append(values, row[0])
	}
	return values, nil
}

func (l *Ledger) nextContractNumber(ctx context.Context) (string, error) {
	values, err := l.columnValues(ctx, Clients, colContractNumber)
	if err != nil {
		return "", fmt.Errorf("scanning contract numbers: %w", err)
	}

	year := l.clock.Now().UTC().Year()
	seq, err := l.next(ctx, contractSeries(year), maxContractSeq(values, year))
	if err != nil {
		return "", err
	}
	return formatContractNumber(year, seq), nil
}

func (l *Ledger) nextClientInvoiceNumber(ctx context.Context) (string, error) {
	values, err := l.columnValues(ctx, Clients, colInvoiceNumber)
	if err != nil {
		return "", fmt.Errorf("scanning client invoice numbers: %w", err)
	}

	seq, err := l.next(ctx, seriesClientInvoice, maxClientInvoiceSeq(values))
	if err != nil {
		return "", err
	}
	return formatClientInvoice(seq), nil
}

func (l *Ledger) nextSessionInvoiceNumber(ctx context.Context) (string, error) {
	values, err := l.columnValues(ctx, Sessions, scolInvoiceNumber)
	if err != nil {
		return "", fmt.Errorf("scanning session invoice numbers: %w", err)
	}

	seq, err := l.next(ctx, seriesSessionInvoice, maxSessionInvoiceSeq(values))
	if err != nil {
		return "", err
	}
	return formatSessionInvoice(seq), nil
}
