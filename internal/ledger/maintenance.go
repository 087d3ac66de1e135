package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
)

// CollectionReport describes the header row and size of one collection.
type CollectionReport struct {
	Collection Collection
	Headers    []string
	// Mismatches lists "<column>: got X, want Y" entries for header cells
	// that differ from the canonical layout.
	Mismatches []string
	DataRows   int
}

func (r CollectionReport) OK() bool { return len(r.Mismatches) == 0 }

type StructureReport struct {
	Clients  CollectionReport
	Sessions CollectionReport
}

func (r StructureReport) OK() bool { return r.Clients.OK() && r.Sessions.OK() }

// InitHeaders writes the canonical header row to both collections.
func (l *Ledger) InitHeaders(ctx context.Context) error {
	for _, c := range []Collection{Clients, Sessions} {
		if err := l.writeHeader(ctx, c); err != nil {
			return err
		}
	}
	l.cache.Invalidate()
	return nil
}

func (l *Ledger) writeHeader(ctx context.Context, c Collection) error {
	headers := Headers(c)
	ref := fmt.Sprintf("A1:%s1", ColumnName(len(headers)-1))
	if err := l.update(ctx, c, ref, [][]string{headers}); err != nil {
		return err
	}
	slog.Info("Header row written", "collection", c, "columns", len(headers))
	return nil
}

// CheckStructure compares both header rows with the canonical layout.
func (l *Ledger) CheckStructure(ctx context.Context) (StructureReport, error) {
	clients, err := l.checkCollection(ctx, Clients, clientsRange)
	if err != nil {
		return StructureReport{}, err
	}
	sessions, err := l.checkCollection(ctx, Sessions, sessionsRange)
	if err != nil {
		return StructureReport{}, err
	}
	return StructureReport{Clients: clients, Sessions: sessions}, nil
}

func (l *Ledger) checkCollection(ctx context.Context, c Collection, a1 string) (CollectionReport, error) {
	rows, err := l.read(ctx, c, a1)
	if err != nil {
		return CollectionReport{}, err
	}

	report := CollectionReport{Collection: c}
	if len(rows) > 0 {
		report.Headers = rows[0]
	}
	for _, row := range rows[min(1, len(rows)):] {
		if len(row) > 0 {
			report.DataRows++
		}
	}

	want := Headers(c)
	for i, h := range want {
		got := ""
		if i < len(report.Headers) {
			got = strings.TrimSpace(report.Headers[i])
		}
		if got != h {
			report.Mismatches = append(report.Mismatches, fmt.Sprintf("%s: got %q, want %q", ColumnName(i), got, h))
		}
	}
	return report, nil
}

// BackfillClientIDs assigns identifiers to named client rows that lack one
// and returns how many it assigned. With dryRun set nothing is written.
func (l *Ledger) BackfillClientIDs(ctx context.Context, dryRun bool) (int, error) {
	rows, err := l.read(ctx, Clients, clientsRange)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for i, values := range rows {
		if i == 0 || len(values) == 0 {
			continue
		}
		if strings.TrimSpace(values[colClientID]) != "" {
			continue
		}
		if colName >= len(values) || strings.TrimSpace(values[colName]) == "" {
			continue
		}

		id := l.newID()
		row := i + 1
		slog.Info("Assigning client id", "row", row, "name", strings.TrimSpace(values[colName]), "client_id", id, "dry_run", dryRun)
		if !dryRun {
			if err := l.update(ctx, Clients, cellRef(colClientID, row), [][]string{{id}}); err != nil {
				return assigned, err
			}
		}
		assigned++
	}

	if assigned > 0 && !dryRun {
		l.cache.Invalidate()
	}
	return assigned, nil
}

// ClearClients blanks the Clients collection and writes a fresh header row.
func (l *Ledger) ClearClients(ctx context.Context) error {
	start := l.clock.Now()
	err := l.backend.ClearSheet(ctx, Clients)
	l.metrics.Observe("clear_sheet", l.clock.Since(start), err)
	if err != nil {
		return backendError("clearing clients", err)
	}
	l.cache.Invalidate()

	return l.writeHeader(ctx, Clients)
}

// RestoreClients appends previously exported clients unchanged, keeping
// their identifiers and numbers. Clients whose email is already present are
// skipped. It returns how many rows were appended.
func (l *Ledger) RestoreClients(ctx context.Context, clients []domain.Client) (int, error) {
	existing, err := l.ListClients(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[strings.ToLower(strings.TrimSpace(c.Email))] = true
	}

	var rows [][]string
	for _, c := range clients {
		key := strings.ToLower(strings.TrimSpace(c.Email))
		if seen[key] {
			slog.Warn("Skipping client already present", "email", c.Email)
			continue
		}
		seen[key] = true
		if c.ID == "" {
			c.ID = l.newID()
		}
		if c.CreatedAt == "" {
			c.CreatedAt = l.timestamp()
		}
		rows = append(rows, clientRow(c))
	}

	if len(rows) == 0 {
		return 0, nil
	}
	if err := l.append(ctx, Clients, rows); err != nil {
		return 0, err
	}
	l.cache.Invalidate()
	return len(rows), nil
}

// ListSessions returns every session in insertion order.
func (l *Ledger) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return l.sessions(ctx, func([]string) bool { return true })
}

// ClientsSortedByName is a convenience for listings.
func ClientsSortedByName(clients []domain.Client) []domain.Client {
	sorted := slices.Clone(clients)
	slices.SortStableFunc(sorted, func(a, b domain.Client) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return sorted
}
