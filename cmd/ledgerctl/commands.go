package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
)

var errUsage = errors.New("invalid usage")

// runner executes one maintenance command against a ledger.
type runner struct {
	ledger *ledger.Ledger
	out    io.Writer
	dryRun bool
}

func (r *runner) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "init-headers":
		return r.initHeaders(ctx)
	case "check":
		return r.check(ctx)
	case "backfill-ids":
		return r.backfillIDs(ctx)
	case "list-clients":
		return r.listClients(ctx)
	case "list-sessions":
		return r.listSessions(ctx, args)
	case "delete-rows":
		return r.deleteRows(ctx, args)
	case "clear-clients":
		return r.clearClients(ctx)
	case "restore":
		return r.restore(ctx, args)
	case "export":
		return r.export(ctx, args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, command)
}

func (r *runner) initHeaders(ctx context.Context) error {
	if r.dryRun {
		fmt.Fprintln(r.out, "dry run: would write header rows to clients and sessions")
		return nil
	}
	if err := r.ledger.InitHeaders(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "header rows written")
	return nil
}

func (r *runner) check(ctx context.Context) error {
	report, err := r.ledger.CheckStructure(ctx)
	if err != nil {
		return err
	}

	for _, c := range []ledger.CollectionReport{report.Clients, report.Sessions} {
		status := "ok"
		if !c.OK() {
			status = "MISMATCH"
		}
		fmt.Fprintf(r.out, "%s: %s, %d data rows\n", c.Collection, status, c.DataRows)
		for _, m := range c.Mismatches {
			fmt.Fprintf(r.out, "  %s\n", m)
		}
	}

	if !report.OK() {
		return errors.New("header rows do not match the expected layout, run init-headers to repair")
	}
	return nil
}

func (r *runner) backfillIDs(ctx context.Context) error {
	n, err := r.ledger.BackfillClientIDs(ctx, r.dryRun)
	if err != nil {
		return err
	}
	verb := "assigned"
	if r.dryRun {
		verb = "would assign"
	}
	fmt.Fprintf(r.out, "%s %d client ids\n", verb, n)
	return nil
}

func (r *runner) listClients(ctx context.Context) error {
	clients, err := r.ledger.ListClients(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tID\tNAME\tEMAIL\tPACKAGE\tEND\tPAID\tMETHOD\tCONTRACT")
	for _, c := range ledger.ClientsSortedByName(clients) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			c.Row, c.ID, c.Name, c.Email, c.PackageType, c.EndDate, c.AmountPaid, c.PaymentMethod, c.ContractNumber)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write client list: %w", err)
	}
	return nil
}

func (r *runner) listSessions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	client := fs.String("client", "", "Only sessions of this client (case-insensitive)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	var (
		sessions []domain.Session
		err      error
	)
	if strings.TrimSpace(*client) != "" {
		sessions, err = r.ledger.ListSessionsForClient(ctx, *client)
	} else {
		sessions, err = r.ledger.ListSessions(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCLIENT\tTYPE\tHOURS\tCOLLECTED\tBALANCE\tINVOICE")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%.2f\t%.2f\t%s\n",
			s.SessionDate, s.ClientName, s.CoachingType, s.CoachingHours, s.AmountCollected, s.RemainingBalance, s.InvoiceNumber)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write session list: %w", err)
	}
	return nil
}

func (r *runner) deleteRows(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-rows", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	start := fs.Int("start", 0, "First row to delete (1-indexed)")
	end := fs.Int("end", 0, "Last row to delete (inclusive)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *start < 2 || *end < *start {
		return fmt.Errorf("%w: need 2 <= --start <= --end, got %d-%d", errUsage, *start, *end)
	}

	if r.dryRun {
		fmt.Fprintf(r.out, "dry run: would delete clients rows %d-%d\n", *start, *end)
		return nil
	}
	if err := r.ledger.DeleteRows(ctx, *start, *end); err != nil {
		return err
	}
	slog.Info("Client rows deleted", "start", *start, "end", *end)
	fmt.Fprintf(r.out, "deleted clients rows %d-%d\n", *start, *end)
	return nil
}

func (r *runner) clearClients(ctx context.Context) error {
	if r.dryRun {
		clients, err := r.ledger.ListClients(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "dry run: would clear %d clients\n", len(clients))
		return nil
	}
	if err := r.ledger.ClearClients(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "clients cleared")
	return nil
}

func fileFlag(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("file", "", "YAML file")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %w", errUsage, err)
	}
	if *file == "" {
		return "", fmt.Errorf("%w: %s needs --file", errUsage, name)
	}
	return *file, nil
}

func (r *runner) restore(ctx context.Context, args []string) error {
	path, err := fileFlag("restore", args)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	clients, err := decodeClients(f)
	if err != nil {
		return err
	}

	if r.dryRun {
		fmt.Fprintf(r.out, "dry run: would restore up to %d clients from %s\n", len(clients), path)
		return nil
	}
	n, err := r.ledger.RestoreClients(ctx, clients)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "restored %d of %d clients\n", n, len(clients))
	return nil
}

func (r *runner) export(ctx context.Context, args []string) error {
	path, err := fileFlag("export", args)
	if err != nil {
		return err
	}

	clients, err := r.ledger.ListClients(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encodeClients(f, clients); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(r.out, "exported %d clients to %s\n", len(clients), path)
	return nil
}
