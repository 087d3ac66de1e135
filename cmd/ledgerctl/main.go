// Command ledgerctl runs offline maintenance against the client ledger.
//
// Usage:
//
//	ledgerctl [--dry-run] [--verbose] <command> [flags]
//
// The backend is selected with the same environment variables the server
// reads (LEDGER_BACKEND, GOOGLE_*, DATABASE_URL, SQLITE_PATH).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/ledgerstore"
	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/logging"
	"go-simpler.org/env"
)

// backendConfig is the subset of the server configuration needed to reach
// the ledger.
type backendConfig struct {
	LedgerBackend         string `env:"LEDGER_BACKEND" default:"sheets"`
	GoogleClientsSheetID  string `env:"GOOGLE_CLIENTS_SHEET_ID"`
	GoogleSessionsSheetID string `env:"GOOGLE_SESSIONS_SHEET_ID"`
	GoogleCredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`
	DatabaseURL           string `env:"DATABASE_URL"`
	SQLitePath            string `env:"SQLITE_PATH" default:"coaching.db"`
}

func (c backendConfig) options() ledgerstore.Options {
	return ledgerstore.Options{
		Kind:            c.LedgerBackend,
		ClientsSheetID:  c.GoogleClientsSheetID,
		SessionsSheetID: c.GoogleSessionsSheetID,
		Credentials:     c.GoogleCredentialsJSON,
		DatabaseURL:     c.DatabaseURL,
		SQLitePath:      c.SQLitePath,
	}
}

const usage = `usage: ledgerctl [--dry-run] [--verbose] <command> [flags]

commands:
  init-headers                  write the canonical header rows
  check                         compare header rows with the canonical layout
  backfill-ids                  assign ids to client rows without one
  list-clients                  print all clients
  list-sessions [--client N]    print sessions, optionally for one client
  delete-rows --start N --end M delete Clients rows N..M
  clear-clients                 clear the Clients collection
  restore --file F              append clients from a YAML export
  export --file F               write all clients to a YAML file
`

func main() {
	var (
		dryRun  = flag.Bool("dry-run", false, "Report what would change without writing")
		verbose = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	logging.InitLogger(logLevel, "text")

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	var cfg backendConfig
	if err := env.Load(&cfg, nil); err != nil {
		log.Fatalf("Failed to load environment variables: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ledgerstore.Open(ctx, cfg.options())
	if err != nil {
		log.Fatalf("Failed to open ledger backend: %v", err)
	}
	defer store.Close()
	slog.Debug("Ledger backend opened", "backend", cfg.LedgerBackend)

	clock := clockwork.NewRealClock()
	l := ledger.New(store.Backend, ledger.NewClientCache(ledger.DefaultCacheTTL, clock, nil), nil, clock, nil)

	start := time.Now()
	r := &runner{ledger: l, out: os.Stdout, dryRun: *dryRun}
	if err := r.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		slog.Error("Command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	slog.Debug("Command complete", "command", flag.Arg(0), "duration_ms", time.Since(start).Milliseconds())
}
