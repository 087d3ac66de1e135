// Package ledgerstore opens the configured ledger backend.
package ledgerstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/postgres"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/sheets"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/sqlite"
	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/config"
)

// Options selects and locates a backend. Kind is one of the config.Backend*
// constants.
type Options struct {
	Kind            string
	ClientsSheetID  string
	SessionsSheetID string
	Credentials     string
	DatabaseURL     string
	SQLitePath      string

	// Metrics times queries on the postgres backend. May be nil.
	Metrics *metrics.StoreMetrics
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Kind:            cfg.LedgerBackend,
		ClientsSheetID:  cfg.GoogleClientsSheetID,
		SessionsSheetID: cfg.GoogleSessionsSheetID,
		Credentials:     cfg.GoogleCredentialsJSON,
		DatabaseURL:     cfg.DatabaseURL,
		SQLitePath:      cfg.SQLitePath,
	}
}

// Store is an open backend together with its health check and cleanup.
type Store struct {
	Backend ledger.Backend
	Ping    func(ctx context.Context) error
	close   func()
}

// Close releases the backend's connections. It is safe to call on a Store
// whose backend holds none.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend named by opts.Kind. The relational backends
// create their schema on first use.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Kind {
	case config.BackendSheets:
		creds, err := sheets.WithCredentials(opts.Credentials)
		if err != nil {
			return nil, err
		}
		b, err := sheets.New(ctx, opts.ClientsSheetID, opts.SessionsSheetID, creds)
		if err != nil {
			return nil, err
		}
		return &Store{Backend: b, Ping: b.Ping}, nil

	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, opts.DatabaseURL, opts.Metrics)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		rs := postgres.NewRowStore(pool)
		return &Store{Backend: rs, Ping: rs.Ping, close: pool.Close}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("SQLite ledger opened", "path", opts.SQLitePath)
		rs := sqlite.NewRowStore(db)
		return &Store{Backend: rs, Ping: rs.Ping, close: func() { _ = db.Close() }}, nil
	}

	return nil, fmt.Errorf("unknown ledger backend %q", opts.Kind)
}
