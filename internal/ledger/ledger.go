package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/retry"
	"golang.org/x/sync/singleflight"
)

// duplicateCheckPolicy retries the client list fetch twice, waiting 0.5s and then 1s.
var duplicateCheckPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	Linear:         true,
}

// clientLoadTimeout bounds a shared client list read.
const clientLoadTimeout = 30 * time.Second

func duplicatePolicyOn(clock clockwork.Clock) retry.Policy {
	p := duplicateCheckPolicy
	p.Clock = clock
	return p
}

// Ledger owns all reads and writes to the Clients and Sessions collections.
// It derives contract and invoice numbers, computes running balances and
// serves the client list from a TTL cache.
type Ledger struct {
	backend   Backend
	cache     *ClientCache
	sequences SequenceAllocator
	clock     clockwork.Clock
	metrics   *metrics.LedgerMetrics
	loads     singleflight.Group

	newID     func() string
	dupPolicy retry.Policy
}

var _ domain.ClientLedger = (*Ledger)(nil)

// New creates a Ledger. sequences and m may be nil; without a sequence
// allocator numbers are derived from the stored rows alone.
func New(backend Backend, cache *ClientCache, sequences SequenceAllocator, clock clockwork.Clock, m *metrics.LedgerMetrics) *Ledger {
	return &Ledger{
		backend:   backend,
		cache:     cache,
		sequences: sequences,
		clock:     clock,
		metrics:   m,
		newID:     NewClientID,
		dupPolicy: duplicatePolicyOn(clock),
	}
}

// NewClientID returns a fresh identifier of the form CL-XXXXXXXX.
func NewClientID() string {
	return "CL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// ListClients returns every client with an identifier, in sheet order.
// Concurrent misses share one backend read. The read is detached from the
// caller's cancellation so one abandoned request cannot fail the others.
func (l *Ledger) ListClients(ctx context.Context) ([]domain.Client, error) {
	if clients, ok := l.cache.Get(); ok {
		return clients, nil
	}

	gen := l.cache.Generation()
	ch := l.loads.DoChan(fmt.Sprintf("%s:%d", Clients, gen), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clientLoadTimeout)
		defer cancel()

		clients, err := l.loadClients(loadCtx)
		if err != nil {
			return nil, err
		}
		if !l.cache.SetIfCurrent(clients, gen) {
			slog.Debug("Client list changed during load, snapshot not cached")
		}
		return clients, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]domain.Client)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Ledger) loadClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := l.read(ctx, Clients, clientsRange)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(rows))
	for i, values := range rows {
		if i == 0 {
			continue // header
		}
		if len(values) == 0 || strings.TrimSpace(values[colClientID]) == "" {
			continue
		}
		client, err := parseClientRow(i+1, values)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	slog.Debug("Loaded client list", "count", len(clients))
	return clients, nil
}

// FindClientByName returns the first client whose name matches
// case-insensitively, or nil.
func (l *Ledger) FindClientByName(ctx context.Context, name string) (*domain.Client, error) {
	clients, err := l.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return findByName(clients, name), nil
}

func findByName(clients []domain.Client, name string) *domain.Client {
	name = strings.TrimSpace(name)
	for i := range clients {
		if strings.EqualFold(clients[i].Name, name) {
			return &clients[i]
		}
	}
	return nil
}

// CheckDuplicateClient returns the client registered with the given email,
// or nil. Names are not compared: different people may share a name.
func (l *Ledger) CheckDuplicateClient(ctx context.Context, name, email string) (*domain.Client, error) {
	email = strings.TrimSpace(email)

	policy := l.dupPolicy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Retrying duplicate client check", "attempt", attempt, "backoff", backoff, "error", err)
	}

	clients, err := retry.Do(ctx, policy, classifyBackendError, func() ([]domain.Client, error) {
		return l.ListClients(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("checking duplicate for %q: %w", name, err)
	}

	for i := range clients {
		if strings.EqualFold(strings.TrimSpace(clients[i].Email), email) {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func classifyBackendError(err error) retry.Action {
	if errors.Is(err, domain.ErrBackendUnavailable) {
		return retry.Retry
	}
	return retry.Stop
}

// AddClient assigns an identifier, a contract number and an invoice number,
// appends the client and invalidates the cache.
func (l *Ledger) AddClient(ctx context.Context, data domain.NewClient) (*domain.Client, error) {
	contract, err := l.nextContractNumber(ctx)
	if err != nil {
		return nil, err
	}
	invoice, err := l.nextClientInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	pm := data.PaymentMethod
	if pm == "" {
		pm = domain.UpfrontDeposit
	}

	client := domain.Client{
		ID:             l.newID(),
		Name:           strings.TrimSpace(data.Name),
		Address:        strings.TrimSpace(data.Address),
		Contact:        strings.TrimSpace(data.Contact),
		Email:          strings.TrimSpace(data.Email),
		PackageType:    strings.TrimSpace(data.PackageType),
		StartDate:      data.StartDate,
		EndDate:        data.EndDate,
		AmountPaid:     data.AmountPaid,
		PaymentMethod:  pm,
		ContractNumber: contract,
		InvoiceNumber:  invoice,
		CreatedAt:      l.timestamp(),
		Notes:          strings.TrimSpace(data.Notes),
	}

	if err := l.append(ctx, Clients, [][]string{clientRow(client)}); err != nil {
		return nil, err
	}
	l.cache.Invalidate()

	slog.Info("Client added", "client_id", client.ID, "contract_number", contract, "invoice_number", invoice)
	return &client, nil
}

// AddSession records a session for an existing client. The remaining balance
// follows the client's payment method.
func (l *Ledger) AddSession(ctx context.Context, data domain.NewSession) (*domain.Session, error) {
	client, err := l.FindClientByName(ctx, data.ClientName)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrClientNotFound, data.ClientName)
	}

	invoice, err := l.nextSessionInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	prior, err := l.ListSessionsForClient(ctx, client.Name)
	if err != nil {
		return nil, err
	}
	var collected float64
	for _, s := range prior {
		collected += s.AmountCollected
	}
	collected += data.AmountCollected

	session := domain.Session{
		ClientID:         client.ID,
		ClientName:       client.Name,
		CoachingType:     strings.TrimSpace(data.CoachingType),
		CoachingHours:    data.CoachingHours,
		PackageAmount:    client.AmountPaid,
		AmountCollected:  data.AmountCollected,
		RemainingBalance: client.PaymentMethod.Balance(client.AmountPaid, collected),
		SessionDate:      data.SessionDate,
		PaymentMethod:    client.PaymentMethod,
		ContractNumber:   client.ContractNumber,
		InvoiceNumber:    invoice,
		CreatedAt:        l.timestamp(),
		Notes:            strings.TrimSpace(data.Notes),
	}

	if err := l.append(ctx, Sessions, [][]string{sessionRow(session)}); err != nil {
		return nil, err
	}

	slog.Info("Session added", "client_id", client.ID, "invoice_number", invoice, "remaining_balance", session.RemainingBalance)
	return &session, nil
}

// ListSessionsForClient reads the Sessions collection and returns the rows
// whose client name matches case-insensitively. It never uses the cache.
func (l *Ledger) ListSessionsForClient(ctx context.Context, name string) ([]domain.Session, error) {
	name = strings.TrimSpace(name)
	return l.sessions(ctx, func(values []string) bool {
		return scolClientName < len(values) && strings.EqualFold(strings.TrimSpace(values[scolClientName]), name)
	})
}

func (l *Ledger) sessions(ctx context.Context, match func(values []string) bool) ([]domain.Session, error) {
	rows, err := l.read(ctx, Sessions, sessionsRange)
	if err != nil {
		return nil, err
	}

	var sessions []domain.Session
	for i, values := range rows {
		if i == 0 || len(values) == 0 || !match(values) {
			continue
		}
		s, err := parseSessionRow(i+1, values)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// UpdateClientEndDate writes a new end date for the named client. It reports
// false, without writing, when no client matches.
func (l *Ledger) UpdateClientEndDate(ctx context.Context, name, newDate string) (bool, error) {
	client, err := l.FindClientByName(ctx, name)
	if err != nil {
		return false, err
	}
	if client == nil {
		return false, nil
	}

	ref := cellRef(colEndDate, client.Row)
	if err := l.update(ctx, Clients, ref, [][]string{{newDate}}); err != nil {
		return false, err
	}
	l.cache.Invalidate()

	slog.Info("Client end date updated", "client_id", client.ID, "end_date", newDate)
	return true, nil
}

// DeleteRows removes Clients rows startRow..endRow, 1-indexed and inclusive.
func (l *Ledger) DeleteRows(ctx context.Context, startRow, endRow int) error {
	if startRow < 1 || endRow < startRow {
		return fmt.Errorf("invalid row range %d-%d", startRow, endRow)
	}

	start := l.clock.Now()
	err := l.backend.DeleteRows(ctx, Clients, startRow, endRow)
	l.metrics.Observe("delete_rows", l.clock.Since(start), err)
	if err != nil {
		return backendError(fmt.Sprintf("deleting clients rows %d-%d", startRow, endRow), err)
	}
	l.cache.Invalidate()
	return nil
}

func (l *Ledger) timestamp() string {
	return l.clock.Now().UTC().Format(time.RFC3339)
}

func (l *Ledger) read(ctx context.Context, c Collection, a1 string) ([][]string, error) {
	start := l.clock.Now()
	rows, err := l.backend.ReadRange(ctx, c, a1)
	l.metrics.Observe("read_range", l.clock.Since(start), err)
	if err != nil {
		return nil, backendError(fmt.Sprintf("reading %s %s", c, a1), err)
	}
	return rows, nil
}

func (l *Ledger) append(ctx context.Context, c Collection, rows [][]string) error {
	start := l.clock.Now()
	err := l.backend.AppendRows(ctx, c, rows)
	l.metrics.Observe("append_rows", l.clock.Since(start), err)
	if err != nil {
		return backendError(fmt.Sprintf("appending to %s", c), err)
	}
	for range rows {
		l.metrics.Written(string(c))
	}
	return nil
}

func (l *Ledger) update(ctx context.Context, c Collection, a1 string, values [][]string) error {
	start := l.clock.Now()
	err := l.backend.UpdateRange(ctx, c, a1, values)
	l.metrics.Observe("update_range", l.clock.Since(start), err)
	if err != nil {
		return backendError(fmt.Sprintf("updating %s %s", c, a1), err)
	}
	return nil
}

// backendError marks a backend failure as ErrBackendUnavailable.
func backendError(op string, err error) error {
	if errors.Is(err, domain.ErrBackendUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)
}
