// Package ledgertest provides an in-memory ledger backend for tests.
package ledgertest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
)

// ErrInjected is returned by calls that fail because of FailNext.
var ErrInjected = errors.New("injected backend failure")

// Backend keeps each collection as a ledger.Grid. It is safe for concurrent use.
type Backend struct {
	mu    sync.Mutex
	grids map[ledger.Collection]ledger.Grid
	calls map[string]int
	fail  int
}

// New returns a backend whose collections hold only their header rows.
func New() *Backend {
	b := &Backend{
		grids: make(map[ledger.Collection]ledger.Grid),
		calls: make(map[string]int),
	}
	b.grids[ledger.Clients] = ledger.Grid{slices.Clone(ledger.ClientHeaders)}
	b.grids[ledger.Sessions] = ledger.Grid{slices.Clone(ledger.SessionHeaders)}
	return b
}

// Seed appends raw rows to a collection without counting a call.
func (b *Backend) Seed(c ledger.Collection, rows ...[]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range rows {
		b.grids[c] = append(b.grids[c], slices.Clone(r))
	}
}

// Rows returns a copy of every row of a collection, header included.
func (b *Backend) Rows(c ledger.Collection) [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneRows(b.grids[c])
}

// FailNext makes the next n calls fail with ErrInjected.
func (b *Backend) FailNext(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = n
}

// Calls returns how many times the named method was called.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *Backend) begin(method string) error {
	b.calls[method]++
	if b.fail > 0 {
		b.fail--
		return ErrInjected
	}
	return nil
}

func (b *Backend) ReadRange(ctx context.Context, c ledger.Collection, a1 string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("ReadRange"); err != nil {
		return nil, err
	}
	r, err := ledger.ParseRange(a1)
	if err != nil {
		return nil, err
	}
	return b.grids[c].Read(r), nil
}

func (b *Backend) AppendRows(ctx context.Context, c ledger.Collection, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("AppendRows"); err != nil {
		return err
	}
	b.grids[c] = append(b.grids[c], cloneRows(rows)...)
	return nil
}

func (b *Backend) UpdateRange(ctx context.Context, c ledger.Collection, a1 string, values [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("UpdateRange"); err != nil {
		return err
	}
	r, err := ledger.ParseRange(a1)
	if err != nil {
		return err
	}
	b.grids[c], _ = b.grids[c].Write(r, cloneRows(values))
	return nil
}

func (b *Backend) DeleteRows(ctx context.Context, c ledger.Collection, startRow, endRow int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("DeleteRows"); err != nil {
		return err
	}
	b.grids[c] = b.grids[c].DeleteRows(startRow, endRow)
	return nil
}

func (b *Backend) ClearSheet(ctx context.Context, c ledger.Collection) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin("ClearSheet"); err != nil {
		return err
	}
	b.grids[c] = nil
	return nil
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
