package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
)

// RowStore keeps ledger collections in the ledger_rows table, one database
// row per sheet row. Positions are 1-indexed like sheet rows and blank rows
// are not stored.
type RowStore struct {
	pool *pgxpool.Pool
}

var _ ledger.Backend = (*RowStore)(nil)

func NewRowStore(pool *pgxpool.Pool) *RowStore {
	return &RowStore{pool: pool}
}

func (s *RowStore) ReadRange(ctx context.Context, c ledger.Collection, a1 string) ([][]string, error) {
	r, err := ledger.ParseRange(a1)
	if err != nil {
		return nil, err
	}

	query := `SELECT position, cells FROM ledger_rows WHERE collection = $1 AND position >= $2`
	args := []any{string(c), max(r.FirstRow, 1)}
	if r.LastRow > 0 {
		query += ` AND position <= $3`
		args = append(args, r.LastRow)
	}
	query += ` ORDER BY position`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", c, a1, err)
	}
	defer rows.Close()

	var grid ledger.Grid
	for rows.Next() {
		var position int
		var cells []string
		if err := rows.Scan(&position, &cells); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c, err)
		}
		for len(grid) < position {
			grid = append(grid, nil)
		}
		grid[position-1] = cells
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", c, a1, err)
	}

	return grid.Read(r), nil
}

func (s *RowStore) AppendRows(ctx context.Context, c ledger.Collection, values [][]string) error {
	return s.inTx(ctx, c, func(tx pgx.Tx) error {
		var last int
		err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM ledger_rows WHERE collection = $1`, string(c)).Scan(&last)
		if err != nil {
			return fmt.Errorf("failed to find last %s row: %w", c, err)
		}

		batch := &pgx.Batch{}
		for i, cells := range values {
			batch.Queue(`INSERT INTO ledger_rows (collection, position, cells) VALUES ($1, $2, $3)`, string(c), last+i+1, cells)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to append %s rows: %w", c, err)
		}
		return nil
	})
}

func (s *RowStore) UpdateRange(ctx context.Context, c ledger.Collection, a1 string, values [][]string) error {
	r, err := ledger.ParseRange(a1)
	if err != nil {
		return err
	}

	return s.inTx(ctx, c, func(tx pgx.Tx) error {
		for i, vals := range values {
			position := max(r.FirstRow, 1) + i

			var existing []string
			err := tx.QueryRow(ctx, `SELECT cells FROM ledger_rows WHERE collection = $1 AND position = $2`, string(c), position).Scan(&existing)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to load %s row %d: %w", c, position, err)
			}

			grid, _ := ledger.Grid{existing}.Write(ledger.Range{FirstCol: r.FirstCol, LastCol: r.LastCol, FirstRow: 1}, [][]string{vals})
			cells := grid[0]

			if len(cells) == 0 {
				_, err = tx.Exec(ctx, `DELETE FROM ledger_rows WHERE collection = $1 AND position = $2`, string(c), position)
			} else {
				_, err = tx.Exec(ctx, `
					INSERT INTO ledger_rows (collection, position, cells) VALUES ($1, $2, $3)
					ON CONFLICT (collection, position) DO UPDATE SET cells = EXCLUDED.cells`,
					string(c), position, cells)
			}
			if err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", c, position, err)
			}
		}
		return nil
	})
}

func (s *RowStore) DeleteRows(ctx context.Context, c ledger.Collection, startRow, endRow int) error {
	if startRow < 1 || endRow < startRow {
		return fmt.Errorf("invalid row range %d-%d", startRow, endRow)
	}

	return s.inTx(ctx, c, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ledger_rows WHERE collection = $1 AND position BETWEEN $2 AND $3`, string(c), startRow, endRow); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", c, err)
		}
		// Renumber through negative positions: the primary key is checked
		// per row, and it must stay non-deferrable to arbitrate upserts.
		shift := endRow - startRow + 1
		if _, err := tx.Exec(ctx, `UPDATE ledger_rows SET position = -(position - $3) WHERE collection = $1 AND position > $2`, string(c), endRow, shift); err != nil {
			return fmt.Errorf("failed to renumber %s rows: %w", c, err)
		}
		if _, err := tx.Exec(ctx, `UPDATE ledger_rows SET position = -position WHERE collection = $1 AND position < 0`, string(c)); err != nil {
			return fmt.Errorf("failed to renumber %s rows: %w", c, err)
		}
		return nil
	})
}

func (s *RowStore) ClearSheet(ctx context.Context, c ledger.Collection) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM ledger_rows WHERE collection = $1`, string(c)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c, err)
	}
	return nil
}

// Ping is used by the readiness probe.
func (s *RowStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// inTx runs fn in a transaction that holds a per-collection advisory lock,
// serializing structural changes to one collection.
func (s *RowStore) inTx(ctx context.Context, c ledger.Collection, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "ledger:"+string(c)); err != nil {
			return fmt.Errorf("failed to lock %s: %w", c, err)
		}
		return fn(tx)
	})
}
