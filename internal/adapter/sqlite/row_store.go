package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
)

// RowStore keeps ledger collections in the ledger_rows table with the cells
// of each row encoded as a JSON array.
type RowStore struct {
	db *DB
}

var _ ledger.Backend = (*RowStore)(nil)

func NewRowStore(db *DB) *RowStore {
	return &RowStore{db: db}
}

func (s *RowStore) ReadRange(ctx context.Context, c ledger.Collection, a1 string) ([][]string, error) {
	r, err := ledger.ParseRange(a1)
	if err != nil {
		return nil, err
	}

	query := `SELECT position, cells FROM ledger_rows WHERE collection = ? AND position >= ?`
	args := []any{string(c), max(r.FirstRow, 1)}
	if r.LastRow > 0 {
		query += ` AND position <= ?`
		args = append(args, r.LastRow)
	}
	query += ` ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", c, a1, err)
	}
	defer rows.Close()

	var grid ledger.Grid
	for rows.Next() {
		var position int
		var raw string
		if err := rows.Scan(&position, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c, err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", c, position, err)
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
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var last int
		err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM ledger_rows WHERE collection = ?`, string(c)).Scan(&last)
		if err != nil {
			return fmt.Errorf("failed to find last %s row: %w", c, err)
		}

		for i, cells := range values {
			raw, err := encodeCells(cells)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO ledger_rows (collection, position, cells) VALUES (?, ?, ?)`, string(c), last+i+1, raw); err != nil {
				return fmt.Errorf("failed to append %s row: %w", c, err)
			}
		}
		return nil
	})
}

func (s *RowStore) UpdateRange(ctx context.Context, c ledger.Collection, a1 string, values [][]string) error {
	r, err := ledger.ParseRange(a1)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i, vals := range values {
			position := max(r.FirstRow, 1) + i

			var existing []string
			var raw string
			err := tx.QueryRowContext(ctx, `SELECT cells FROM ledger_rows WHERE collection = ? AND position = ?`, string(c), position).Scan(&raw)
			switch {
			case errors.Is(err, sql.ErrNoRows):
			case err != nil:
				return fmt.Errorf("failed to load %s row %d: %w", c, position, err)
			default:
				if existing, err = decodeCells(raw); err != nil {
					return fmt.Errorf("%s row %d: %w", c, position, err)
				}
			}

			grid, _ := ledger.Grid{existing}.Write(ledger.Range{FirstCol: r.FirstCol, LastCol: r.LastCol, FirstRow: 1}, [][]string{vals})
			if len(grid[0]) == 0 {
				_, err = tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE collection = ? AND position = ?`, string(c), position)
			} else {
				raw, encErr := encodeCells(grid[0])
				if encErr != nil {
					return encErr
				}
				_, err = tx.ExecContext(ctx, `
					INSERT INTO ledger_rows (collection, position, cells) VALUES (?, ?, ?)
					ON CONFLICT (collection, position) DO UPDATE SET cells = excluded.cells`,
					string(c), position, raw)
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

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE collection = ? AND position BETWEEN ? AND ?`, string(c), startRow, endRow); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", c, err)
		}

		// Renumber through negative positions so no intermediate state
		// collides with the primary key.
		shift := endRow - startRow + 1
		if _, err := tx.ExecContext(ctx, `UPDATE ledger_rows SET position = -(position - ?) WHERE collection = ? AND position > ?`, shift, string(c), endRow); err != nil {
			return fmt.Errorf("failed to renumber %s rows: %w", c, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE ledger_rows SET position = -position WHERE collection = ? AND position < 0`, string(c)); err != nil {
			return fmt.Errorf("failed to renumber %s rows: %w", c, err)
		}
		return nil
	})
}

func (s *RowStore) ClearSheet(ctx context.Context, c ledger.Collection) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ledger_rows WHERE collection = ?`, string(c)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c, err)
	}
	return nil
}

// Ping is used by the readiness probe.
func (s *RowStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *RowStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("failed to encode cells: %w", err)
	}
	return string(b), nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	return cells, nil
}
