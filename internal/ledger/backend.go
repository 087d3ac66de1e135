package ledger

import "context"

// Collection names one of the two record collections.
type Collection string

const (
	Clients  Collection = "clients"
	Sessions Collection = "sessions"
)

// Backend is a row-oriented spreadsheet store. Rows and ranges are addressed
// the way a spreadsheet addresses them: row 1 is the header row and ranges
// use A1 notation. Implementations return rows with trailing blank cells
// removed, and stop at the last non-blank row.
type Backend interface {
	ReadRange(ctx context.Context, c Collection, a1 string) ([][]string, error)
	AppendRows(ctx context.Context, c Collection, rows [][]string) error
	UpdateRange(ctx context.Context, c Collection, a1 string, values [][]string) error
	// DeleteRows removes rows startRow..endRow (1-indexed, inclusive) and
	// shifts the rows below up.
	DeleteRows(ctx context.Context, c Collection, startRow, endRow int) error
	// ClearSheet blanks every cell of the collection.
	ClearSheet(ctx context.Context, c Collection) error
}

// SequenceAllocator hands out numbers for a numbering series. Reserve must
// return a value strictly greater than floor and greater than anything it
// returned before for the same series.
type SequenceAllocator interface {
	Reserve(ctx context.Context, series string, floor int) (int, error)
}
