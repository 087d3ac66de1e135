// Package sheets stores the ledger in two Google Sheets spreadsheets, one per
// collection. Only the first worksheet of each spreadsheet is used.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
	"github.com/mikeohgml-jpg/coaching-portal/internal/platform/version"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	valueInput  = "USER_ENTERED"
	valueRender = "FORMATTED_VALUE"
	// firstSheetID is the id of the worksheet every new spreadsheet starts with.
	firstSheetID = 0
)

// Backend implements ledger.Backend on the Sheets v4 API.
type Backend struct {
	svc          *sheetsapi.Service
	spreadsheets map[ledger.Collection]string
}

var _ ledger.Backend = (*Backend)(nil)

// New creates a backend for the given spreadsheet ids. opts are passed to
// the API client; production callers pass WithCredentials.
func New(ctx context.Context, clientsSheetID, sessionsSheetID string, opts ...option.ClientOption) (*Backend, error) {
	opts = append([]option.ClientOption{
		option.WithScopes(sheetsapi.SpreadsheetsScope),
		option.WithUserAgent(version.UserAgent()),
	}, opts...)

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	slog.Info("Sheets backend ready", "clients_sheet", clientsSheetID, "sessions_sheet", sessionsSheetID)
	return &Backend{
		svc: svc,
		spreadsheets: map[ledger.Collection]string{
			ledger.Clients:  clientsSheetID,
			ledger.Sessions: sessionsSheetID,
		},
	}, nil
}

// WithCredentials returns the client option for a service account key given
// either inline as JSON or as a path to a key file.
func WithCredentials(credentials string) (option.ClientOption, error) {
	credentials = strings.TrimSpace(credentials)
	if strings.HasPrefix(credentials, "{") {
		return option.WithCredentialsJSON([]byte(credentials)), nil
	}
	data, err := os.ReadFile(credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return option.WithCredentialsJSON(data), nil
}

func (b *Backend) spreadsheet(c ledger.Collection) (string, error) {
	id, ok := b.spreadsheets[c]
	if !ok || id == "" {
		return "", fmt.Errorf("no spreadsheet configured for %s", c)
	}
	return id, nil
}

func (b *Backend) ReadRange(ctx context.Context, c ledger.Collection, a1 string) ([][]string, error) {
	id, err := b.spreadsheet(c)
	if err != nil {
		return nil, err
	}

	resp, err := b.svc.Spreadsheets.Values.Get(id, a1).
		ValueRenderOption(valueRender).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", c, a1, err)
	}
	return toStrings(resp.Values), nil
}

func (b *Backend) AppendRows(ctx context.Context, c ledger.Collection, values [][]string) error {
	id, err := b.spreadsheet(c)
	if err != nil {
		return err
	}

	_, err = b.svc.Spreadsheets.Values.Append(id, "A1", &sheetsapi.ValueRange{Values: toValues(values)}).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", c, err)
	}
	return nil
}

func (b *Backend) UpdateRange(ctx context.Context, c ledger.Collection, a1 string, values [][]string) error {
	id, err := b.spreadsheet(c)
	if err != nil {
		return err
	}

	_, err = b.svc.Spreadsheets.Values.Update(id, a1, &sheetsapi.ValueRange{Values: toValues(values)}).
		ValueInputOption(valueInput).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", c, a1, err)
	}
	return nil
}

func (b *Backend) DeleteRows(ctx context.Context, c ledger.Collection, startRow, endRow int) error {
	if startRow < 1 || endRow < startRow {
		return fmt.Errorf("invalid row range %d-%d", startRow, endRow)
	}

	return b.batchUpdate(ctx, c, &sheetsapi.Request{
		DeleteDimension: &sheetsapi.DeleteDimensionRequest{
			Range: &sheetsapi.DimensionRange{
				SheetId:         firstSheetID,
				Dimension:       "ROWS",
				StartIndex:      int64(startRow - 1),
				EndIndex:        int64(endRow),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	})
}

func (b *Backend) ClearSheet(ctx context.Context, c ledger.Collection) error {
	return b.batchUpdate(ctx, c, &sheetsapi.Request{
		UpdateCells: &sheetsapi.UpdateCellsRequest{
			Range: &sheetsapi.GridRange{
				SheetId:         firstSheetID,
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "*",
		},
	})
}

// Ping reads the Clients header cell.
func (b *Backend) Ping(ctx context.Context) error {
	_, err := b.ReadRange(ctx, ledger.Clients, "A1")
	return err
}

func (b *Backend) batchUpdate(ctx context.Context, c ledger.Collection, req *sheetsapi.Request) error {
	id, err := b.spreadsheet(c)
	if err != nil {
		return err
	}

	_, err = b.svc.Spreadsheets.BatchUpdate(id, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{req},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update on %s failed: %w", c, err)
	}
	return nil
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = v
		}
	}
	return out
}

func toStrings(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return out
}
