// Package sheet holds the per-invocation schema snapshot and the A1
// address helpers the rest of the pipeline grounds against.
package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
)

// Service is the slice of the remote spreadsheet API the agent consumes.
// *client.Client implements it; tests substitute fakes.
type Service interface {
	SheetID(ctx context.Context, spreadsheetID, sheetName string) (int64, error)
	Values(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error)
	UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]any) (json.RawMessage, error)
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []client.Request) (json.RawMessage, error)
}

// Snapshot is the schema read from the spreadsheet at the start of one
// invocation: the header row as it appears in the sheet, the structural
// sheet id, and the 1-based row the header occupies. It is never mutated;
// structural mutations invalidate it and a fresh one must be read.
type Snapshot struct {
	Columns   []string
	SheetID   int64
	SheetName string
	HeaderRow int
}

// Read fetches the header row and structural sheet id. headerRow is the
// 1-based sheet row holding the column names; values <= 0 mean row 1.
func Read(ctx context.Context, svc Service, spreadsheetID, sheetName string, headerRow int) (Snapshot, error) {
	if headerRow <= 0 {
		headerRow = 1
	}

	sheetID, err := svc.SheetID(ctx, spreadsheetID, sheetName)
	if err != nil {
		return Snapshot{}, err
	}

	headerRange := fmt.Sprintf("%s!%d:%d", sheetName, headerRow, headerRow)
	rows, err := svc.Values(ctx, spreadsheetID, headerRange)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading header row: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Snapshot{}, fmt.Errorf("header row %d of %q is empty", headerRow, sheetName)
	}

	return Snapshot{
		Columns:   rows[0],
		SheetID:   sheetID,
		SheetName: sheetName,
		HeaderRow: headerRow,
	}, nil
}

// ColumnIndex returns the 0-based position of a column name, or -1 if the
// name is not present verbatim. Duplicate headers resolve to the first.
func (s Snapshot) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name appears verbatim in the header row.
func (s Snapshot) HasColumn(name string) bool {
	return s.ColumnIndex(name) >= 0
}

// NumColumns returns the width of the header row.
func (s Snapshot) NumColumns() int { return len(s.Columns) }

// NextColumnName synthesizes a name for a column appended after the
// current last one, used when an instruction names no target.
func (s Snapshot) NextColumnName() string {
	return fmt.Sprintf("Column_%d", len(s.Columns)+1)
}

// ColumnLetter returns the A1 letter for a 0-based column index.
func ColumnLetter(index int) string {
	return ColToLetter(index + 1)
}

// DataRange describes where the data rows live: the 0-based grid row of
// the first data row (the row right under the header).
func (s Snapshot) DataStartRow() int {
	return s.HeaderRow // header occupies grid row HeaderRow-1
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s (sheetId=%d): [%s]", s.SheetName, s.SheetID, strings.Join(s.Columns, ", "))
}
