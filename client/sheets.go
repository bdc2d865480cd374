package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ErrSheetNotFound is returned when a named sheet is absent from the spreadsheet.
type ErrSheetNotFound struct {
	SheetName string
}

func (e *ErrSheetNotFound) Error() string {
	return fmt.Sprintf("sheet %q not found in spreadsheet", e.SheetName)
}

// Metadata fetches spreadsheet metadata without grid data.
func (c *Client) Metadata(ctx context.Context, spreadsheetID string) (*Spreadsheet, error) {
	var out Spreadsheet
	q := url.Values{"includeGridData": {"false"}}
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID)
	if err := c.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SheetID resolves a sheet title to its structural id.
func (c *Client) SheetID(ctx context.Context, spreadsheetID, sheetName string) (int64, error) {
	meta, err := c.Metadata(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}
	for _, s := range meta.Sheets {
		if s.Properties.Title == sheetName {
			return s.Properties.SheetID, nil
		}
	}
	return 0, &ErrSheetNotFound{SheetName: sheetName}
}

// Values reads a range and returns its cells as formatted strings.
// Trailing empty cells are absent from the service response; callers must
// treat short rows as rows with missing cells.
func (c *Client) Values(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error) {
	var out ValueRange
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(a1Range)
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	rows := make([][]string, len(out.Values))
	for i, row := range out.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			switch t := v.(type) {
			case string:
				cells[j] = t
			case nil:
				cells[j] = ""
			default:
				cells[j] = fmt.Sprint(t)
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

// UpdateRange writes values into a range with user-entered semantics, so
// formulas are interpreted rather than stored as text.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]any) (json.RawMessage, error) {
	body := ValueRange{Range: a1Range, Values: values}
	q := url.Values{"valueInputOption": {"USER_ENTERED"}}
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(a1Range)
	var out json.RawMessage
	if err := c.sendJSON(ctx, "PUT", path, q, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BatchUpdate applies a sequence of mutation requests as one atomic batch.
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, requests []Request) (json.RawMessage, error) {
	body := map[string]any{"requests": requests}
	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + ":batchUpdate"
	var out json.RawMessage
	if err := c.sendJSON(ctx, "POST", path, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
