// Package dispatch maps a grounded action onto the wire-level mutation
// requests the spreadsheet service expects. One case per action kind;
// this is where the positional semantics live (0-based grid indexes,
// descending row deletion, before/after insert positions).
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/sheet"
)

// Outcome is the terminal result of one dispatched action: the service's
// opaque response echo plus action-specific fields for the caller's
// result envelope.
type Outcome struct {
	Response json.RawMessage
	Fields   map[string]any
}

// ColumnNotFoundError means a reference still misses the schema after
// grounding. That is a structural caller error, not oracle noise.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in sheet", e.Column)
}

// Dispatch applies one grounded action to the spreadsheet. Everything in
// the Action/Dispatch boundary is 0-based; only displayed row numbers in
// the action payload and A1 text are 1-based.
func Dispatch(ctx context.Context, svc sheet.Service, a action.Action, snap sheet.Snapshot, spreadsheetID string) (*Outcome, error) {
	d := &dispatcher{
		svc:           svc,
		snap:          snap,
		spreadsheetID: spreadsheetID,
	}

	switch act := a.(type) {
	case *action.Sort:
		return d.sort(ctx, act)
	case *action.MultiSort:
		return d.multiSort(ctx, act)
	case *action.Filter:
		return d.filter(ctx, act)
	case *action.DeleteRows:
		return d.deleteRows(ctx, act)
	case *action.RemoveDuplicates:
		return d.removeDuplicates(ctx, act)
	case *action.Formula:
		return d.formula(ctx, act)
	case *action.ColorRow:
		return d.colorRow(ctx, act)
	case *action.ColorColumn:
		return d.colorColumn(ctx, act)
	case *action.ColorRange:
		return d.colorRange(ctx, act)
	case *action.ColorIf:
		return d.colorIf(ctx, act)
	case *action.ColorMulti:
		return d.colorMulti(ctx, act)
	case *action.ColorNumberRange:
		return d.colorNumberRange(ctx, act)
	case *action.AddColumn:
		return d.addColumn(ctx, act)
	case *action.AddColumnSerial:
		return d.addColumnSerial(ctx, act)
	case *action.DeleteColumn:
		return d.deleteColumn(ctx, act)
	case *action.AddRow:
		return d.addRow(ctx, act)
	case *action.DeleteRow:
		return d.deleteRow(ctx, act)
	case *action.MoveColumn:
		return d.moveColumn(ctx, act)
	case *action.RenameColumn:
		return d.renameColumn(ctx, act)
	case *action.FillDown:
		return d.fillDown(ctx, act)
	case *action.AddSerial:
		return d.addSerial(ctx, act)
	case *action.Freeze:
		return d.freeze(ctx, act)
	case *action.MergeCells:
		return d.mergeCells(ctx, act)
	case *action.CopyColumn:
		return d.copyColumn(ctx, act)
	case *action.CopyRow:
		return d.copyRow(ctx, act)
	case *action.MoveRow:
		return d.moveRow(ctx, act)
	case *action.ClearFormatting:
		return d.clearFormatting(ctx, act)
	default:
		return nil, fmt.Errorf("unhandled action kind %q", a.Kind())
	}
}

type dispatcher struct {
	svc           sheet.Service
	snap          sheet.Snapshot
	spreadsheetID string
}

func (d *dispatcher) columnIndex(name string) (int, error) {
	if idx := d.snap.ColumnIndex(name); idx >= 0 {
		return idx, nil
	}
	return 0, &ColumnNotFoundError{Column: name}
}

// allValues reads the whole sheet, header included, as formatted strings.
func (d *dispatcher) allValues(ctx context.Context) ([][]string, error) {
	return d.svc.Values(ctx, d.spreadsheetID, d.snap.SheetName)
}

func (d *dispatcher) batch(ctx context.Context, reqs ...client.Request) (json.RawMessage, error) {
	return d.svc.BatchUpdate(ctx, d.spreadsheetID, reqs)
}

// dataRange is the header-exclusive full-width grid range of the data
// rows, given the total row count of the sheet.
func (d *dispatcher) dataRange(numRows int) client.GridRange {
	return client.GridRange{
		SheetID:          d.snap.SheetID,
		StartRowIndex:    client.Intp(d.snap.DataStartRow()),
		EndRowIndex:      client.Intp(numRows),
		StartColumnIndex: client.Intp(0),
		EndColumnIndex:   client.Intp(d.snap.NumColumns()),
	}
}

func sortOrder(ascending bool) string {
	if ascending {
		return "ASCENDING"
	}
	return "DESCENDING"
}

// cellNumber parses a cell as a number. Rows whose target cell is absent
// or non-numeric are skipped by numeric row filters, never fatal.
func cellNumber(row []string, col int) (float64, bool) {
	if col >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func compareNumeric(op string, cell, want float64) (bool, error) {
	switch op {
	case ">":
		return cell > want, nil
	case ">=":
		return cell >= want, nil
	case "<":
		return cell < want, nil
	case "<=":
		return cell <= want, nil
	case "=", "==":
		return cell == want, nil
	case "!=":
		return cell != want, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

// matchingDataRows returns the 0-based grid rows whose cell in col
// satisfies the condition, scanning data rows only.
func (d *dispatcher) matchingDataRows(rows [][]string, col int, op string, want float64) ([]int, error) {
	// Validate the operator up front so a bad instruction fails loudly
	// instead of matching nothing.
	if _, err := compareNumeric(op, 0, 0); err != nil {
		return nil, err
	}
	var matched []int
	for i := d.snap.DataStartRow(); i < len(rows); i++ {
		cell, ok := cellNumber(rows[i], col)
		if !ok {
			continue
		}
		ok, err := compareNumeric(op, cell, want)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, i)
		}
	}
	return matched, nil
}

// a1Cell is the A1 address of a single cell given 0-based grid coords.
func (d *dispatcher) a1Cell(gridRow, gridCol int) string {
	return fmt.Sprintf("%s!%s%d", d.snap.SheetName, sheet.ColumnLetter(gridCol), gridRow+1)
}

// a1Range is the A1 address of a rectangle given 0-based grid coords.
// The sheet qualifier appears once, on the whole range, never per cell.
func (d *dispatcher) a1Range(startRow, startCol, endRow, endCol int) string {
	return sheet.FormatAddress(d.snap.SheetName, startRow+1, startCol+1, endRow+1, endCol+1)
}

// gridRangeFromA1 converts an A1-style range (sheet part optional) to a
// bounded GridRange on the snapshot's sheet.
func (d *dispatcher) gridRangeFromA1(a1 string) (client.GridRange, error) {
	_, startRow, startCol, endRow, endCol, err := sheet.ParseRange(a1)
	if err != nil {
		return client.GridRange{}, err
	}
	return client.GridRange{
		SheetID:          d.snap.SheetID,
		StartRowIndex:    client.Intp(startRow - 1),
		EndRowIndex:      client.Intp(endRow),
		StartColumnIndex: client.Intp(startCol - 1),
		EndColumnIndex:   client.Intp(endCol),
	}, nil
}
