package dispatch

import (
	"context"
	"fmt"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
)

func (d *dispatcher) formula(ctx context.Context, act *action.Formula) (*Outcome, error) {
	targetCol := d.snap.ColumnIndex(act.TargetColumn)
	if act.CreateColumn {
		// The grounder flagged a missing target: append the column and
		// title it before writing the formula.
		targetCol = d.snap.NumColumns()
		if _, err := d.batch(ctx, client.Request{
			AppendDimension: &client.AppendDimensionRequest{
				SheetID:   d.snap.SheetID,
				Dimension: "COLUMNS",
				Length:    1,
			},
		}); err != nil {
			return nil, err
		}
		headerCell := d.a1Cell(d.snap.HeaderRow-1, targetCol)
		if _, err := d.svc.UpdateRange(ctx, d.spreadsheetID, headerCell, [][]any{{act.TargetColumn}}); err != nil {
			return nil, fmt.Errorf("writing new column header: %w", err)
		}
	} else if targetCol < 0 {
		return nil, &ColumnNotFoundError{Column: act.TargetColumn}
	}

	// User-entered semantics make the service interpret the formula.
	formulaCell := d.a1Cell(d.snap.DataStartRow(), targetCol)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, formulaCell, [][]any{{act.Formula}})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields: map[string]any{
			"target_column":  act.TargetColumn,
			"formula":        act.Formula,
			"created_column": act.CreateColumn,
		},
	}, nil
}

func (d *dispatcher) addColumn(ctx context.Context, act *action.AddColumn) (*Outcome, error) {
	if act.Name == "" {
		return nil, fmt.Errorf("new column needs a name")
	}

	insertAt := d.snap.NumColumns()
	var reqs []client.Request
	if act.Anchor == "" {
		reqs = append(reqs, client.Request{
			AppendDimension: &client.AppendDimensionRequest{
				SheetID:   d.snap.SheetID,
				Dimension: "COLUMNS",
				Length:    1,
			},
		})
	} else {
		anchor, err := d.columnIndex(act.Anchor)
		if err != nil {
			return nil, err
		}
		insertAt = anchor
		if act.Position == "after" {
			insertAt = anchor + 1
		}
		reqs = append(reqs, client.Request{
			InsertDimension: &client.InsertDimensionRequest{
				Range: client.DimensionRange{
					SheetID:    d.snap.SheetID,
					Dimension:  "COLUMNS",
					StartIndex: insertAt,
					EndIndex:   insertAt + 1,
				},
				InheritFromBefore: act.Position == "after",
			},
		})
	}

	if _, err := d.batch(ctx, reqs...); err != nil {
		return nil, err
	}
	headerCell := d.a1Cell(d.snap.HeaderRow-1, insertAt)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, headerCell, [][]any{{act.Name}})
	if err != nil {
		return nil, fmt.Errorf("writing new column header: %w", err)
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"name": act.Name, "index": insertAt},
	}, nil
}

func (d *dispatcher) addColumnSerial(ctx context.Context, act *action.AddColumnSerial) (*Outcome, error) {
	name := act.Name
	if name == "" {
		name = "S.No"
	}

	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := d.batch(ctx, client.Request{
		AppendDimension: &client.AppendDimensionRequest{
			SheetID:   d.snap.SheetID,
			Dimension: "COLUMNS",
			Length:    1,
		},
	}); err != nil {
		return nil, err
	}

	// Header plus 1..N in one ranged write.
	values := [][]any{{name}}
	for i := 1; i <= len(rows)-d.snap.DataStartRow(); i++ {
		values = append(values, []any{i})
	}
	newCol := d.snap.NumColumns()
	target := d.a1Range(d.snap.HeaderRow-1, newCol, len(rows)-1, newCol)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, target, values)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"name": name, "count": len(values) - 1},
	}, nil
}

func (d *dispatcher) deleteColumn(ctx context.Context, act *action.DeleteColumn) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	echo, err := d.batch(ctx, client.Request{
		DeleteDimension: &client.DeleteDimensionRequest{
			Range: client.DimensionRange{
				SheetID:    d.snap.SheetID,
				Dimension:  "COLUMNS",
				StartIndex: col,
				EndIndex:   col + 1,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"column": act.Column}}, nil
}

func (d *dispatcher) moveColumn(ctx context.Context, act *action.MoveColumn) (*Outcome, error) {
	src, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	tgt, err := d.columnIndex(act.Target)
	if err != nil {
		return nil, err
	}

	// destinationIndex is interpreted before the source is removed.
	dest := tgt
	if act.Position == "after" {
		dest = tgt + 1
	}

	echo, err := d.batch(ctx, client.Request{
		MoveDimension: &client.MoveDimensionRequest{
			Source: client.DimensionRange{
				SheetID:    d.snap.SheetID,
				Dimension:  "COLUMNS",
				StartIndex: src,
				EndIndex:   src + 1,
			},
			DestinationIndex: dest,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "target": act.Target, "position": act.Position},
	}, nil
}

func (d *dispatcher) renameColumn(ctx context.Context, act *action.RenameColumn) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	if act.NewName == "" {
		return nil, fmt.Errorf("rename needs a new column name")
	}
	headerCell := d.a1Cell(d.snap.HeaderRow-1, col)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, headerCell, [][]any{{act.NewName}})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "new_name": act.NewName},
	}, nil
}

func (d *dispatcher) fillDown(ctx context.Context, act *action.FillDown) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}
	first := d.snap.DataStartRow()
	if len(rows) <= first+1 {
		return &Outcome{Fields: map[string]any{"column": act.Column, "filled": 0}}, nil
	}

	echo, err := d.batch(ctx, client.Request{
		CopyPaste: &client.CopyPasteRequest{
			Source: client.GridRange{
				SheetID:          d.snap.SheetID,
				StartRowIndex:    client.Intp(first),
				EndRowIndex:      client.Intp(first + 1),
				StartColumnIndex: client.Intp(col),
				EndColumnIndex:   client.Intp(col + 1),
			},
			Destination: client.GridRange{
				SheetID:          d.snap.SheetID,
				StartRowIndex:    client.Intp(first + 1),
				EndRowIndex:      client.Intp(len(rows)),
				StartColumnIndex: client.Intp(col),
				EndColumnIndex:   client.Intp(col + 1),
			},
			PasteType: "PASTE_NORMAL",
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "filled": len(rows) - first - 1},
	}, nil
}

func (d *dispatcher) addSerial(ctx context.Context, act *action.AddSerial) (*Outcome, error) {
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}
	dataRows := len(rows) - d.snap.DataStartRow()
	if dataRows < 0 {
		dataRows = 0
	}

	col := 0
	if act.Column == "" {
		// No column named: prepend a fresh serial column.
		if _, err := d.batch(ctx, client.Request{
			InsertDimension: &client.InsertDimensionRequest{
				Range: client.DimensionRange{
					SheetID:    d.snap.SheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   1,
				},
			},
		}); err != nil {
			return nil, err
		}
		values := [][]any{{"S.No"}}
		for i := 1; i <= dataRows; i++ {
			values = append(values, []any{i})
		}
		target := d.a1Range(d.snap.HeaderRow-1, 0, len(rows)-1, 0)
		echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, target, values)
		if err != nil {
			return nil, err
		}
		return &Outcome{Response: echo, Fields: map[string]any{"column": "S.No", "count": dataRows}}, nil
	}

	col, err = d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	if dataRows == 0 {
		return &Outcome{Fields: map[string]any{"column": act.Column, "count": 0}}, nil
	}
	values := make([][]any, dataRows)
	for i := range values {
		values[i] = []any{i + 1}
	}
	target := d.a1Range(d.snap.DataStartRow(), col, len(rows)-1, col)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, target, values)
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"column": act.Column, "count": dataRows}}, nil
}

func (d *dispatcher) copyColumn(ctx context.Context, act *action.CopyColumn) (*Outcome, error) {
	src, err := d.columnIndex(act.Source)
	if err != nil {
		return nil, err
	}
	title := act.Target
	if title == "" {
		title = act.Source + " copy"
	}

	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}
	newCol := d.snap.NumColumns()

	reqs := []client.Request{{
		AppendDimension: &client.AppendDimensionRequest{
			SheetID:   d.snap.SheetID,
			Dimension: "COLUMNS",
			Length:    1,
		},
	}}
	if len(rows) > d.snap.DataStartRow() {
		reqs = append(reqs, client.Request{
			CopyPaste: &client.CopyPasteRequest{
				Source: client.GridRange{
					SheetID:          d.snap.SheetID,
					StartRowIndex:    client.Intp(d.snap.DataStartRow()),
					EndRowIndex:      client.Intp(len(rows)),
					StartColumnIndex: client.Intp(src),
					EndColumnIndex:   client.Intp(src + 1),
				},
				Destination: client.GridRange{
					SheetID:          d.snap.SheetID,
					StartRowIndex:    client.Intp(d.snap.DataStartRow()),
					EndRowIndex:      client.Intp(len(rows)),
					StartColumnIndex: client.Intp(newCol),
					EndColumnIndex:   client.Intp(newCol + 1),
				},
				PasteType: "PASTE_NORMAL",
			},
		})
	}
	if _, err := d.batch(ctx, reqs...); err != nil {
		return nil, err
	}

	headerCell := d.a1Cell(d.snap.HeaderRow-1, newCol)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, headerCell, [][]any{{title}})
	if err != nil {
		return nil, fmt.Errorf("writing copied column header: %w", err)
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"source": act.Source, "target": title},
	}, nil
}
