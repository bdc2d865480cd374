package dispatch

import (
	"context"
	"fmt"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
)

func (d *dispatcher) addRow(ctx context.Context, act *action.AddRow) (*Outcome, error) {
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}

	if len(act.Values) == 0 {
		echo, err := d.batch(ctx, client.Request{
			AppendDimension: &client.AppendDimensionRequest{
				SheetID:   d.snap.SheetID,
				Dimension: "ROWS",
				Length:    1,
			},
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{Response: echo, Fields: map[string]any{"row": len(rows) + 1}}, nil
	}

	target := d.a1Range(len(rows), 0, len(rows), len(act.Values)-1)
	echo, err := d.svc.UpdateRange(ctx, d.spreadsheetID, target, [][]any{act.Values})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"row": len(rows) + 1}}, nil
}

func (d *dispatcher) deleteRow(ctx context.Context, act *action.DeleteRow) (*Outcome, error) {
	if act.Row < 1 {
		return nil, fmt.Errorf("row number must be >= 1, got %d", act.Row)
	}
	idx := act.Row - 1
	echo, err := d.batch(ctx, client.Request{
		DeleteDimension: &client.DeleteDimensionRequest{
			Range: client.DimensionRange{
				SheetID:    d.snap.SheetID,
				Dimension:  "ROWS",
				StartIndex: idx,
				EndIndex:   idx + 1,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"row": act.Row}}, nil
}

func (d *dispatcher) copyRow(ctx context.Context, act *action.CopyRow) (*Outcome, error) {
	if act.Row < 1 {
		return nil, fmt.Errorf("row number must be >= 1, got %d", act.Row)
	}
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}

	src := act.Row - 1
	dest := len(rows) // append below the data by default
	if act.To > 0 {
		dest = act.To - 1
	}
	// Inserting above the source shifts it down by one.
	srcAfterInsert := src
	if dest <= src {
		srcAfterInsert = src + 1
	}

	echo, err := d.batch(ctx,
		client.Request{
			InsertDimension: &client.InsertDimensionRequest{
				Range: client.DimensionRange{
					SheetID:    d.snap.SheetID,
					Dimension:  "ROWS",
					StartIndex: dest,
					EndIndex:   dest + 1,
				},
			},
		},
		client.Request{
			CopyPaste: &client.CopyPasteRequest{
				Source: client.GridRange{
					SheetID:          d.snap.SheetID,
					StartRowIndex:    client.Intp(srcAfterInsert),
					EndRowIndex:      client.Intp(srcAfterInsert + 1),
					StartColumnIndex: client.Intp(0),
					EndColumnIndex:   client.Intp(d.snap.NumColumns()),
				},
				Destination: client.GridRange{
					SheetID:          d.snap.SheetID,
					StartRowIndex:    client.Intp(dest),
					EndRowIndex:      client.Intp(dest + 1),
					StartColumnIndex: client.Intp(0),
					EndColumnIndex:   client.Intp(d.snap.NumColumns()),
				},
				PasteType: "PASTE_NORMAL",
			},
		},
	)
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"row": act.Row, "to": dest + 1}}, nil
}

func (d *dispatcher) moveRow(ctx context.Context, act *action.MoveRow) (*Outcome, error) {
	if act.Row < 1 || act.To < 1 {
		return nil, fmt.Errorf("row numbers must be >= 1, got row=%d to=%d", act.Row, act.To)
	}
	// destinationIndex is interpreted before the source is removed, so a
	// downward move must aim one past its displayed destination.
	dest := act.To - 1
	if act.To > act.Row {
		dest = act.To
	}
	echo, err := d.batch(ctx, client.Request{
		MoveDimension: &client.MoveDimensionRequest{
			Source: client.DimensionRange{
				SheetID:    d.snap.SheetID,
				Dimension:  "ROWS",
				StartIndex: act.Row - 1,
				EndIndex:   act.Row,
			},
			DestinationIndex: dest,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"row": act.Row, "to": act.To}}, nil
}
