package dispatch

import (
	"context"
	"fmt"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
)

// backgroundFields is the masked field path for background-only repaints.
const backgroundFields = "userEnteredFormat.backgroundColor"

func repaintRequest(r client.GridRange, c client.Color) client.Request {
	color := c
	return client.Request{
		RepeatCell: &client.RepeatCellRequest{
			Range:  r,
			Cell:   client.CellData{UserEnteredFormat: &client.CellFormat{BackgroundColor: &color}},
			Fields: backgroundFields,
		},
	}
}

// fullWidthRow is the grid range of one 0-based row across all columns.
func (d *dispatcher) fullWidthRow(gridRow int) client.GridRange {
	return client.GridRange{
		SheetID:          d.snap.SheetID,
		StartRowIndex:    client.Intp(gridRow),
		EndRowIndex:      client.Intp(gridRow + 1),
		StartColumnIndex: client.Intp(0),
		EndColumnIndex:   client.Intp(d.snap.NumColumns()),
	}
}

func (d *dispatcher) colorRow(ctx context.Context, act *action.ColorRow) (*Outcome, error) {
	if act.Row < 1 {
		return nil, fmt.Errorf("row number must be >= 1, got %d", act.Row)
	}
	echo, err := d.batch(ctx, repaintRequest(d.fullWidthRow(act.Row-1), action.ColorByName(act.Color)))
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"row": act.Row, "color": act.Color}}, nil
}

func (d *dispatcher) colorColumn(ctx context.Context, act *action.ColorColumn) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	// Unbounded rows: the whole column paints, header included.
	echo, err := d.batch(ctx, repaintRequest(client.GridRange{
		SheetID:          d.snap.SheetID,
		StartColumnIndex: client.Intp(col),
		EndColumnIndex:   client.Intp(col + 1),
	}, action.ColorByName(act.Color)))
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"column": act.Column, "color": act.Color}}, nil
}

func (d *dispatcher) colorRange(ctx context.Context, act *action.ColorRange) (*Outcome, error) {
	r, err := d.gridRangeFromA1(act.Range)
	if err != nil {
		return nil, err
	}
	echo, err := d.batch(ctx, repaintRequest(r, action.ColorByName(act.Color)))
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"range": act.Range, "color": act.Color}}, nil
}

func (d *dispatcher) colorIf(ctx context.Context, act *action.ColorIf) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := d.matchingDataRows(rows, col, act.Operator, act.Value)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return &Outcome{Fields: map[string]any{"column": act.Column, "colored_count": 0}}, nil
	}

	color := action.ColorByName(act.Color)
	reqs := make([]client.Request, 0, len(matched))
	for _, idx := range matched {
		reqs = append(reqs, repaintRequest(d.fullWidthRow(idx), color))
	}
	echo, err := d.batch(ctx, reqs...)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "color": act.Color, "colored_count": len(matched)},
	}, nil
}

func (d *dispatcher) colorMulti(ctx context.Context, act *action.ColorMulti) (*Outcome, error) {
	if len(act.Rules) == 0 {
		return nil, fmt.Errorf("color rules must not be empty")
	}
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}

	var reqs []client.Request
	colored := 0
	for _, rule := range act.Rules {
		col, err := d.columnIndex(rule.Column)
		if err != nil {
			return nil, err
		}
		matched, err := d.matchingDataRows(rows, col, rule.Operator, rule.Value)
		if err != nil {
			return nil, err
		}
		color := action.ColorByName(rule.Color)
		for _, idx := range matched {
			reqs = append(reqs, repaintRequest(d.fullWidthRow(idx), color))
			colored++
		}
	}
	if len(reqs) == 0 {
		return &Outcome{Fields: map[string]any{"colored_count": 0}}, nil
	}

	echo, err := d.batch(ctx, reqs...)
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"colored_count": colored}}, nil
}

func ruleMatches(rule action.NumberRangeRule, v float64) (bool, error) {
	if rule.Operator == "between" {
		return v >= rule.Value && v <= rule.Value2, nil
	}
	return compareNumeric(rule.Operator, v, rule.Value)
}

func (d *dispatcher) colorNumberRange(ctx context.Context, act *action.ColorNumberRange) (*Outcome, error) {
	if len(act.Rules) == 0 {
		return nil, fmt.Errorf("color rules must not be empty")
	}
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}

	var reqs []client.Request
	colored := 0
	for i := d.snap.DataStartRow(); i < len(rows); i++ {
		cell, ok := cellNumber(rows[i], col)
		if !ok {
			continue
		}
		// Rules apply in the caller's order; the first match wins the row.
		for _, rule := range act.Rules {
			match, err := ruleMatches(rule, cell)
			if err != nil {
				return nil, err
			}
			if match {
				reqs = append(reqs, repaintRequest(d.fullWidthRow(i), action.ColorByName(rule.Color)))
				colored++
				break
			}
		}
	}
	if len(reqs) == 0 {
		return &Outcome{Fields: map[string]any{"column": act.Column, "colored_count": 0}}, nil
	}

	echo, err := d.batch(ctx, reqs...)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "colored_count": colored},
	}, nil
}

var mergeTypes = map[string]string{
	"":        "MERGE_ALL",
	"all":     "MERGE_ALL",
	"rows":    "MERGE_ROWS",
	"columns": "MERGE_COLUMNS",
}

func (d *dispatcher) mergeCells(ctx context.Context, act *action.MergeCells) (*Outcome, error) {
	r, err := d.gridRangeFromA1(act.Range)
	if err != nil {
		return nil, err
	}
	mergeType, ok := mergeTypes[act.MergeType]
	if !ok {
		return nil, fmt.Errorf("unsupported merge type %q", act.MergeType)
	}
	echo, err := d.batch(ctx, client.Request{
		MergeCells: &client.MergeCellsRequest{Range: r, MergeType: mergeType},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"range": act.Range, "merge_type": mergeType}}, nil
}

func (d *dispatcher) clearFormatting(ctx context.Context, act *action.ClearFormatting) (*Outcome, error) {
	r := client.GridRange{SheetID: d.snap.SheetID} // whole sheet by default
	if act.Range != "" {
		var err error
		r, err = d.gridRangeFromA1(act.Range)
		if err != nil {
			return nil, err
		}
	}
	echo, err := d.batch(ctx, client.Request{
		UpdateCells: &client.UpdateCellsRequest{Range: r, Fields: "userEnteredFormat"},
	})
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"range": act.Range}
	if act.Range == "" {
		fields["range"] = "entire sheet"
	}
	return &Outcome{Response: echo, Fields: fields}, nil
}
