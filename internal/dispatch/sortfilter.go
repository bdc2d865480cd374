package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
)

// filterConditionTypes maps instruction operators onto the service's
// numeric filter condition names.
var filterConditionTypes = map[string]string{
	">":  "NUMBER_GREATER",
	">=": "NUMBER_GREATER_THAN_EQ",
	"<":  "NUMBER_LESS",
	"<=": "NUMBER_LESS_THAN_EQ",
	"=":  "NUMBER_EQ",
	"==": "NUMBER_EQ",
	"!=": "NUMBER_NOT_EQ",
}

func (d *dispatcher) sort(ctx context.Context, act *action.Sort) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= d.snap.DataStartRow() {
		return &Outcome{Fields: map[string]any{"column": act.Column, "ascending": act.Ascending, "sorted_rows": 0}}, nil
	}

	// The whole data range sorts, not just the keyed column: a sort must
	// reorder entire rows.
	echo, err := d.batch(ctx, client.Request{
		SortRange: &client.SortRangeRequest{
			Range:     d.dataRange(len(rows)),
			SortSpecs: []client.SortSpec{{DimensionIndex: col, SortOrder: sortOrder(act.Ascending)}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "ascending": act.Ascending},
	}, nil
}

func (d *dispatcher) multiSort(ctx context.Context, act *action.MultiSort) (*Outcome, error) {
	if len(act.Keys) == 0 {
		return nil, fmt.Errorf("multicolumn sort needs at least one sort key")
	}

	specs := make([]client.SortSpec, 0, len(act.Keys))
	columns := make([]string, 0, len(act.Keys))
	for _, key := range act.Keys {
		col, err := d.columnIndex(key.Column)
		if err != nil {
			return nil, err
		}
		specs = append(specs, client.SortSpec{DimensionIndex: col, SortOrder: sortOrder(key.Ascending)})
		columns = append(columns, key.Column)
	}

	rows, err := d.allValues(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= d.snap.DataStartRow() {
		return &Outcome{Fields: map[string]any{"columns": columns, "sorted_rows": 0}}, nil
	}

	echo, err := d.batch(ctx, client.Request{
		SortRange: &client.SortRangeRequest{
			Range:     d.dataRange(len(rows)),
			SortSpecs: specs,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"columns": columns}}, nil
}

func (d *dispatcher) filter(ctx context.Context, act *action.Filter) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}
	condType, ok := filterConditionTypes[act.Operator]
	if !ok {
		return nil, fmt.Errorf("unsupported filter operator %q", act.Operator)
	}

	echo, err := d.batch(ctx, client.Request{
		SetBasicFilter: &client.SetBasicFilterRequest{
			Filter: client.BasicFilter{
				Range: client.GridRange{SheetID: d.snap.SheetID},
				Criteria: map[string]client.FilterCriteria{
					strconv.Itoa(col): {
						Condition: &client.BooleanCondition{
							Type:   condType,
							Values: []client.ConditionValue{{UserEnteredValue: strconv.FormatFloat(act.Value, 'f', -1, 64)}},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "operator": act.Operator, "value": act.Value},
	}, nil
}

func (d *dispatcher) deleteRows(ctx context.Context, act *action.DeleteRows) (*Outcome, error) {
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
		return &Outcome{Fields: map[string]any{"column": act.Column, "deleted_count": 0}}, nil
	}

	// Deleting in ascending order would invalidate every later index;
	// the batch must run strictly top-down from the bottom.
	sort.Sort(sort.Reverse(sort.IntSlice(matched)))
	reqs := make([]client.Request, 0, len(matched))
	for _, idx := range matched {
		reqs = append(reqs, client.Request{
			DeleteDimension: &client.DeleteDimensionRequest{
				Range: client.DimensionRange{
					SheetID:    d.snap.SheetID,
					Dimension:  "ROWS",
					StartIndex: idx,
					EndIndex:   idx + 1,
				},
			},
		})
	}

	echo, err := d.batch(ctx, reqs...)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "deleted_count": len(matched)},
	}, nil
}

func (d *dispatcher) removeDuplicates(ctx context.Context, act *action.RemoveDuplicates) (*Outcome, error) {
	col, err := d.columnIndex(act.Column)
	if err != nil {
		return nil, err
	}

	req := client.Request{
		DeleteDuplicates: &client.DeleteDuplicatesRequest{
			Range: client.GridRange{SheetID: d.snap.SheetID},
			ComparisonColumns: []client.DimensionRange{{
				SheetID:    d.snap.SheetID,
				Dimension:  "COLUMNS",
				StartIndex: col,
				EndIndex:   col + 1,
			}},
		},
	}

	echo, err := d.batch(ctx, req)
	if err == nil {
		return &Outcome{Response: echo, Fields: map[string]any{"column": act.Column}}, nil
	}
	if !client.IsMergedCellConflict(err) {
		return nil, err
	}

	// The service refuses duplicate removal over merged cells. Recover
	// once: unmerge the whole sheet and retry. A second refusal is fatal.
	if _, unmergeErr := d.batch(ctx, client.Request{
		UnmergeCells: &client.UnmergeCellsRequest{
			Range: client.GridRange{SheetID: d.snap.SheetID},
		},
	}); unmergeErr != nil {
		return nil, fmt.Errorf("unmerging cells before duplicate removal: %w", unmergeErr)
	}

	echo, err = d.batch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("duplicate removal failed even after unmerging: %w", err)
	}
	return &Outcome{
		Response: echo,
		Fields:   map[string]any{"column": act.Column, "unmerged": true},
	}, nil
}

func (d *dispatcher) freeze(ctx context.Context, act *action.Freeze) (*Outcome, error) {
	rows, cols := act.Rows, act.Columns
	if rows <= 0 && cols <= 0 {
		rows = 1 // "freeze" with no counts pins the header row
	}

	echo, err := d.batch(ctx, client.Request{
		UpdateSheetProperties: &client.UpdateSheetPropertiesRequest{
			Properties: client.SheetProperties{
				SheetID: d.snap.SheetID,
				GridProperties: &client.GridProperties{
					FrozenRowCount:    rows,
					FrozenColumnCount: cols,
				},
			},
			Fields: "gridProperties.frozenRowCount,gridProperties.frozenColumnCount",
		},
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Response: echo, Fields: map[string]any{"rows": rows, "columns": cols}}, nil
}
