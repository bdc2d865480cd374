package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/action"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/sheet"
)

// fakeService records every call and replays canned values and errors.
type fakeService struct {
	values       [][]string
	batches      [][]client.Request
	updates      []updateCall
	batchErrs    []error // popped per BatchUpdate call; nil entries succeed
	valuesRanges []string
}

type updateCall struct {
	a1Range string
	values  [][]any
}

func (f *fakeService) SheetID(ctx context.Context, spreadsheetID, sheetName string) (int64, error) {
	return 77, nil
}

func (f *fakeService) Values(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error) {
	f.valuesRanges = append(f.valuesRanges, a1Range)
	return f.values, nil
}

func (f *fakeService) UpdateRange(ctx context.Context, spreadsheetID, a1Range string, values [][]any) (json.RawMessage, error) {
	f.updates = append(f.updates, updateCall{a1Range: a1Range, values: values})
	return json.RawMessage(`{"updatedCells":1}`), nil
}

func (f *fakeService) BatchUpdate(ctx context.Context, spreadsheetID string, requests []client.Request) (json.RawMessage, error) {
	f.batches = append(f.batches, requests)
	if len(f.batchErrs) > 0 {
		err := f.batchErrs[0]
		f.batchErrs = f.batchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return json.RawMessage(`{"replies":[{}]}`), nil
}

func gradeSnapshot() sheet.Snapshot {
	return sheet.Snapshot{
		Columns:   []string{"Roll No", "Name", "CGPA"},
		SheetID:   77,
		SheetName: "Grades",
		HeaderRow: 1,
	}
}

func gradeRows() [][]string {
	return [][]string{
		{"Roll No", "Name", "CGPA"},
		{"1", "Asha", "9.5"},
		{"2", "Bilal", "7.2"},
		{"3", "Chen", "absent"},
		{"4", "Dana", "8.9"},
		{"5", "Eli", "6.1"},
	}
}

func TestSort_FullWidthHeaderExclusive(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.Sort{Column: "CGPA", Ascending: false}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	require.NotNil(t, out)

	require.Len(t, svc.batches, 1)
	require.Len(t, svc.batches[0], 1)
	sr := svc.batches[0][0].SortRange
	require.NotNil(t, sr)

	// Whole rows move together; the header stays put.
	assert.Equal(t, 1, *sr.Range.StartRowIndex)
	assert.Equal(t, 6, *sr.Range.EndRowIndex)
	assert.Equal(t, 0, *sr.Range.StartColumnIndex)
	assert.Equal(t, 3, *sr.Range.EndColumnIndex)
	require.Len(t, sr.SortSpecs, 1)
	assert.Equal(t, 2, sr.SortSpecs[0].DimensionIndex)
	assert.Equal(t, "DESCENDING", sr.SortSpecs[0].SortOrder)
}

func TestSort_EmptyDataNoBatch(t *testing.T) {
	svc := &fakeService{values: [][]string{{"Roll No", "Name", "CGPA"}}}
	out, err := Dispatch(context.Background(), svc, &action.Sort{Column: "Name", Ascending: true}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	assert.Empty(t, svc.batches)
	assert.Equal(t, 0, out.Fields["sorted_rows"])
}

func TestDeleteRows_DescendingOrder(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.DeleteRows{Column: "CGPA", Operator: "<", Value: 9.0}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	// Bilal (grid 2), Dana (grid 4), Eli (grid 5) match; Chen is skipped as
	// non-numeric. Deletions must run bottom-up.
	require.Len(t, svc.batches, 1)
	reqs := svc.batches[0]
	require.Len(t, reqs, 3)
	var starts []int
	for _, r := range reqs {
		require.NotNil(t, r.DeleteDimension)
		assert.Equal(t, "ROWS", r.DeleteDimension.Range.Dimension)
		starts = append(starts, r.DeleteDimension.Range.StartIndex)
	}
	assert.Equal(t, []int{5, 4, 2}, starts)
	assert.Equal(t, 3, out.Fields["deleted_count"])
}

func TestDeleteRows_NoMatchesSkipsBatch(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.DeleteRows{Column: "CGPA", Operator: ">", Value: 10}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	assert.Empty(t, svc.batches)
	assert.Equal(t, 0, out.Fields["deleted_count"])
}

func TestDeleteRows_BadOperator(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.DeleteRows{Column: "CGPA", Operator: "~", Value: 5}, gradeSnapshot(), "sp1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator")
}

func TestDispatch_UnknownColumn(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.DeleteColumn{Column: "Attendance"}, gradeSnapshot(), "sp1")
	var cnf *ColumnNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, "Attendance", cnf.Column)
}

func mergedCellErr() error {
	return &client.APIError{
		StatusCode: 400,
		Status:     "INVALID_ARGUMENT",
		Message:    "This operation is not supported over a range with merged cells.",
	}
}

func TestRemoveDuplicates_UnmergeRetryOnce(t *testing.T) {
	svc := &fakeService{
		values:    gradeRows(),
		batchErrs: []error{mergedCellErr(), nil, nil},
	}
	out, err := Dispatch(context.Background(), svc, &action.RemoveDuplicates{Column: "Roll No"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	// deleteDuplicates, unmergeCells, deleteDuplicates again.
	require.Len(t, svc.batches, 3)
	assert.NotNil(t, svc.batches[0][0].DeleteDuplicates)
	assert.NotNil(t, svc.batches[1][0].UnmergeCells)
	assert.NotNil(t, svc.batches[2][0].DeleteDuplicates)
	assert.Equal(t, true, out.Fields["unmerged"])
}

func TestRemoveDuplicates_SecondConflictFatal(t *testing.T) {
	svc := &fakeService{
		values:    gradeRows(),
		batchErrs: []error{mergedCellErr(), nil, mergedCellErr()},
	}
	_, err := Dispatch(context.Background(), svc, &action.RemoveDuplicates{Column: "Roll No"}, gradeSnapshot(), "sp1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after unmerging")
	assert.Len(t, svc.batches, 3)
}

func TestColorNumberRange_FirstMatchWins(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	act := &action.ColorNumberRange{
		Column: "CGPA",
		Rules: []action.NumberRangeRule{
			{Operator: ">", Value: 9, Color: "green"},
			{Operator: "between", Value: 6, Value2: 9, Color: "yellow"},
		},
	}
	out, err := Dispatch(context.Background(), svc, act, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	// Asha 9.5 takes green from the first rule even though a later rule
	// could also match her row under a different boundary; Chen is skipped.
	require.Len(t, svc.batches, 1)
	reqs := svc.batches[0]
	require.Len(t, reqs, 4)
	green := action.ColorByName("green")
	yellow := action.ColorByName("yellow")
	assert.Equal(t, green, *reqs[0].RepeatCell.Cell.UserEnteredFormat.BackgroundColor)
	assert.Equal(t, 1, *reqs[0].RepeatCell.Range.StartRowIndex)
	for i, req := range reqs[1:] {
		assert.Equal(t, yellow, *req.RepeatCell.Cell.UserEnteredFormat.BackgroundColor, "request %d", i+1)
	}
	assert.Equal(t, 4, out.Fields["colored_count"])
}

func TestColorIf_SkipsNonNumeric(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.ColorIf{Column: "CGPA", Operator: ">=", Value: 0, Color: "red"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	// Chen's "absent" never matches, even against a trivially true condition.
	assert.Equal(t, 4, out.Fields["colored_count"])
}

func TestColorRow_FullWidth(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.ColorRow{Row: 3, Color: "blue"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	require.Len(t, svc.batches, 1)
	rc := svc.batches[0][0].RepeatCell
	require.NotNil(t, rc)
	assert.Equal(t, 2, *rc.Range.StartRowIndex)
	assert.Equal(t, 3, *rc.Range.EndRowIndex)
	assert.Equal(t, 0, *rc.Range.StartColumnIndex)
	assert.Equal(t, 3, *rc.Range.EndColumnIndex)
	assert.Equal(t, "userEnteredFormat.backgroundColor", rc.Fields)
}

func TestColorRow_RejectsZeroRow(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.ColorRow{Row: 0, Color: "blue"}, gradeSnapshot(), "sp1")
	require.Error(t, err)
	assert.Empty(t, svc.batches)
}

func TestAddColumn_InsertPositions(t *testing.T) {
	tests := []struct {
		name     string
		act      action.AddColumn
		insertAt int
		inherit  bool
	}{
		{"before anchor", action.AddColumn{Name: "Grade", Anchor: "Name", Position: "before"}, 1, false},
		{"after anchor", action.AddColumn{Name: "Grade", Anchor: "Name", Position: "after"}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{values: gradeRows()}
			act := tt.act
			_, err := Dispatch(context.Background(), svc, &act, gradeSnapshot(), "sp1")
			require.NoError(t, err)

			require.Len(t, svc.batches, 1)
			ins := svc.batches[0][0].InsertDimension
			require.NotNil(t, ins)
			assert.Equal(t, "COLUMNS", ins.Range.Dimension)
			assert.Equal(t, tt.insertAt, ins.Range.StartIndex)
			assert.Equal(t, tt.inherit, ins.InheritFromBefore)

			// Header lands in the inserted slot.
			require.Len(t, svc.updates, 1)
			assert.Equal(t, "Grades!"+sheet.ColumnLetter(tt.insertAt)+"1", svc.updates[0].a1Range)
			assert.Equal(t, [][]any{{"Grade"}}, svc.updates[0].values)
		})
	}
}

func TestAddColumn_NoAnchorAppends(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.AddColumn{Name: "Remarks"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	require.Len(t, svc.batches, 1)
	require.NotNil(t, svc.batches[0][0].AppendDimension)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Grades!D1", svc.updates[0].a1Range)
}

func TestFormula_CreatesColumnWhenFlagged(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	act := &action.Formula{TargetColumn: "Column_4", Formula: "=SUM(C2:C6)", CreateColumn: true}
	out, err := Dispatch(context.Background(), svc, act, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	require.Len(t, svc.batches, 1)
	require.NotNil(t, svc.batches[0][0].AppendDimension)
	require.Len(t, svc.updates, 2)
	assert.Equal(t, "Grades!D1", svc.updates[0].a1Range)
	assert.Equal(t, [][]any{{"Column_4"}}, svc.updates[0].values)
	assert.Equal(t, "Grades!D2", svc.updates[1].a1Range)
	assert.Equal(t, [][]any{{"=SUM(C2:C6)"}}, svc.updates[1].values)
	assert.Equal(t, true, out.Fields["created_column"])
}

func TestFormula_MissingTargetWithoutCreate(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.Formula{TargetColumn: "Average", Formula: "=AVERAGE(C:C)"}, gradeSnapshot(), "sp1")
	var cnf *ColumnNotFoundError
	require.ErrorAs(t, err, &cnf)
}

func TestMoveColumn_AfterTarget(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.MoveColumn{Column: "Roll No", Position: "after", Target: "CGPA"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	mv := svc.batches[0][0].MoveDimension
	require.NotNil(t, mv)
	assert.Equal(t, 0, mv.Source.StartIndex)
	assert.Equal(t, 3, mv.DestinationIndex)
}

func TestFreeze_DefaultsToHeaderRow(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.Freeze{}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	up := svc.batches[0][0].UpdateSheetProperties
	require.NotNil(t, up)
	assert.Equal(t, 1, up.Properties.GridProperties.FrozenRowCount)
	assert.Equal(t, 1, out.Fields["rows"])
}

func TestMergeCells_TypeMapping(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.MergeCells{Range: "A1:C1", MergeType: "columns"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	mc := svc.batches[0][0].MergeCells
	require.NotNil(t, mc)
	assert.Equal(t, "MERGE_COLUMNS", mc.MergeType)
	assert.Equal(t, 0, *mc.Range.StartRowIndex)
	assert.Equal(t, 1, *mc.Range.EndRowIndex)
	assert.Equal(t, 0, *mc.Range.StartColumnIndex)
	assert.Equal(t, 3, *mc.Range.EndColumnIndex)
}

func TestClearFormatting_WholeSheetByDefault(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.ClearFormatting{}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	uc := svc.batches[0][0].UpdateCells
	require.NotNil(t, uc)
	assert.Nil(t, uc.Range.StartRowIndex)
	assert.Equal(t, "userEnteredFormat", uc.Fields)
	assert.Equal(t, "entire sheet", out.Fields["range"])
}

func TestDeleteRow_OneBased(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.DeleteRow{Row: 4}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	del := svc.batches[0][0].DeleteDimension
	require.NotNil(t, del)
	assert.Equal(t, 3, del.Range.StartIndex)
	assert.Equal(t, 4, del.Range.EndIndex)
}

func TestAddSerial_PrependsWhenUnnamed(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.AddSerial{}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	ins := svc.batches[0][0].InsertDimension
	require.NotNil(t, ins)
	assert.Equal(t, 0, ins.Range.StartIndex)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Grades!A1:A6", svc.updates[0].a1Range)
	require.Len(t, svc.updates[0].values, 6)
	assert.Equal(t, []any{"S.No"}, svc.updates[0].values[0])
	assert.Equal(t, []any{5}, svc.updates[0].values[5])
	assert.Equal(t, 5, out.Fields["count"])
}

func TestAddRow_WritesValuesBelowData(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.AddRow{Values: []any{"6", "Fin", "9.9"}}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	// The sheet qualifier appears once on the range, not on each cell.
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Grades!A7:C7", svc.updates[0].a1Range)
	assert.Equal(t, [][]any{{"6", "Fin", "9.9"}}, svc.updates[0].values)
	assert.Equal(t, 7, out.Fields["row"])
}

func TestAddColumnSerial_TargetRange(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.AddColumnSerial{Name: "Idx"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	require.Len(t, svc.batches, 1)
	require.NotNil(t, svc.batches[0][0].AppendDimension)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Grades!D1:D6", svc.updates[0].a1Range)
	require.Len(t, svc.updates[0].values, 6)
	assert.Equal(t, []any{"Idx"}, svc.updates[0].values[0])
	assert.Equal(t, []any{5}, svc.updates[0].values[5])
	assert.Equal(t, 5, out.Fields["count"])
}

func TestAddSerial_NamedColumnTargetRange(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.AddSerial{Column: "Roll No"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	// No structural change: the serials overwrite the existing column's data rows.
	assert.Empty(t, svc.batches)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Grades!A2:A6", svc.updates[0].a1Range)
	require.Len(t, svc.updates[0].values, 5)
	assert.Equal(t, []any{1}, svc.updates[0].values[0])
	assert.Equal(t, []any{5}, svc.updates[0].values[4])
	assert.Equal(t, 5, out.Fields["count"])
}

func TestMoveRow_DestinationIndex(t *testing.T) {
	tests := []struct {
		name string
		act  action.MoveRow
		dest int
	}{
		// Downward: the destination is counted before the source row is
		// removed, so landing at displayed row 5 needs index 5, not 4.
		{"downward", action.MoveRow{Row: 2, To: 5}, 5},
		{"upward", action.MoveRow{Row: 5, To: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{values: gradeRows()}
			act := tt.act
			_, err := Dispatch(context.Background(), svc, &act, gradeSnapshot(), "sp1")
			require.NoError(t, err)

			mv := svc.batches[0][0].MoveDimension
			require.NotNil(t, mv)
			assert.Equal(t, act.Row-1, mv.Source.StartIndex)
			assert.Equal(t, tt.dest, mv.DestinationIndex)
		})
	}
}

func TestFillDown_CopiesFirstDataCell(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	out, err := Dispatch(context.Background(), svc, &action.FillDown{Column: "Name"}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	cp := svc.batches[0][0].CopyPaste
	require.NotNil(t, cp)
	assert.Equal(t, 1, *cp.Source.StartRowIndex)
	assert.Equal(t, 2, *cp.Source.EndRowIndex)
	assert.Equal(t, 2, *cp.Destination.StartRowIndex)
	assert.Equal(t, 6, *cp.Destination.EndRowIndex)
	assert.Equal(t, 4, out.Fields["filled"])
}

func TestCopyRow_InsertAboveShiftsSource(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.CopyRow{Row: 3, To: 2}, gradeSnapshot(), "sp1")
	require.NoError(t, err)

	reqs := svc.batches[0]
	require.Len(t, reqs, 2)
	assert.Equal(t, 1, reqs[0].InsertDimension.Range.StartIndex)
	// Inserting at grid row 1 pushed the original row 3 down to grid 3.
	assert.Equal(t, 3, *reqs[1].CopyPaste.Source.StartRowIndex)
	assert.Equal(t, 1, *reqs[1].CopyPaste.Destination.StartRowIndex)
}

func TestFilter_ConditionType(t *testing.T) {
	svc := &fakeService{values: gradeRows()}
	_, err := Dispatch(context.Background(), svc, &action.Filter{Column: "CGPA", Operator: ">=", Value: 8}, gradeSnapshot(), "sp1")
	require.NoError(t, err)
	sf := svc.batches[0][0].SetBasicFilter
	require.NotNil(t, sf)
	crit, ok := sf.Filter.Criteria["2"]
	require.True(t, ok)
	assert.Equal(t, "NUMBER_GREATER_THAN_EQ", crit.Condition.Type)
	assert.Equal(t, "8", crit.Condition.Values[0].UserEnteredValue)
}
