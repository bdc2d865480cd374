package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetpilotlabs/sheetpilot-cli/internal/resolve"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/sheet"
)

var gradeSnap = sheet.Snapshot{
	Columns:   []string{"Roll No", "Name", "CGPA"},
	SheetID:   0,
	SheetName: "Sheet1",
	HeaderRow: 1,
}

func mustGround(t *testing.T, a Action) {
	t.Helper()
	require.NoError(t, Ground(a, gradeSnap, resolve.Policy{}))
}

func TestGround_ResolvesCaseInsensitiveReference(t *testing.T) {
	sort := &Sort{Column: "cgpa", Ascending: false}
	mustGround(t, sort)
	assert.Equal(t, "CGPA", sort.Column)
	assert.False(t, sort.Ascending, "grounding must not touch structural fields")
}

func TestGround_Idempotent(t *testing.T) {
	sort := &Sort{Column: "cgpa"}
	mustGround(t, sort)
	first := sort.Column

	mustGround(t, sort)
	assert.Equal(t, first, sort.Column, "grounding a grounded action must be a no-op")
}

func TestGround_MultiSortKeysElementWise(t *testing.T) {
	ms := &MultiSort{Keys: []SortKey{
		{Column: "cgpa", Ascending: false},
		{Column: "student name", Ascending: true},
	}}
	mustGround(t, ms)
	assert.Equal(t, "CGPA", ms.Keys[0].Column)
	assert.Equal(t, "Name", ms.Keys[1].Column)
}

func TestGround_ColorMultiRules(t *testing.T) {
	cm := &ColorMulti{Rules: []ColorRule{
		{Column: "cgpa", Operator: ">", Value: 9, Color: "green"},
		{Column: "", Operator: "<", Value: 5, Color: "red"},
	}}
	mustGround(t, cm)
	assert.Equal(t, "CGPA", cm.Rules[0].Column)
	assert.Equal(t, "", cm.Rules[1].Column, "blank entries pass through unchanged")
}

func TestGround_FormulaWithoutTargetCreatesColumn(t *testing.T) {
	f := &Formula{TargetColumn: "  ", Formula: "=B2+C2"}
	mustGround(t, f)
	assert.Equal(t, "Column_4", f.TargetColumn)
	assert.True(t, f.CreateColumn)

	// Re-grounding must not resolve the synthesized name away.
	mustGround(t, f)
	assert.Equal(t, "Column_4", f.TargetColumn)
	assert.True(t, f.CreateColumn)
}

func TestGround_FormulaWithTargetResolves(t *testing.T) {
	f := &Formula{TargetColumn: "cgpa", Formula: "=AVERAGE(C2:C10)"}
	mustGround(t, f)
	assert.Equal(t, "CGPA", f.TargetColumn)
	assert.False(t, f.CreateColumn)
}

func TestGround_NeverGroundedFields(t *testing.T) {
	rename := &RenameColumn{Column: "roll", NewName: "Roll Number"}
	mustGround(t, rename)
	assert.Equal(t, "Roll No", rename.Column)
	assert.Equal(t, "Roll Number", rename.NewName, "the new name is not a reference")

	cp := &CopyColumn{Source: "cgpa", Target: "CGPA backup"}
	mustGround(t, cp)
	assert.Equal(t, "CGPA", cp.Source)
	assert.Equal(t, "CGPA backup", cp.Target, "the copy destination is not a reference")

	add := &AddColumn{Name: "Totalz", Position: "after", Anchor: "cgpa"}
	mustGround(t, add)
	assert.Equal(t, "Totalz", add.Name, "the new column's title is not a reference")
	assert.Equal(t, "CGPA", add.Anchor)
}

func TestGround_StrictPolicyPropagatesFailure(t *testing.T) {
	sort := &Sort{Column: "quarterly revenue"}
	err := Ground(sort, gradeSnap, resolve.Policy{Strict: true})
	var noMatch *resolve.NoConfidentMatchError
	require.ErrorAs(t, err, &noMatch)
}

func TestGround_ActionsWithoutReferences(t *testing.T) {
	actions := []Action{
		&ColorRow{Row: 2, Color: "red"},
		&ColorRange{Range: "A2:C5", Color: "green"},
		&AddColumnSerial{Name: "S.No"},
		&AddRow{Values: []any{"4", "Dana", "8.8"}},
		&DeleteRow{Row: 3},
		&Freeze{Rows: 1},
		&MergeCells{Range: "A1:C1", MergeType: "all"},
		&CopyRow{Row: 2},
		&MoveRow{Row: 2, To: 5},
		&ClearFormatting{},
	}
	for _, a := range actions {
		assert.NoError(t, Ground(a, gradeSnap, resolve.Policy{}), "kind %s", a.Kind())
	}
}
