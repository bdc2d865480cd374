// Package action defines the closed union of spreadsheet mutations, the
// parser that builds one from untrusted oracle output, and the grounder
// that rewrites its column references against the live schema.
package action

import "encoding/json"

// Kind is the wire discriminant of an action.
type Kind string

const (
	KindSort             Kind = "sort"
	KindMultiSort        Kind = "multicolumn_sort"
	KindFilter           Kind = "filter"
	KindDeleteRows       Kind = "delete_rows"
	KindRemoveDuplicates Kind = "remove_duplicates"
	KindFormula          Kind = "formula"
	KindColorRow         Kind = "color_row"
	KindColorColumn      Kind = "color_column"
	KindColorRange       Kind = "color_range"
	KindColorIf          Kind = "color_if"
	KindColorMulti       Kind = "color_multi"
	KindColorNumberRange Kind = "color_number_range"
	KindAddColumn        Kind = "add_column"
	KindAddColumnSerial  Kind = "add_column_serial"
	KindDeleteColumn     Kind = "delete_column"
	KindAddRow           Kind = "add_row"
	KindDeleteRow        Kind = "delete_row"
	KindMoveColumn       Kind = "move_column"
	KindRenameColumn     Kind = "rename_column"
	KindFillDown         Kind = "fill_down"
	KindAddSerial        Kind = "add_serial"
	KindFreeze           Kind = "freeze"
	KindMergeCells       Kind = "merge_cells"
	KindCopyColumn       Kind = "copy_column"
	KindCopyRow          Kind = "copy_row"
	KindMoveRow          Kind = "move_row"
	KindClearFormatting  Kind = "clear_formatting"
)

// Action is one validated spreadsheet mutation. The set of implementations
// is closed; the dispatcher type-switches over every one of them.
type Action interface {
	Kind() Kind
}

// Sort orders all data rows by one column.
type Sort struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

func (*Sort) Kind() Kind { return KindSort }

// SortKey is one column of a multi-column sort, in priority order.
type SortKey struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

// UnmarshalJSON defaults Ascending to true when the key omits it.
func (k *SortKey) UnmarshalJSON(b []byte) error {
	type alias SortKey
	aux := alias{Ascending: true}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*k = SortKey(aux)
	return nil
}

// MultiSort orders all data rows by several columns in priority order.
type MultiSort struct {
	Keys []SortKey `json:"sort"`
}

func (*MultiSort) Kind() Kind { return KindMultiSort }

// Filter sets a basic filter with one numeric condition on a column.
type Filter struct {
	Column   string  `json:"column"`
	Operator string  `json:"operator"` // >, <, =, !=
	Value    float64 `json:"value"`
}

func (*Filter) Kind() Kind { return KindFilter }

// DeleteRows deletes every data row whose cell satisfies a numeric condition.
type DeleteRows struct {
	Column   string  `json:"column"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

func (*DeleteRows) Kind() Kind { return KindDeleteRows }

// RemoveDuplicates deletes rows that duplicate an earlier row in one column.
type RemoveDuplicates struct {
	Column string `json:"column"`
}

func (*RemoveDuplicates) Kind() Kind { return KindRemoveDuplicates }

// Formula writes a formula into the first data cell of a target column.
// When the instruction names no target, the grounder synthesizes a fresh
// column name and sets CreateColumn so the dispatcher appends it first.
type Formula struct {
	TargetColumn string `json:"target_column"`
	Formula      string `json:"formula"`
	CreateColumn bool   `json:"-"`
}

func (*Formula) Kind() Kind { return KindFormula }

// ColorRow paints the background of one displayed (1-based) sheet row.
type ColorRow struct {
	Row   int    `json:"row"`
	Color string `json:"color"`
}

func (*ColorRow) Kind() Kind { return KindColorRow }

// ColorColumn paints the background of one column, header included.
type ColorColumn struct {
	Column string `json:"column"`
	Color  string `json:"color"`
}

func (*ColorColumn) Kind() Kind { return KindColorColumn }

// ColorRange paints an A1-style range.
type ColorRange struct {
	Range string `json:"range"`
	Color string `json:"color"`
}

func (*ColorRange) Kind() Kind { return KindColorRange }

// ColorIf paints every data row whose cell satisfies a numeric condition.
type ColorIf struct {
	Column   string  `json:"column"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
	Color    string  `json:"color"`
}

func (*ColorIf) Kind() Kind { return KindColorIf }

// ColorRule is one column condition of a ColorMulti action.
type ColorRule struct {
	Column   string  `json:"column"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
	Color    string  `json:"color"`
}

// ColorMulti applies several independent column conditions in one batch.
type ColorMulti struct {
	Rules []ColorRule `json:"rules"`
}

func (*ColorMulti) Kind() Kind { return KindColorMulti }

// NumberRangeRule is one numeric band of a ColorNumberRange action.
// Operator "between" uses Value..Value2 inclusive.
type NumberRangeRule struct {
	Operator string  `json:"operator"` // >, >=, <, <=, =, between
	Value    float64 `json:"value"`
	Value2   float64 `json:"value2,omitempty"`
	Color    string  `json:"color"`
}

// ColorNumberRange paints data rows by numeric bands over one column.
// Rules apply in the caller-supplied order; the first matching rule wins
// per row.
type ColorNumberRange struct {
	Column string            `json:"column"`
	Rules  []NumberRangeRule `json:"rules"`
}

func (*ColorNumberRange) Kind() Kind { return KindColorNumberRange }

// AddColumn inserts an empty column. With no anchor it appends at the end;
// with an anchor column and Position "before"/"after" it inserts around it.
type AddColumn struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"` // before or after the anchor
	Anchor   string `json:"column,omitempty"`
}

func (*AddColumn) Kind() Kind { return KindAddColumn }

// AddColumnSerial appends a new column pre-filled with serial numbers.
type AddColumnSerial struct {
	Name string `json:"name"`
}

func (*AddColumnSerial) Kind() Kind { return KindAddColumnSerial }

// DeleteColumn removes one column.
type DeleteColumn struct {
	Column string `json:"column"`
}

func (*DeleteColumn) Kind() Kind { return KindDeleteColumn }

// AddRow appends a row of values under the current data.
type AddRow struct {
	Values []any `json:"values"`
}

func (*AddRow) Kind() Kind { return KindAddRow }

// DeleteRow removes one displayed (1-based) sheet row.
type DeleteRow struct {
	Row int `json:"row"`
}

func (*DeleteRow) Kind() Kind { return KindDeleteRow }

// MoveColumn moves a column before or after a target column.
type MoveColumn struct {
	Column   string `json:"column"`
	Position string `json:"position,omitempty"` // before (default) or after
	Target   string `json:"target"`
}

func (*MoveColumn) Kind() Kind { return KindMoveColumn }

// RenameColumn rewrites one header cell. NewName is never grounded; it is
// the name the caller wants, not a reference to an existing column.
type RenameColumn struct {
	Column  string `json:"column"`
	NewName string `json:"new_name"`
}

func (*RenameColumn) Kind() Kind { return KindRenameColumn }

// FillDown copies the first data cell of a column down to the last row.
type FillDown struct {
	Column string `json:"column"`
}

func (*FillDown) Kind() Kind { return KindFillDown }

// AddSerial writes 1..N into an existing column, or prepends a fresh
// serial column when none is named.
type AddSerial struct {
	Column string `json:"column,omitempty"`
}

func (*AddSerial) Kind() Kind { return KindAddSerial }

// Freeze pins the first N rows and/or columns.
type Freeze struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (*Freeze) Kind() Kind { return KindFreeze }

// MergeCells merges an A1-style range into one cell block.
type MergeCells struct {
	Range     string `json:"range"`
	MergeType string `json:"merge_type,omitempty"` // all (default), rows, columns
}

func (*MergeCells) Kind() Kind { return KindMergeCells }

// CopyColumn copies an existing column's data into a new column appended
// at the end. Target is the new column's title and is never grounded.
type CopyColumn struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (*CopyColumn) Kind() Kind { return KindCopyColumn }

// CopyRow duplicates a displayed (1-based) sheet row. To of 0 appends the
// copy under the current data.
type CopyRow struct {
	Row int `json:"row"`
	To  int `json:"to,omitempty"`
}

func (*CopyRow) Kind() Kind { return KindCopyRow }

// MoveRow moves a displayed (1-based) sheet row to another position.
type MoveRow struct {
	Row int `json:"row"`
	To  int `json:"to"`
}

func (*MoveRow) Kind() Kind { return KindMoveRow }

// ClearFormatting resets cell formatting over a range, or the whole sheet
// when no range is given.
type ClearFormatting struct {
	Range string `json:"range,omitempty"`
}

func (*ClearFormatting) Kind() Kind { return KindClearFormatting }

// newByKind constructs the zero action for a discriminant with its
// defaults set, so JSON decoding only overrides what the payload names.
func newByKind(k Kind) (Action, bool) {
	switch k {
	case KindSort:
		return &Sort{Ascending: true}, true
	case KindMultiSort:
		return &MultiSort{}, true
	case KindFilter:
		return &Filter{}, true
	case KindDeleteRows:
		return &DeleteRows{}, true
	case KindRemoveDuplicates:
		return &RemoveDuplicates{}, true
	case KindFormula:
		return &Formula{}, true
	case KindColorRow:
		return &ColorRow{}, true
	case KindColorColumn:
		return &ColorColumn{}, true
	case KindColorRange:
		return &ColorRange{}, true
	case KindColorIf:
		return &ColorIf{}, true
	case KindColorMulti:
		return &ColorMulti{}, true
	case KindColorNumberRange:
		return &ColorNumberRange{}, true
	case KindAddColumn:
		return &AddColumn{}, true
	case KindAddColumnSerial:
		return &AddColumnSerial{}, true
	case KindDeleteColumn:
		return &DeleteColumn{}, true
	case KindAddRow:
		return &AddRow{}, true
	case KindDeleteRow:
		return &DeleteRow{}, true
	case KindMoveColumn:
		return &MoveColumn{Position: "before"}, true
	case KindRenameColumn:
		return &RenameColumn{}, true
	case KindFillDown:
		return &FillDown{}, true
	case KindAddSerial:
		return &AddSerial{}, true
	case KindFreeze:
		return &Freeze{}, true
	case KindMergeCells:
		return &MergeCells{MergeType: "all"}, true
	case KindCopyColumn:
		return &CopyColumn{}, true
	case KindCopyRow:
		return &CopyRow{}, true
	case KindMoveRow:
		return &MoveRow{}, true
	case KindClearFormatting:
		return &ClearFormatting{}, true
	default:
		return nil, false
	}
}
