package client

// Request is one entry of a batchUpdate payload. Exactly one field is set
// per request; the service rejects requests with zero or multiple kinds.
type Request struct {
	SortRange             *SortRangeRequest             `json:"sortRange,omitempty"`
	SetBasicFilter        *SetBasicFilterRequest        `json:"setBasicFilter,omitempty"`
	DeleteDimension       *DeleteDimensionRequest       `json:"deleteDimension,omitempty"`
	InsertDimension       *InsertDimensionRequest       `json:"insertDimension,omitempty"`
	AppendDimension       *AppendDimensionRequest       `json:"appendDimension,omitempty"`
	MoveDimension         *MoveDimensionRequest         `json:"moveDimension,omitempty"`
	DeleteDuplicates      *DeleteDuplicatesRequest      `json:"deleteDuplicates,omitempty"`
	RepeatCell            *RepeatCellRequest            `json:"repeatCell,omitempty"`
	MergeCells            *MergeCellsRequest            `json:"mergeCells,omitempty"`
	UnmergeCells          *UnmergeCellsRequest          `json:"unmergeCells,omitempty"`
	CopyPaste             *CopyPasteRequest             `json:"copyPaste,omitempty"`
	UpdateSheetProperties *UpdateSheetPropertiesRequest `json:"updateSheetProperties,omitempty"`
	UpdateCells           *UpdateCellsRequest           `json:"updateCells,omitempty"`
}

// GridRange addresses a rectangle of cells. All indexes are 0-based,
// start-inclusive and end-exclusive; a nil bound means unbounded.
type GridRange struct {
	SheetID          int64 `json:"sheetId"`
	StartRowIndex    *int  `json:"startRowIndex,omitempty"`
	EndRowIndex      *int  `json:"endRowIndex,omitempty"`
	StartColumnIndex *int  `json:"startColumnIndex,omitempty"`
	EndColumnIndex   *int  `json:"endColumnIndex,omitempty"`
}

// DimensionRange addresses a run of rows or columns on one sheet.
type DimensionRange struct {
	SheetID    int64  `json:"sheetId"`
	Dimension  string `json:"dimension"` // ROWS or COLUMNS
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}

type SortSpec struct {
	DimensionIndex int    `json:"dimensionIndex"`
	SortOrder      string `json:"sortOrder"` // ASCENDING or DESCENDING
}

type SortRangeRequest struct {
	Range     GridRange  `json:"range"`
	SortSpecs []SortSpec `json:"sortSpecs"`
}

type ConditionValue struct {
	UserEnteredValue string `json:"userEnteredValue"`
}

type BooleanCondition struct {
	Type   string           `json:"type"`
	Values []ConditionValue `json:"values,omitempty"`
}

type FilterCriteria struct {
	Condition *BooleanCondition `json:"condition,omitempty"`
}

type BasicFilter struct {
	Range    GridRange                 `json:"range"`
	Criteria map[string]FilterCriteria `json:"criteria,omitempty"`
}

type SetBasicFilterRequest struct {
	Filter BasicFilter `json:"filter"`
}

type DeleteDimensionRequest struct {
	Range DimensionRange `json:"range"`
}

type InsertDimensionRequest struct {
	Range             DimensionRange `json:"range"`
	InheritFromBefore bool           `json:"inheritFromBefore,omitempty"`
}

type AppendDimensionRequest struct {
	SheetID   int64  `json:"sheetId"`
	Dimension string `json:"dimension"`
	Length    int    `json:"length"`
}

type MoveDimensionRequest struct {
	Source           DimensionRange `json:"source"`
	DestinationIndex int            `json:"destinationIndex"`
}

type DeleteDuplicatesRequest struct {
	Range             GridRange        `json:"range"`
	ComparisonColumns []DimensionRange `json:"comparisonColumns,omitempty"`
}

// Color is a fractional RGB triple as the service expects it.
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

type CellFormat struct {
	BackgroundColor *Color `json:"backgroundColor,omitempty"`
}

type CellData struct {
	UserEnteredFormat *CellFormat `json:"userEnteredFormat,omitempty"`
}

type RepeatCellRequest struct {
	Range  GridRange `json:"range"`
	Cell   CellData  `json:"cell"`
	Fields string    `json:"fields"`
}

type MergeCellsRequest struct {
	Range     GridRange `json:"range"`
	MergeType string    `json:"mergeType"` // MERGE_ALL, MERGE_COLUMNS, MERGE_ROWS
}

type UnmergeCellsRequest struct {
	Range GridRange `json:"range"`
}

type CopyPasteRequest struct {
	Source           GridRange `json:"source"`
	Destination      GridRange `json:"destination"`
	PasteType        string    `json:"pasteType,omitempty"`
	PasteOrientation string    `json:"pasteOrientation,omitempty"`
}

type UpdateSheetPropertiesRequest struct {
	Properties SheetProperties `json:"properties"`
	Fields     string          `json:"fields"`
}

type UpdateCellsRequest struct {
	Range  GridRange `json:"range"`
	Fields string    `json:"fields"`
}

// Intp returns a pointer to v, for GridRange bounds.
func Intp(v int) *int { return &v }
