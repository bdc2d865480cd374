package client

// ErrorResponse is the standard API error shape.
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Spreadsheet is the metadata envelope for a whole spreadsheet.
type Spreadsheet struct {
	SpreadsheetID string  `json:"spreadsheetId"`
	Sheets        []Sheet `json:"sheets"`
}

// Sheet is one tab of a spreadsheet.
type Sheet struct {
	Properties SheetProperties `json:"properties"`
}

// SheetProperties carries the structural identity of a sheet.
type SheetProperties struct {
	SheetID        int64           `json:"sheetId"`
	Title          string          `json:"title,omitempty"`
	Index          int             `json:"index,omitempty"`
	GridProperties *GridProperties `json:"gridProperties,omitempty"`
}

// GridProperties describes sheet dimensions and frozen panes.
type GridProperties struct {
	RowCount          int `json:"rowCount,omitempty"`
	ColumnCount       int `json:"columnCount,omitempty"`
	FrozenRowCount    int `json:"frozenRowCount,omitempty"`
	FrozenColumnCount int `json:"frozenColumnCount,omitempty"`
}

// ValueRange is the response/request shape for ranged value reads and writes.
type ValueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}
