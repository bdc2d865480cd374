package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// cellRefRe matches a cell reference like A1, $B$2, AA100
var cellRefRe = regexp.MustCompile(`^\$?([A-Z]+)\$?(\d+)$`)

// ParseRange parses an address like "Sheet1!A1:Z50" or "A1:Z50" and returns
// (sheet, startRow, startCol, endRow, endCol) in 1-indexed form. The sheet
// part is optional; instruction text usually omits it.
func ParseRange(address string) (sheet string, startRow, startCol, endRow, endCol int, err error) {
	rangePart := address
	if sheetPart, rest, hasSheet := strings.Cut(address, "!"); hasSheet {
		// Remove surrounding quotes from sheet name
		sheet = strings.Trim(sheetPart, "'")
		rangePart = rest
	}

	// Split range into from:to
	fromRef, toRef, hasColon := strings.Cut(rangePart, ":")
	if !hasColon {
		toRef = fromRef // single cell
	}

	startCol, startRow, err = parseRef(fromRef)
	if err != nil {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid start of range %q: %w", fromRef, err)
	}
	endCol, endRow, err = parseRef(toRef)
	if err != nil {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid end of range %q: %w", toRef, err)
	}

	// Normalize order
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}

	return sheet, startRow, startCol, endRow, endCol, nil
}

// ColToLetter converts a 1-indexed column number to spreadsheet letter(s)
func ColToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// LetterToCol converts spreadsheet letter(s) to a 1-indexed column number
func LetterToCol(letters string) int {
	col := 0
	for _, c := range strings.ToUpper(letters) {
		col = col*26 + int(c-'A'+1)
	}
	return col
}

// FormatAddress builds an address string like "Sheet1!A1:Z50"
func FormatAddress(sheet string, startRow, startCol, endRow, endCol int) string {
	from := ColToLetter(startCol) + strconv.Itoa(startRow)
	to := ColToLetter(endCol) + strconv.Itoa(endRow)
	if from == to {
		return sheet + "!" + from
	}
	return sheet + "!" + from + ":" + to
}

func parseRef(ref string) (col, row int, err error) {
	ref = strings.ReplaceAll(ref, "$", "")
	m := cellRefRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(ref)))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	col = LetterToCol(m[1])
	row, _ = strconv.Atoi(m[2])
	return col, row, nil
}
