package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheetpilotlabs/sheetpilot-cli/internal/sheet"
)

var (
	columnsSheet     string
	columnsHeaderRow int
)

var columnsCmd = &cobra.Command{
	Use:   "columns <spreadsheet-id>",
	Short: "Show the column names an instruction can reference",
	Long: `Read the header row of a worksheet and print its column names.

Useful to check what the instruction translator will see before
running an edit.

Examples:
  sheetpilot columns 1BxiMVs0XRA5
  sheetpilot columns 1BxiMVs0XRA5 --sheet Grades --json`,
	Args: cobra.ExactArgs(1),
	RunE: runColumns,
}

func init() {
	columnsCmd.Flags().StringVar(&columnsSheet, "sheet", "Sheet1", "Worksheet name")
	columnsCmd.Flags().IntVar(&columnsHeaderRow, "header-row", 1, "1-based row holding the column names")
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	sheets, err := newSheetsClient()
	if err != nil {
		return err
	}
	snap, err := sheet.Read(cmd.Context(), sheets, args[0], columnsSheet, columnsHeaderRow)
	if err != nil {
		return err
	}

	if jsonOutput {
		return jsonPrint(map[string]any{
			"sheet":    snap.SheetName,
			"sheet_id": snap.SheetID,
			"columns":  snap.Columns,
		})
	}
	for i, name := range snap.Columns {
		fmt.Printf("%s  %s\n", sheet.ColumnLetter(i), name)
	}
	return nil
}
