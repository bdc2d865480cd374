package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheetpilotlabs/sheetpilot-cli/internal/agent"
	"github.com/sheetpilotlabs/sheetpilot-cli/internal/oracle"
)

var (
	runSheet     string
	runHeaderRow int
	runModel     string
)

var runCmd = &cobra.Command{
	Use:   "run <spreadsheet-id> <instruction...>",
	Short: "Apply a plain-English instruction to a spreadsheet",
	Long: `Translate one natural-language instruction into a spreadsheet edit
and apply it.

The instruction is sent to Gemini together with the sheet's column
names; the resulting action is validated and matched against the real
schema before anything is written. Sloppy column references ("cgpa",
"roll") are matched to the closest real header.

Examples:
  sheetpilot run 1BxiMVs0XRA5 "sort by CGPA descending"
  sheetpilot run 1BxiMVs0XRA5 "delete rows where Marks < 40"
  sheetpilot run 1BxiMVs0XRA5 "color rows with CGPA > 9 green" --sheet Grades
  sheetpilot run 1BxiMVs0XRA5 "freeze the header" --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runSheet, "sheet", "Sheet1", "Worksheet name")
	runCmd.Flags().IntVar(&runHeaderRow, "header-row", 1, "1-based row holding the column names")
	runCmd.Flags().StringVar(&runModel, "model", "", "Gemini model (default "+oracle.DefaultModel+")")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	spreadsheetID := args[0]
	instruction := strings.Join(args[1:], " ")

	sheets, err := newSheetsClient()
	if err != nil {
		return err
	}
	key, err := resolveGeminiKey()
	if err != nil {
		return err
	}
	gem, err := oracle.NewGemini(ctx, key, runModel)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	runner := &agent.Runner{
		Sheets: sheets,
		Oracle: gem,
		Logger: logger,
		Policy: resolvePolicy(),
	}
	result := runner.Run(ctx, spreadsheetID, runSheet, instruction, runHeaderRow)

	if jsonOutput {
		if err := jsonPrint(result); err != nil {
			return err
		}
	} else {
		printResult(result)
	}

	if result.Status != agent.StatusSuccess {
		return &ExitError{Code: 1}
	}
	return nil
}
