package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sheetpilotlabs/sheetpilot-cli/internal/agent"
)

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return "" }

func jsonPrint(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders a pipeline result for humans: success summary to
// stdout, failures to stderr.
func printResult(res agent.Result) {
	if res.Status != agent.StatusSuccess {
		fmt.Fprintf(os.Stderr, "✗ %s\n", res.Message)
		if res.Details != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", res.Details)
		}
		return
	}
	fmt.Printf("✓ applied %s\n", res.Action)
	for k, v := range res.Fields {
		fmt.Printf("  %s: %v\n", k, v)
	}
}
