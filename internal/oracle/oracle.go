// Package oracle turns a natural-language instruction into a candidate
// action payload. The model's output is a proposal, never trusted: the
// caller parses, grounds, and validates it before anything touches the
// spreadsheet.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel balances latency and instruction-following for the short
// single-shot translation this package does.
const DefaultModel = "gemini-2.0-flash"

// Oracle proposes a raw action payload for one instruction against one
// schema. Implementations return the model text verbatim, fences and all.
type Oracle interface {
	ProposeAction(ctx context.Context, instruction string, columns []string) (string, error)
}

// Gemini is the production Oracle, backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini oracle. An empty model selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) ProposeAction(ctx context.Context, instruction string, columns []string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(instruction, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		// Translation must be deterministic; there is one right payload.
		Temperature: genai.Ptr[float32](0),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemPrompt(columns)}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generating action: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model returned no text for instruction %q", instruction)
	}
	return text, nil
}

// SystemPrompt renders the full translation contract: the live column
// list plus one JSON shape per supported action. Exported for prompt
// tests and for --debug output.
func SystemPrompt(columns []string) string {
	var b strings.Builder
	b.WriteString("You translate one spreadsheet instruction into exactly one JSON object and nothing else.\n")
	b.WriteString("No prose, no explanation. If a detail is missing, pick the most common interpretation.\n\n")
	b.WriteString("The sheet's columns, in order: ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString("\n\nUse column names from that list verbatim whenever possible.\n")
	b.WriteString("Row numbers are 1-based as displayed in the sheet.\n")
	b.WriteString("Operators are one of > >= < <= = !=. Colors are simple names like red, green, yellow.\n\n")
	b.WriteString("Supported payloads:\n")
	b.WriteString(actionCatalog)
	return b.String()
}

// actionCatalog enumerates every payload shape the parser accepts.
const actionCatalog = `
{"action": "sort", "column": "<name>", "ascending": true}
{"action": "multicolumn_sort", "sort": [{"column": "<name>", "ascending": false}, {"column": "<name>", "ascending": true}]}
{"action": "filter", "column": "<name>", "operator": ">", "value": 80}
{"action": "delete_rows", "column": "<name>", "operator": "<", "value": 40}
{"action": "remove_duplicates", "column": "<name>"}
{"action": "formula", "target_column": "<name or empty to create one>", "formula": "=SUM(B2:B10)"}
{"action": "color_row", "row": 3, "color": "yellow"}
{"action": "color_column", "column": "<name>", "color": "green"}
{"action": "color_range", "range": "A1:C5", "color": "red"}
{"action": "color_if", "column": "<name>", "operator": ">", "value": 90, "color": "green"}
{"action": "color_multi", "rules": [{"column": "<name>", "operator": ">", "value": 90, "color": "green"}, {"column": "<name>", "operator": "<", "value": 40, "color": "red"}]}
{"action": "color_number_range", "column": "<name>", "rules": [{"operator": ">", "value": 9, "color": "green"}, {"operator": "between", "value": 8, "value2": 9, "color": "yellow"}]}
{"action": "add_column", "name": "<new name>", "position": "after", "column": "<existing anchor, optional>"}
{"action": "add_column_serial", "name": "<new name, optional>"}
{"action": "delete_column", "column": "<name>"}
{"action": "add_row", "values": ["a", 1, "b"]}
{"action": "delete_row", "row": 5}
{"action": "move_column", "column": "<name>", "position": "before", "target": "<name>"}
{"action": "rename_column", "column": "<name>", "new_name": "<new name>"}
{"action": "fill_down", "column": "<name>"}
{"action": "add_serial", "column": "<existing column, optional>"}
{"action": "freeze", "rows": 1, "columns": 0}
{"action": "merge_cells", "range": "A1:C1", "merge_type": "all"}
{"action": "copy_column", "source": "<name>", "target": "<new name, optional>"}
{"action": "copy_row", "row": 2, "to": 7}
{"action": "move_row", "row": 2, "to": 7}
{"action": "clear_formatting", "range": "A1:C5 or empty for the whole sheet"}
`
