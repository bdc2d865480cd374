package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt_IncludesLiveColumns(t *testing.T) {
	prompt := SystemPrompt([]string{"Roll No", "Name", "CGPA"})
	assert.Contains(t, prompt, "Roll No, Name, CGPA")
	assert.Contains(t, prompt, "exactly one JSON object")
}

func TestSystemPrompt_EnumeratesEveryKind(t *testing.T) {
	prompt := SystemPrompt([]string{"A"})
	kinds := []string{
		"sort", "multicolumn_sort", "filter", "delete_rows", "remove_duplicates",
		"formula", "color_row", "color_column", "color_range", "color_if",
		"color_multi", "color_number_range", "add_column", "add_column_serial",
		"delete_column", "add_row", "delete_row", "move_column", "rename_column",
		"fill_down", "add_serial", "freeze", "merge_cells", "copy_column",
		"copy_row", "move_row", "clear_formatting",
	}
	for _, kind := range kinds {
		assert.Contains(t, prompt, `"action": "`+kind+`"`, "catalog must list %s", kind)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(t.Context(), "", "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "api key"))
}
