package action

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
)

func TestColorByName(t *testing.T) {
	assert.Equal(t, client.Color{Red: 0, Green: 1, Blue: 0}, ColorByName("green"))
	assert.Equal(t, ColorByName("gray"), ColorByName("grey"))
	assert.Equal(t, ColorByName("RED"), ColorByName(" red "))
}

func TestColorByName_UnknownFallsBackToYellow(t *testing.T) {
	yellow := client.Color{Red: 1, Green: 1, Blue: 0}
	assert.Equal(t, yellow, ColorByName("chartreuse-ish"))
	assert.Equal(t, yellow, ColorByName(""))
}
