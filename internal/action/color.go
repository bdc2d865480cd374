package action

import (
	"strings"

	"github.com/sheetpilotlabs/sheetpilot-cli/client"
)

// namedColors is the closed palette the oracle may name. Fractional RGB,
// as the service expects.
var namedColors = map[string]client.Color{
	"red":     {Red: 1, Green: 0, Blue: 0},
	"green":   {Red: 0, Green: 1, Blue: 0},
	"blue":    {Red: 0, Green: 0, Blue: 1},
	"yellow":  {Red: 1, Green: 1, Blue: 0},
	"orange":  {Red: 1, Green: 0.6, Blue: 0},
	"purple":  {Red: 0.6, Green: 0, Blue: 0.8},
	"pink":    {Red: 1, Green: 0.75, Blue: 0.8},
	"cyan":    {Red: 0, Green: 1, Blue: 1},
	"magenta": {Red: 1, Green: 0, Blue: 1},
	"white":   {Red: 1, Green: 1, Blue: 1},
	"black":   {Red: 0, Green: 0, Blue: 0},
	"gray":    {Red: 0.5, Green: 0.5, Blue: 0.5},
	"grey":    {Red: 0.5, Green: 0.5, Blue: 0.5},
	"brown":   {Red: 0.6, Green: 0.3, Blue: 0},
}

// ColorByName maps a color name to its RGB triple. Unknown names fall
// back to yellow: a wrong highlight is recoverable, a failed instruction
// is not.
func ColorByName(name string) client.Color {
	if c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return namedColors["yellow"]
}
