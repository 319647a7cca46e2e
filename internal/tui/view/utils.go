package view

import (
	"github.com/mattn/go-runewidth"
)

// Truncate cuts a string to the given display width, appending an
// ellipsis when anything was dropped. Width is measured in terminal
// cells, not runes.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads a string with spaces to the given display width.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
