package styles

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// TruncateString shortens s to at most width terminal cells, ending in an
// ellipsis when cut. Wide runes count as two cells.
func TruncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// Plain strips ANSI escape sequences.
func Plain(s string) string {
	return ansi.Strip(s)
}
