package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderTitledBox renders content inside a rounded border with title
// embedded in the top edge:
//
//	╭─ Title ──────╮
//	│ content      │
//	╰──────────────╯
func RenderTitledBox(content, title string, width int) string {
	borderStyle := lipgloss.NewStyle().Foreground(BorderColor)
	innerWidth := max(width-2, 1)

	lines := strings.Split(content, "\n")
	var sb strings.Builder
	sb.WriteString(buildTopBorder(title, innerWidth, borderStyle))
	for _, line := range lines {
		if lipgloss.Width(line) > innerWidth {
			line = TruncateString(Plain(line), innerWidth)
		}
		pad := innerWidth - lipgloss.Width(line)
		sb.WriteString("\n")
		sb.WriteString(borderStyle.Render(borderVertical))
		sb.WriteString(line)
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(borderStyle.Render(borderVertical))
	}
	sb.WriteString("\n")
	sb.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return sb.String()
}

func buildTopBorder(title string, innerWidth int, borderStyle lipgloss.Style) string {
	// "─ " before the title and " ─" after need four cells.
	if title == "" || innerWidth < 4 {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}

	display := TruncateString(title, innerWidth-4)
	rest := max(innerWidth-3-lipgloss.Width(display), 0)

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		TitleStyle.Render(display) +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, rest)+borderTopRight)
}
