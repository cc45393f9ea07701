// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors
var (
	TextPrimaryColor = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	BorderColor      = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

	StatusPendingColor    = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
	StatusInProgressColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#54A0FF"}
	StatusCompletedColor  = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#73F59F"}
	StatusFailedColor     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF8787"}
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	PendingStyle    = lipgloss.NewStyle().Foreground(StatusPendingColor)
	InProgressStyle = lipgloss.NewStyle().Foreground(StatusInProgressColor).Bold(true)
	CompletedStyle  = lipgloss.NewStyle().Foreground(StatusCompletedColor)
	FailedStyle     = lipgloss.NewStyle().Foreground(StatusFailedColor).Bold(true)
)

// DisableColor forces the ASCII profile so rendered output carries no
// escape sequences.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
