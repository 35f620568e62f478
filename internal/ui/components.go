package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SectionHeader creates a styled section header with a title and color
// Example: "─── TITLE ───────────"
func SectionHeader(title string, color lipgloss.Color) string {
	dashes := strings.Repeat("─", max(25-len(title), 0))
	headerStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return fmt.Sprintf("%s%s%s",
		headerStyle.Render("─── "),
		titleStyle.Render(title),
		headerStyle.Render(" "+dashes),
	)
}

// Verdict renders VALID/INVALID in its colour
func Verdict(valid bool) string {
	if valid {
		return ValidStyle.Render("VALID")
	}
	return InvalidStyle.Render("INVALID")
}

// Spinner frames using braille characters
var SpinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner returns the spinner character at the given frame index
func Spinner(frame int) string {
	return string(SpinnerFrames[frame%len(SpinnerFrames)])
}

// Truncate shortens s to width runes, marking the cut with an ellipsis
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
