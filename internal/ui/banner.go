package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// RenderTitle returns the one-line header shown above interactive output
func RenderTitle(startRef, endRef string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorCyan).
		Bold(true)
	rangeStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return titleStyle.Render("jiracheck") + "  " + rangeStyle.Render(fmt.Sprintf("%s..%s", startRef, endRef))
}
