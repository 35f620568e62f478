package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	ColorCyan     = lipgloss.Color("#00FFFF")
	ColorGreen    = lipgloss.Color("#00FF00")
	ColorYellow   = lipgloss.Color("#FFFF00")
	ColorRed      = lipgloss.Color("#FF0000")
	ColorWhite    = lipgloss.Color("#FFFFFF")
	ColorDarkGray = lipgloss.Color("8")
)

var (
	ValidStyle   = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	InvalidStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	StepStyle    = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	KeyStyle     = lipgloss.NewStyle().Foreground(ColorYellow)
	DimStyle     = lipgloss.NewStyle().Foreground(ColorDarkGray)
)

// ConfigureColor picks the colour profile for out. Colour is disabled when
// noColor is set, NO_COLOR is present, or out is not a terminal.
func ConfigureColor(out io.Writer, noColor bool) {
	lipgloss.SetColorProfile(ColorProfile(out, noColor))
}

// ColorProfile returns the termenv profile ConfigureColor would apply
func ColorProfile(out io.Writer, noColor bool) termenv.Profile {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return termenv.Ascii
	}
	return termenv.NewOutput(out).EnvColorProfile()
}
