package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/report"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/ui"
)

// View renders the current state
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(ui.RenderTitle(m.startRef, m.endRef))
	b.WriteString("\n\n")

	summaryWidth := max(m.width-40, 20)
	for i, r := range m.records {
		fmt.Fprintf(&b, "  (%d/%d) %s %s  %s\n",
			i+1, m.total,
			ui.DimStyle.Render(r.Commit.ID),
			ui.Truncate(r.Commit.Summary, summaryWidth),
			report.VerdictLine(r),
		)
	}

	if m.aborted {
		b.WriteString("\n" + ui.InvalidStyle.Render("Aborted.") + "\n")
		return b.String()
	}

	if !m.done {
		spinner := lipgloss.NewStyle().Foreground(ui.ColorCyan).Render(ui.Spinner(m.spinnerFrame))
		fmt.Fprintf(&b, "\n%s Validating %d of %d commits...  %s\n",
			spinner, min(len(m.records)+1, m.total), m.total, ui.DimStyle.Render("q to quit"))
		return b.String()
	}

	b.WriteString("\n" + ui.SectionHeader("DONE", ui.ColorCyan) + "\n")
	return b.String()
}
