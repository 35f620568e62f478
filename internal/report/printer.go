// Package report renders validation results for people (text) and for
// machines (JSON, YAML).
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/ui"
)

// Header describes the run being reported. The API token is never part of it.
type Header struct {
	JiraURL  string
	Username string
	StartRef string
	EndRef   string
}

// Printer writes the text report step by step
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Header prints the run parameters
func (p *Printer) Header(h Header) {
	p.printf("Jira URL: %s\n", h.JiraURL)
	p.printf("Username: %s\n", h.Username)
	p.printf("Start Ref: %s\n", h.StartRef)
	p.printf("End Ref: %s\n", h.EndRef)
	p.printf("\n%s\n", ui.StepStyle.Render(">>> Step 1: Fetching commit information from Git repository..."))
}

// CommitsFound announces the size of the resolved range
func (p *Printer) CommitsFound(n int, h Header) {
	if n == 0 {
		p.printf("No commits found in the specified range (%s..%s).\n", h.StartRef, h.EndRef)
		return
	}
	p.printf("Found %d commits to validate.\n", n)
	p.printf("\n%s\n", ui.StepStyle.Render(">>> Step 2: Validating individual commits..."))
}

// Progress prints the verdict line for one commit
func (p *Printer) Progress(index, total int, r models.ValidationRecord) {
	p.printf("  (%d/%d) Validating commit %s ('%s')... %s\n",
		index+1, total, r.Commit.ID, r.Commit.Summary, VerdictLine(r))
}

// VerdictLine is the result part of a progress line
func VerdictLine(r models.ValidationRecord) string {
	if r.IsValid() {
		return ui.Verdict(true) + " (Jira Key: " + ui.KeyStyle.Render(r.CheckedKey()) + ")"
	}
	return ui.Verdict(false) + " - Error: " + r.Reason
}

// Summary prints the totals, the invalid commits and the final result
func (p *Printer) Summary(records []models.ValidationRecord, s models.Summary) {
	if s.Total == 0 {
		p.printf("\n%s\n", ui.ValidStyle.Render(">>> Final Result: Validation SUCCESSFUL (No commits to validate)."))
		return
	}

	p.printf("\n%s\n", ui.StepStyle.Render(">>> Step 3: Final Validation Summary"))
	p.printf("Total commits scanned: %d\n", s.Total)
	p.printf("Valid commits: %d\n", s.Valid)
	p.printf("Invalid commits: %d\n", s.Invalid)

	if s.Success() {
		p.printf("\n%s\n", ui.ValidStyle.Render(">>> Final Result: Validation SUCCESSFUL."))
		return
	}

	p.printf("\nDetails of INVALID commits:\n")
	p.printf("%s\n", invalidTable(records))
	p.printf("\n%s\n", ui.InvalidStyle.Render(">>> Final Result: Validation FAILED."))
}

func invalidTable(records []models.ValidationRecord) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Commit", "Summary", "Error", "Jira Keys Found"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 50},
	})

	for _, r := range records {
		if r.IsValid() {
			continue
		}
		keys := "None"
		if len(r.TicketKeys) > 0 {
			keys = strings.Join(r.TicketKeys, ", ")
		}
		w.AppendRow(table.Row{r.Commit.ID, r.Commit.Summary, r.Reason, keys})
	}
	return w.Render()
}
