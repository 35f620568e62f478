// Package app shows validation progress as an interactive terminal program.
package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/validate"
)

// ErrAborted is returned when the user quits before validation finished
var ErrAborted = errors.New("validation aborted")

// RunFunc validates the range, reporting each record through progress
type RunFunc func(ctx context.Context, progress validate.ProgressFunc) ([]models.ValidationRecord, models.Summary)

// Model is the progress screen state
type Model struct {
	startRef string
	endRef   string
	total    int

	records []models.ValidationRecord
	summary models.Summary
	events  <-chan tea.Msg
	cancel  context.CancelFunc

	spinnerFrame int
	done         bool
	aborted      bool

	width int
}

// New creates a model fed by events; cancel stops the underlying run
func New(startRef, endRef string, total int, events <-chan tea.Msg, cancel context.CancelFunc) Model {
	return Model{
		startRef: startRef,
		endRef:   endRef,
		total:    total,
		events:   events,
		cancel:   cancel,
		width:    80,
	}
}

// Init starts the spinner and the event subscription
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), listenForEvents(m.events))
}

// Records returns the records received so far, in input order
func (m Model) Records() []models.ValidationRecord {
	return m.records
}

// Done reports whether the run completed
func (m Model) Done() bool {
	return m.done
}

// tickMsg is sent on each spinner tick
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Run validates inside a bubbletea program and returns what run produced.
// The program renders with opts; quitting early yields ErrAborted.
func Run(ctx context.Context, run RunFunc, startRef, endRef string, total int, opts ...tea.ProgramOption) ([]models.ValidationRecord, models.Summary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(startRef, endRef, total, start(runCtx, run, total), cancel)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, models.Summary{}, err
	}

	fm := final.(Model)
	if fm.aborted || !fm.done {
		return nil, models.Summary{}, ErrAborted
	}
	return fm.records, fm.summary, nil
}
