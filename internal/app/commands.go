package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
)

// recordMsg carries one finished record
type recordMsg struct {
	index  int
	record models.ValidationRecord
}

// finishedMsg is sent once the whole range has been validated
type finishedMsg struct {
	records []models.ValidationRecord
	summary models.Summary
}

// start runs fn in the background. The channel is buffered for every
// message the run can produce, so the run never blocks on a quit program.
func start(ctx context.Context, fn RunFunc, total int) <-chan tea.Msg {
	ch := make(chan tea.Msg, total+1)
	go func() {
		defer close(ch)
		records, summary := fn(ctx, func(index, _ int, record models.ValidationRecord) {
			ch <- recordMsg{index: index, record: record}
		})
		ch <- finishedMsg{records: records, summary: summary}
	}()
	return ch
}

// listenForEvents waits for the next message from the run
func listenForEvents(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
