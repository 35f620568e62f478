package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.spinnerFrame++
		return m, tickCmd()

	case recordMsg:
		m.records = append(m.records, msg.record)
		return m, listenForEvents(m.events)

	case finishedMsg:
		m.records = msg.records
		m.summary = msg.summary
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.done {
			return m, tea.Quit
		}
		m.aborted = true
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}
