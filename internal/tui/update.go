package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			// The pending stop decides the outcome and quits on its own.
			if m.stopping {
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Stop):
			if m.stopping || m.result != nil {
				return m, nil
			}
			m.stopping = true
			return m, tea.Batch(m.stopwatch.Stop(), m.stopCmd())
		}

	case stoppedMsg:
		m.stopping = false
		m.quitting = true
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		sess := msg.session
		m.result = &sess
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.stopwatch, cmd = m.stopwatch.Update(msg)
	return m, cmd
}
