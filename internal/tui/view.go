package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// FormatClock renders d as HH:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not stop session #%d: %v", m.session.ID, m.err)) + "\n"
	}
	if m.result != nil {
		return doneStyle.Render(fmt.Sprintf("✓ Session #%d closed after %s", m.result.ID, FormatClock(time.Duration(m.result.Seconds())*time.Second))) + "\n"
	}
	if m.quitting {
		return mutedStyle.Render(fmt.Sprintf("Session #%d is still running.", m.session.ID)) + "\n"
	}

	status := "focusing"
	if m.stopping {
		status = "stopping..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Focus session #%d", m.session.ID)),
		timerStyle.Render(FormatClock(m.Elapsed())),
		mutedStyle.Render(fmt.Sprintf("started %s · %s", m.session.StartedAt.In(m.loc).Format("15:04:05 MST"), status)),
		"",
		mutedStyle.Render(m.help.View(m.keys)),
	)
}
