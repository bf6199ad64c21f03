// Package tui renders the live timer shown while a focus session is open.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/focusbank/internal/models"
)

// StopFunc closes the session being displayed.
type StopFunc func() (models.FocusSession, error)

type stoppedMsg struct {
	session models.FocusSession
	err     error
}

type Model struct {
	session   models.FocusSession
	offset    time.Duration // already elapsed when the timer started
	loc       *time.Location
	stop      StopFunc
	stopwatch stopwatch.Model
	keys      KeyMap
	help      help.Model

	stopping bool
	result   *models.FocusSession
	err      error
	quitting bool
	width    int
}

// New builds a timer for an open session. now is used to pick up time that
// elapsed before the timer was shown, such as when resuming a session.
func New(session models.FocusSession, now time.Time, loc *time.Location, stop StopFunc) Model {
	if loc == nil {
		loc = time.UTC
	}
	return Model{
		session:   session,
		offset:    session.Elapsed(now),
		loc:       loc,
		stop:      stop,
		stopwatch: stopwatch.NewWithInterval(time.Second),
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.stopwatch.Init()
}

// Elapsed is the total running time of the session as displayed.
func (m Model) Elapsed() time.Duration {
	return m.offset + m.stopwatch.Elapsed()
}

// Result returns the closed session once it has been stopped from the timer.
func (m Model) Result() (*models.FocusSession, error) {
	return m.result, m.err
}

// Detached reports whether the user left the timer without stopping the session.
func (m Model) Detached() bool {
	return m.quitting && m.result == nil && m.err == nil
}

func (m Model) stopCmd() tea.Cmd {
	stop := m.stop
	return func() tea.Msg {
		sess, err := stop()
		return stoppedMsg{session: sess, err: err}
	}
}
