package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	OKStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// FormatDuration renders whole seconds as "1h 05m 03s", dropping leading zero units.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatTime renders an instant in the given zone.
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}

// ProgressBar draws ratio (0..1) as a fixed-width bar.
func ProgressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}

// SessionLine is the one-line summary used by session listings.
func SessionLine(s models.FocusSession, loc *time.Location) string {
	if s.IsOpen() {
		return fmt.Sprintf("#%d  %s  %s", s.ID, FormatTime(s.StartedAt, loc), WarnStyle.Render("open"))
	}
	return fmt.Sprintf("#%d  %s -> %s  %s", s.ID,
		FormatTime(s.StartedAt, loc), FormatTime(*s.EndedAt, loc),
		ValueStyle.Render(FormatDuration(s.Seconds())))
}

// ParseSeconds accepts a whole number of seconds ("7200") or a Go duration
// ("2h", "1h30m"). Fractions of a second are dropped.
func ParseSeconds(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperrors.Validation("duration cannot be empty")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, apperrors.Validation("invalid duration %q (use seconds or a value like 90m, 2h)", s)
	}
	return int64(d / time.Second), nil
}
