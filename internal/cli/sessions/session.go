package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/focusbank/internal/cli"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/tui"
)

type SessionCmd struct {
	Start   StartCmd   `cmd:"" help:"Open a focus session."`
	Stop    StopCmd    `cmd:"" help:"Close a focus session and credit its duration."`
	Current CurrentCmd `cmd:"" help:"Show the open session, if any."`
	Show    ShowCmd    `cmd:"" help:"Show one session."`
	List    ListCmd    `cmd:"" help:"List the sessions started on a date."`
}

type StartCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
}

func (c *StartCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Sessions.StartFocus(context.Background(), c.User)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyOpen) {
			return fmt.Errorf("%w (stop it with 'session stop -u %s')", err, c.User)
		}
		return err
	}

	return ctx.Render(sess, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Session #%d started at %s\n", sess.ID, cli.FormatTime(sess.StartedAt, ctx.Resolver.Location()))
	})
}

type StopCmd struct {
	ID   int64  `arg:"" optional:"" help:"Session id. Defaults to the user's open session."`
	User string `short:"u" env:"FOCUSBANK_USER" help:"Anonymous user identifier, used when no id is given."`
}

func (c *StopCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	id := c.ID
	if id == 0 {
		if c.User == "" {
			return apperrors.Validation("either a session id or --user is required")
		}
		open, err := ctx.Sessions.CurrentSession(bg, c.User)
		if err != nil {
			return err
		}
		if open == nil {
			return apperrors.NoOpenSession(c.User)
		}
		id = open.ID
	}

	sess, err := ctx.Sessions.EndFocus(bg, id)
	if err != nil {
		return err
	}

	date := ctx.Resolver.DateOf(*sess.EndedAt)
	summary, err := ctx.Reports.GetDailySummary(bg, sess.AnonID, date)
	if err != nil {
		return err
	}

	out := struct {
		Session models.FocusSession `json:"session"`
		Day     models.DailySummary `json:"day"`
	}{sess, summary}

	return ctx.Render(out, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Session #%d closed: %s\n", sess.ID, cli.ValueStyle.Render(cli.FormatDuration(sess.Seconds())))
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Total on "+date+":"), cli.FormatDuration(summary.TotalSeconds))
	})
}

type CurrentCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
}

func (c *CurrentCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Sessions.CurrentSession(context.Background(), c.User)
	if err != nil {
		return err
	}

	return ctx.Render(sess, func(w io.Writer) {
		if sess == nil {
			fmt.Fprintln(w, "No open session.")
			return
		}
		elapsed := int64(sess.Elapsed(ctx.Resolver.Now()).Seconds())
		fmt.Fprintf(w, "Session #%d running for %s (since %s)\n", sess.ID,
			cli.ValueStyle.Render(cli.FormatDuration(elapsed)), cli.FormatTime(sess.StartedAt, ctx.Resolver.Location()))
	})
}

type ShowCmd struct {
	ID int64 `arg:"" help:"Session id."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Sessions.GetSession(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if sess == nil {
		return apperrors.Validation("session %d not found", c.ID)
	}

	return ctx.Render(sess, func(w io.Writer) {
		loc := ctx.Resolver.Location()
		fmt.Fprintln(w, cli.HeaderStyle.Render(fmt.Sprintf("Session #%d", sess.ID)))
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("User:    "), sess.AnonID)
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("State:   "), sess.State())
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Started: "), cli.FormatTime(sess.StartedAt, loc))
		if !sess.IsOpen() {
			fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Ended:   "), cli.FormatTime(*sess.EndedAt, loc))
			fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Duration:"), cli.FormatDuration(sess.Seconds()))
		}
	})
}

type ListCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Date string `help:"Date to list (YYYY-MM-DD). Defaults to today."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = ctx.Resolver.TodayString()
	}

	list, err := ctx.Sessions.ListSessions(context.Background(), c.User, date)
	if err != nil {
		return err
	}
	if list == nil {
		list = []models.FocusSession{}
	}

	return ctx.Render(list, func(w io.Writer) {
		if len(list) == 0 {
			fmt.Fprintf(w, "No sessions on %s.\n", date)
			return
		}
		fmt.Fprintln(w, cli.HeaderStyle.Render("Sessions on "+date))
		var total int64
		for _, s := range list {
			fmt.Fprintf(w, "  %s\n", cli.SessionLine(s, ctx.Resolver.Location()))
			total += s.Seconds()
		}
		fmt.Fprintf(w, "\n  %s %s\n", cli.LabelStyle.Render("Closed total:"), cli.FormatDuration(total))
	})
}

// FocusCmd opens a session (or resumes the open one) and shows a live timer.
type FocusCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
}

func (c *FocusCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	sess, err := ctx.Sessions.StartFocus(bg, c.User)
	if errors.Is(err, apperrors.ErrAlreadyOpen) {
		open, findErr := ctx.Sessions.CurrentSession(bg, c.User)
		if findErr != nil {
			return findErr
		}
		if open == nil {
			return err
		}
		sess = *open
	} else if err != nil {
		return err
	}

	model := tui.New(sess, ctx.Resolver.Now(), ctx.Resolver.Location(), func() (models.FocusSession, error) {
		return ctx.Sessions.EndFocus(bg, sess.ID)
	})

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("failed to run timer: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return nil
	}
	if m.Detached() {
		ctx.Printf("Stop it later with 'session stop %d'.\n", sess.ID)
		return nil
	}
	_, stopErr := m.Result()
	return stopErr
}
