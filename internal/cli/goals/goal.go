package goals

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/focusbank/internal/cli"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

type GoalCmd struct {
	Set      GoalSetCmd      `cmd:"" help:"Set a daily, weekly or monthly focus target."`
	Get      GoalGetCmd      `cmd:"" help:"Show the goal in force today."`
	Progress GoalProgressCmd `cmd:"" help:"Show progress toward the current goal."`
	List     GoalListCmd     `cmd:"" help:"List every goal revision."`
}

type GoalSetCmd struct {
	User        string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Period      string `arg:"" optional:"" help:"DAILY, WEEKLY or MONTHLY."`
	Target      string `arg:"" optional:"" help:"Target as seconds or a duration such as 2h."`
	From        string `help:"First date the goal applies (YYYY-MM-DD). Defaults to today."`
	Interactive bool   `short:"i" help:"Fill the goal in with a form."`
}

func (c *GoalSetCmd) Run(ctx *cli.Context) error {
	if !c.Interactive && (c.Period == "" || c.Target == "") {
		return apperrors.Validation("period and target are required (or use --interactive)")
	}
	if c.Interactive {
		fm := &cli.GoalFormModel{Period: models.PeriodDaily, Target: c.Target, EffectiveFrom: c.From}
		if p, err := models.ParsePeriodType(c.Period); err == nil {
			fm.Period = p
		}
		if err := cli.NewGoalForm(fm).Run(); err != nil {
			return fmt.Errorf("goal form cancelled: %w", err)
		}
		c.Period, c.Target, c.From = string(fm.Period), fm.Target, fm.EffectiveFrom
	}

	target, err := cli.ParseSeconds(c.Target)
	if err != nil {
		return err
	}

	goal, err := ctx.Goals.SaveGoal(context.Background(), c.User, c.Period, target, c.From)
	if err != nil {
		return err
	}

	return ctx.Render(goal, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s goal of %s effective from %s\n", goal.PeriodType,
			cli.ValueStyle.Render(cli.FormatDuration(goal.TargetSeconds)), goal.EffectiveFrom)
	})
}

type GoalGetCmd struct {
	User   string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Period string `arg:"" default:"DAILY" help:"DAILY, WEEKLY or MONTHLY."`
}

func (c *GoalGetCmd) Run(ctx *cli.Context) error {
	goal, err := ctx.Goals.GetActiveGoal(context.Background(), c.User, c.Period)
	if err != nil {
		return err
	}

	return ctx.Render(goal, func(w io.Writer) {
		if goal == nil {
			fmt.Fprintf(w, "No %s goal set.\n", c.Period)
			return
		}
		fmt.Fprintf(w, "%s goal: %s (since %s)\n", goal.PeriodType,
			cli.ValueStyle.Render(cli.FormatDuration(goal.TargetSeconds)), goal.EffectiveFrom)
	})
}

type GoalProgressCmd struct {
	User   string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Period string `arg:"" default:"DAILY" help:"DAILY, WEEKLY or MONTHLY. Unknown values fall back to DAILY."`
}

func (c *GoalProgressCmd) Run(ctx *cli.Context) error {
	progress, err := ctx.Goals.GetProgress(context.Background(), c.User, c.Period)
	if err != nil {
		return err
	}

	return ctx.Render(progress, func(w io.Writer) {
		fmt.Fprintln(w, cli.HeaderStyle.Render(fmt.Sprintf("%s progress %s .. %s", progress.PeriodType, progress.From, progress.To)))
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Focused:"), cli.FormatDuration(progress.Achieved))
		if progress.Target == nil {
			fmt.Fprintf(w, "  %s\n", cli.LabelStyle.Render("No goal set for this period."))
			return
		}
		ratio := *progress.Progress
		fmt.Fprintf(w, "  %s %s\n", cli.LabelStyle.Render("Target: "), cli.FormatDuration(*progress.Target))
		fmt.Fprintf(w, "  %s %3.0f%%\n", cli.ProgressBar(ratio, 30), ratio*100)
	})
}

type GoalListCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Goals.ListGoals(context.Background(), c.User)
	if err != nil {
		return err
	}
	if list == nil {
		list = []models.Goal{}
	}

	return ctx.Render(list, func(w io.Writer) {
		if len(list) == 0 {
			fmt.Fprintln(w, "No goals set.")
			return
		}
		for _, g := range list {
			fmt.Fprintf(w, "  %-8s %-12s from %s\n", g.PeriodType, cli.FormatDuration(g.TargetSeconds), g.EffectiveFrom)
		}
	})
}
