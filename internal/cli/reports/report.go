package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/reports"
)

type ReportCmd struct {
	Daily   ReportDailyCmd  `cmd:"" help:"Total focus time for one day."`
	Weekly  ReportPeriodCmd `cmd:"" help:"Totals per ISO week." set:"granularity=weekly"`
	Monthly ReportPeriodCmd `cmd:"" help:"Totals per calendar month." set:"granularity=monthly"`
}

type ReportDailyCmd struct {
	User string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD). Defaults to today."`
}

func (c *ReportDailyCmd) Run(ctx *cli.Context) error {
	summary, err := ctx.Reports.GetDailySummary(context.Background(), c.User, c.Date)
	if err != nil {
		return err
	}

	return ctx.Render(summary, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", cli.LabelStyle.Render(summary.Date+":"),
			cli.ValueStyle.Render(cli.FormatDuration(summary.TotalSeconds)))
	})
}

type ReportPeriodCmd struct {
	User        string `short:"u" required:"" env:"FOCUSBANK_USER" help:"Anonymous user identifier."`
	Count       int    `short:"n" default:"12" help:"Number of periods, including the current one."`
	Granularity string `hidden:"" default:"${granularity}"`
}

func (c *ReportPeriodCmd) Run(ctx *cli.Context) error {
	report, err := ctx.Reports.GetPeriodicReport(context.Background(), c.User, c.Granularity, c.Count)
	if err != nil {
		return err
	}

	return ctx.Render(report, func(w io.Writer) {
		writeReport(w, report)
	})
}

func writeReport(w io.Writer, report reports.Report) {
	title := "Weekly"
	if report.Granularity == models.GranularityMonthly {
		title = "Monthly"
	}
	fmt.Fprintln(w, cli.HeaderStyle.Render(fmt.Sprintf("%s report %s .. %s", title, report.From, report.To)))

	if len(report.Periods) == 0 {
		fmt.Fprintln(w, "  No focus time recorded.")
		return
	}

	fmt.Fprintf(w, "  %-10s %14s %6s %14s\n", "PERIOD", "TOTAL", "DAYS", "AVG/DAY")
	for _, p := range report.Periods {
		fmt.Fprintf(w, "  %-10s %14s %6d %14s\n", p.Period,
			cli.FormatDuration(p.TotalSeconds), p.ActiveDayCount, cli.FormatDuration(p.AvgSecondsPerDay))
	}
}
