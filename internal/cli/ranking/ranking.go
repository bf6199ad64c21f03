package ranking

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/focusbank/internal/cli"
	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/models"
)

type RankingCmd struct {
	Weekly  RankingShowCmd `cmd:"" help:"Leaderboard for the current ISO week." set:"window=weekly"`
	Overall RankingShowCmd `cmd:"" help:"All-time leaderboard." set:"window=overall"`
}

type RankingShowCmd struct {
	Limit  int    `short:"n" default:"${ranking_limit}" help:"Number of entries (1-100)."`
	Window string `hidden:"" default:"${window}"`
}

func (c *RankingShowCmd) Run(ctx *cli.Context) error {
	window, err := models.ParseRankingWindow(c.Window)
	if err != nil {
		return err
	}

	entries, err := ctx.Ranking.TopN(context.Background(), window, c.Limit)
	if err != nil {
		return err
	}

	return ctx.Render(entries, func(w io.Writer) {
		title := "Overall ranking"
		if window == models.WindowWeekly {
			win := ctx.Resolver.PeriodWindow(models.PeriodWeekly)
			title = fmt.Sprintf("Weekly ranking %s .. %s", win.From, win.To)
		}
		fmt.Fprintln(w, cli.HeaderStyle.Render(title))

		if len(entries) == 0 {
			fmt.Fprintln(w, "  Nobody has focused yet.")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(w, "  %3d. %-*s %s\n", e.Rank, constants.NicknameMaxLen+6, e.DisplayName,
				cli.ValueStyle.Render(cli.FormatDuration(e.TotalSeconds)))
		}
	})
}
