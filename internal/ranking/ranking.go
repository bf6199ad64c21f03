// Package ranking builds leaderboards of summed focus time.
package ranking

import (
	"context"
	"strings"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

type Engine struct {
	store    storage.RankingStore
	resolver *calendar.Resolver
}

func New(store storage.RankingStore, resolver *calendar.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

// ParseWindow accepts "weekly" or "overall" in any case.
func ParseWindow(s string) (models.RankingWindow, error) {
	return models.ParseRankingWindow(s)
}

// ClampLimit bounds a requested leaderboard size to [1, 100].
func ClampLimit(limit int) int {
	switch {
	case limit < constants.MinRankingLimit:
		return constants.MinRankingLimit
	case limit > constants.MaxRankingLimit:
		return constants.MaxRankingLimit
	}
	return limit
}

// DisplayName is "nickname#tag" when both are set, otherwise a mask built
// from the last characters of the identifier.
func DisplayName(anonID string, nickname, tag *string) string {
	if nickname != nil && tag != nil && *nickname != "" && *tag != "" {
		return *nickname + "#" + *tag
	}
	runes := []rune(anonID)
	if len(runes) < constants.AnonSuffixLen {
		return constants.AnonPlaceholder
	}
	return constants.AnonPrefix + strings.ToUpper(string(runes[len(runes)-constants.AnonSuffixLen:]))
}

// TopN ranks users by total focus seconds over the window. Equal totals are
// ordered by identifier and still get distinct consecutive ranks.
func (e *Engine) TopN(ctx context.Context, window models.RankingWindow, limit int) ([]models.RankingEntry, error) {
	q := models.RankingQuery{Limit: ClampLimit(limit)}
	if window == models.WindowWeekly {
		w := e.resolver.PeriodWindow(models.PeriodWeekly)
		q.From, q.To = w.From, w.To
	}

	rows, err := e.store.TopTotals(ctx, q)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RankingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, models.RankingEntry{
			Rank:         i + 1,
			AnonID:       row.AnonID,
			DisplayName:  DisplayName(row.AnonID, row.Nickname, row.NicknameTag),
			TotalSeconds: row.TotalSeconds,
		})
	}
	return entries, nil
}
