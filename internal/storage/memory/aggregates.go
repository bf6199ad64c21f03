package memory

import (
	"context"
	"sort"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

func (s *Store) IncrementDaily(ctx context.Context, anonID, date string, seconds int64) error {
	defer s.lock(ctx)()
	if _, ok := s.st.users[anonID]; !ok {
		return apperrors.Integrity("failed to increment aggregate", errMissingUser(anonID))
	}
	s.st.daily[dayKey{anonID: anonID, date: date}] += seconds
	return nil
}

func (s *Store) SumRange(ctx context.Context, anonID, from, to string) (int64, error) {
	defer s.lock(ctx)()
	var total int64
	for k, v := range s.st.daily {
		if k.anonID == anonID && k.date >= from && k.date <= to {
			total += v
		}
	}
	return total, nil
}

func (s *Store) DailyRange(ctx context.Context, anonID, from, to string) ([]models.DailyAggregate, error) {
	defer s.lock(ctx)()
	return s.dailyRange(anonID, from, to), nil
}

func (s *Store) dailyRange(anonID, from, to string) []models.DailyAggregate {
	days := []models.DailyAggregate{}
	for k, v := range s.st.daily {
		if k.anonID == anonID && k.date >= from && k.date <= to {
			days = append(days, models.DailyAggregate{AnonID: anonID, Date: k.date, TotalSeconds: v})
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func (s *Store) BucketRange(ctx context.Context, anonID, from, to string, g models.Granularity) ([]models.PeriodAggregate, error) {
	defer s.lock(ctx)()
	buckets, err := storage.Bucket(s.dailyRange(anonID, from, to), g)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []models.PeriodAggregate{}
	}
	return buckets, nil
}

func (s *Store) TopTotals(ctx context.Context, q models.RankingQuery) ([]models.RankingRow, error) {
	defer s.lock(ctx)()

	totals := make(map[string]int64)
	for k, v := range s.st.daily {
		if q.From != "" && k.date < q.From {
			continue
		}
		if q.To != "" && k.date > q.To {
			continue
		}
		totals[k.anonID] += v
	}

	rows := []models.RankingRow{}
	for anonID, total := range totals {
		row := models.RankingRow{AnonID: anonID, TotalSeconds: total}
		if u, ok := s.st.users[anonID]; ok {
			p := copyProfile(u)
			row.Nickname = p.Nickname
			row.NicknameTag = p.NicknameTag
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSeconds != rows[j].TotalSeconds {
			return rows[i].TotalSeconds > rows[j].TotalSeconds
		}
		return rows[i].AnonID < rows[j].AnonID
	})
	if q.Limit >= 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}
