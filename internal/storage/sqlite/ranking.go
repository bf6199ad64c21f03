package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/focusbank/internal/models"
)

func (s *Store) TopTotals(ctx context.Context, q models.RankingQuery) ([]models.RankingRow, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT a.anon_id, u.nickname, u.nickname_tag, SUM(a.total_seconds) AS total
		FROM daily_aggregates a
		LEFT JOIN anonymous_users u ON u.anon_id = a.anon_id
		WHERE (? = '' OR a.target_date >= ?)
		  AND (? = '' OR a.target_date <= ?)
		GROUP BY a.anon_id, u.nickname, u.nickname_tag
		ORDER BY total DESC, a.anon_id ASC
		LIMIT ?
	`, q.From, q.From, q.To, q.To, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	result := []models.RankingRow{}
	for rows.Next() {
		var r models.RankingRow
		var nickname, tag sql.NullString
		if err := rows.Scan(&r.AnonID, &nickname, &tag, &r.TotalSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		if nickname.Valid {
			r.Nickname = &nickname.String
		}
		if tag.Valid {
			r.NicknameTag = &tag.String
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ranking: %w", err)
	}
	return result, nil
}
