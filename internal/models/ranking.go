package models

// RankingQuery selects users' summed totals over an inclusive date range.
// Empty From and To mean all time.
type RankingQuery struct {
	From  string
	To    string
	Limit int
}

// RankingRow is what the store returns, ordered by TotalSeconds descending
// then AnonID ascending.
type RankingRow struct {
	AnonID       string
	Nickname     *string
	NicknameTag  *string
	TotalSeconds int64
}

// RankingEntry is a leaderboard line.
type RankingEntry struct {
	Rank         int    `json:"rank"`
	AnonID       string `json:"anon_id"`
	DisplayName  string `json:"display_name"`
	TotalSeconds int64  `json:"total_seconds"`
}
