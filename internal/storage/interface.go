package storage

import (
	"context"
	"time"

	"github.com/julianstephens/focusbank/internal/models"
)

// Transactor runs fn as one failure-atomic unit of work. Store calls made
// with the ctx passed to fn join the transaction; nested calls reuse it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type SessionStore interface {
	// FindOpenSession returns the user's open session, or nil.
	FindOpenSession(ctx context.Context, anonID string) (*models.FocusSession, error)
	// OpenSession inserts an open session. It fails with ErrAlreadyOpen when
	// the user already has one and with ErrIntegrity when the user is unknown.
	OpenSession(ctx context.Context, anonID string, startedAt time.Time) (models.FocusSession, error)
	// CloseSession sets ended_at and the duration only if the session is
	// still open. closed is false when nothing was updated.
	CloseSession(ctx context.Context, sessionID int64, endedAt time.Time) (session models.FocusSession, closed bool, err error)
	GetSession(ctx context.Context, sessionID int64) (*models.FocusSession, error)
	// SessionsStartedBetween lists sessions with from <= started_at < to,
	// ascending by start time.
	SessionsStartedBetween(ctx context.Context, anonID string, from, to time.Time) ([]models.FocusSession, error)
}

type AggregateStore interface {
	// IncrementDaily adds seconds to the (user, date) total, creating it if absent.
	IncrementDaily(ctx context.Context, anonID, date string, seconds int64) error
	// SumRange totals the inclusive date range; 0 when there are no rows.
	SumRange(ctx context.Context, anonID, from, to string) (int64, error)
	// DailyRange lists the non-empty days of the inclusive range in date order.
	DailyRange(ctx context.Context, anonID, from, to string) ([]models.DailyAggregate, error)
	// BucketRange groups the inclusive range by ISO week or calendar month.
	// Only buckets with at least one aggregate row are returned.
	BucketRange(ctx context.Context, anonID, from, to string, g models.Granularity) ([]models.PeriodAggregate, error)
}

type GoalStore interface {
	// UpsertGoal inserts or overwrites the target for (user, period, effective_from).
	UpsertGoal(ctx context.Context, goal models.Goal) error
	// ActiveGoal returns the goal with the latest effective_from <= today, or nil.
	ActiveGoal(ctx context.Context, anonID string, period models.PeriodType, today string) (*models.Goal, error)
	ListGoals(ctx context.Context, anonID string) ([]models.Goal, error)
}

type UserStore interface {
	// EnsureUser registers the identity if it is new. created reports whether
	// a row was inserted.
	EnsureUser(ctx context.Context, anonID string, now time.Time) (created bool, err error)
	GetUser(ctx context.Context, anonID string) (*models.Profile, error)
	FindUserByNickname(ctx context.Context, nickname string) (*models.Profile, error)
	// SetNickname stores the nickname and assigns tag only if the user has none
	// yet. It fails with ErrNicknameTaken when another user owns the nickname.
	SetNickname(ctx context.Context, anonID, nickname, tag string, now time.Time) error
}

type RankingStore interface {
	// TopTotals sums daily totals per user over the query window, ordered by
	// total descending then anon id ascending, capped at q.Limit.
	TopTotals(ctx context.Context, q models.RankingQuery) ([]models.RankingRow, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Transactor
	SessionStore
	AggregateStore
	GoalStore
	UserStore
	RankingStore

	// Utils
	GetConfigPath() string
}
