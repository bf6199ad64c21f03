package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

const sessionColumns = `session_id, anon_id, started_at, ended_at, duration_sec, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (models.FocusSession, error) {
	var sess models.FocusSession
	var endedAt sql.NullTime
	var duration sql.NullInt64

	if err := row.Scan(&sess.ID, &sess.AnonID, &sess.StartedAt, &endedAt, &duration, &sess.CreatedAt); err != nil {
		return models.FocusSession{}, err
	}
	sess.StartedAt = sess.StartedAt.UTC()
	sess.CreatedAt = sess.CreatedAt.UTC()
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		sess.EndedAt = &t
	}
	if duration.Valid {
		d := duration.Int64
		sess.DurationSec = &d
	}
	return sess, nil
}

func (s *Store) FindOpenSession(ctx context.Context, anonID string) (*models.FocusSession, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM focus_sessions
		WHERE anon_id = $1 AND ended_at IS NULL
	`, anonID)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return &sess, nil
}

func (s *Store) OpenSession(ctx context.Context, anonID string, startedAt time.Time) (models.FocusSession, error) {
	ts := utc(startedAt)
	row := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO focus_sessions (anon_id, started_at, created_at)
		VALUES ($1, $2, $3)
		RETURNING `+sessionColumns, anonID, ts, ts)

	sess, err := scanSession(row)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return models.FocusSession{}, apperrors.Wrap(apperrors.ErrAlreadyOpen, err)
		case pgForeignKeyViolation:
			return models.FocusSession{}, apperrors.Integrity("failed to open session", err)
		}
		return models.FocusSession{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) CloseSession(ctx context.Context, sessionID int64, endedAt time.Time) (models.FocusSession, bool, error) {
	// The ended_at guard makes the close a compare-and-set: a racing closer
	// re-evaluates it after the row lock is released and updates nothing.
	row := s.conn(ctx).QueryRowContext(ctx, `
		UPDATE focus_sessions
		SET ended_at = $2,
		    duration_sec = GREATEST(0, FLOOR(EXTRACT(EPOCH FROM ($2::timestamptz - started_at))))::bigint
		WHERE session_id = $1 AND ended_at IS NULL
		RETURNING `+sessionColumns, sessionID, utc(endedAt))

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FocusSession{}, false, nil
	}
	if err != nil {
		return models.FocusSession{}, false, fmt.Errorf("failed to close session: %w", err)
	}
	return sess, true, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID int64) (*models.FocusSession, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM focus_sessions
		WHERE session_id = $1
	`, sessionID)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

func (s *Store) SessionsStartedBetween(ctx context.Context, anonID string, from, to time.Time) ([]models.FocusSession, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM focus_sessions
		WHERE anon_id = $1 AND started_at >= $2 AND started_at < $3
		ORDER BY started_at ASC, session_id ASC
	`, anonID, utc(from), utc(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.FocusSession{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}
