package sqlite

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
	var startedAtStr, createdAtStr string
	var endedAtStr sql.NullString
	var duration sql.NullInt64

	if err := row.Scan(&sess.ID, &sess.AnonID, &startedAtStr, &endedAtStr, &duration, &createdAtStr); err != nil {
		return models.FocusSession{}, err
	}

	var err error
	if sess.StartedAt, err = parseTime(startedAtStr); err != nil {
		return models.FocusSession{}, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if sess.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return models.FocusSession{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if endedAtStr.Valid {
		endedAt, err := parseTime(endedAtStr.String)
		if err != nil {
			return models.FocusSession{}, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		sess.EndedAt = &endedAt
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
		WHERE anon_id = ? AND ended_at IS NULL
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
	ts := formatTime(startedAt)

	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO focus_sessions (anon_id, started_at, created_at)
		VALUES (?, ?, ?)
	`, anonID, ts, ts)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return models.FocusSession{}, apperrors.Wrap(apperrors.ErrAlreadyOpen, err)
		case isForeignKeyViolation(err):
			return models.FocusSession{}, apperrors.Integrity("failed to open session", err)
		}
		return models.FocusSession{}, fmt.Errorf("failed to insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.FocusSession{}, fmt.Errorf("failed to read session id: %w", err)
	}

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return models.FocusSession{}, err
	}
	if sess == nil {
		return models.FocusSession{}, fmt.Errorf("session %d vanished after insert", id)
	}
	return *sess, nil
}

func (s *Store) CloseSession(ctx context.Context, sessionID int64, endedAt time.Time) (models.FocusSession, bool, error) {
	q := s.conn(ctx)

	var startedAtStr string
	err := q.QueryRowContext(ctx, `
		SELECT started_at FROM focus_sessions
		WHERE session_id = ? AND ended_at IS NULL
	`, sessionID).Scan(&startedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FocusSession{}, false, nil
	}
	if err != nil {
		return models.FocusSession{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	startedAt, err := parseTime(startedAtStr)
	if err != nil {
		return models.FocusSession{}, false, fmt.Errorf("failed to parse started_at: %w", err)
	}

	endedAt = endedAt.UTC().Truncate(time.Second)
	duration := int64(endedAt.Sub(startedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}

	// The ended_at guard makes the close a compare-and-set: of two racing
	// closers only one sees a row affected.
	res, err := q.ExecContext(ctx, `
		UPDATE focus_sessions
		SET ended_at = ?, duration_sec = ?
		WHERE session_id = ? AND ended_at IS NULL
	`, formatTime(endedAt), duration, sessionID)
	if err != nil {
		return models.FocusSession{}, false, fmt.Errorf("failed to close session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.FocusSession{}, false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return models.FocusSession{}, false, nil
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return models.FocusSession{}, false, err
	}
	if sess == nil {
		return models.FocusSession{}, false, fmt.Errorf("session %d vanished after close", sessionID)
	}
	return *sess, true, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID int64) (*models.FocusSession, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM focus_sessions
		WHERE session_id = ?
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
		WHERE anon_id = ? AND started_at >= ? AND started_at < ?
		ORDER BY started_at ASC, session_id ASC
	`, anonID, formatTime(from), formatTime(to))
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
