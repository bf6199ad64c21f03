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

func (s *Store) EnsureUser(ctx context.Context, anonID string, now time.Time) (bool, error) {
	ts := utc(now)
	res, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO anonymous_users (anon_id, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (anon_id) DO NOTHING
	`, anonID, ts, ts)
	if err != nil {
		return false, fmt.Errorf("failed to register user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n == 1, nil
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	var nickname, tag sql.NullString
	if err := row.Scan(&p.AnonID, &nickname, &tag, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Profile{}, err
	}
	if nickname.Valid {
		p.Nickname = &nickname.String
	}
	if tag.Valid {
		p.NicknameTag = &tag.String
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (s *Store) getProfile(ctx context.Context, where string, arg string) (*models.Profile, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT anon_id, nickname, nickname_tag, created_at, updated_at
		FROM anonymous_users
		WHERE `+where+` = $1
	`, arg)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &p, nil
}

func (s *Store) GetUser(ctx context.Context, anonID string) (*models.Profile, error) {
	return s.getProfile(ctx, "anon_id", anonID)
}

func (s *Store) FindUserByNickname(ctx context.Context, nickname string) (*models.Profile, error) {
	return s.getProfile(ctx, "nickname", nickname)
}

func (s *Store) SetNickname(ctx context.Context, anonID, nickname, tag string, now time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE anonymous_users
		SET nickname = $1, nickname_tag = COALESCE(nickname_tag, $2), updated_at = $3
		WHERE anon_id = $4
	`, nickname, tag, utc(now), anonID)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return apperrors.Wrap(apperrors.ErrNicknameTaken, err)
		}
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUnknownUser
	}
	return nil
}
