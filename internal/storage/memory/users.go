package memory

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
)

func (s *Store) EnsureUser(ctx context.Context, anonID string, now time.Time) (bool, error) {
	defer s.lock(ctx)()
	if _, ok := s.st.users[anonID]; ok {
		return false, nil
	}
	ts := stamp(now)
	s.st.users[anonID] = models.Profile{AnonID: anonID, CreatedAt: ts, UpdatedAt: ts}
	return true, nil
}

func (s *Store) GetUser(ctx context.Context, anonID string) (*models.Profile, error) {
	defer s.lock(ctx)()
	u, ok := s.st.users[anonID]
	if !ok {
		return nil, nil
	}
	p := copyProfile(u)
	return &p, nil
}

func (s *Store) FindUserByNickname(ctx context.Context, nickname string) (*models.Profile, error) {
	defer s.lock(ctx)()
	for _, u := range s.st.users {
		if u.Nickname != nil && *u.Nickname == nickname {
			p := copyProfile(u)
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) SetNickname(ctx context.Context, anonID, nickname, tag string, now time.Time) error {
	defer s.lock(ctx)()

	u, ok := s.st.users[anonID]
	if !ok {
		return apperrors.ErrUnknownUser
	}
	for id, other := range s.st.users {
		if id != anonID && other.Nickname != nil && *other.Nickname == nickname {
			return apperrors.ErrNicknameTaken
		}
	}

	u = copyProfile(u)
	u.Nickname = &nickname
	if u.NicknameTag == nil {
		u.NicknameTag = &tag
	}
	u.UpdatedAt = stamp(now)
	s.st.users[anonID] = u
	return nil
}
