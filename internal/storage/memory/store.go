// Package memory is an in-process storage.Provider guarded by a single mutex.
// It enforces the same constraints as the SQL backends and backs the engine
// tests and the ":memory:" database setting.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

// DSN is the database setting that selects the in-memory backend.
const DSN = ":memory:"

var _ storage.Provider = (*Store)(nil)

type dayKey struct {
	anonID string
	date   string
}

type goalKey struct {
	anonID        string
	period        models.PeriodType
	effectiveFrom string
}

type state struct {
	nextID   int64
	users    map[string]models.Profile
	sessions map[int64]models.FocusSession
	daily    map[dayKey]int64
	goals    map[goalKey]models.Goal
}

func newState() state {
	return state{
		nextID:   1,
		users:    make(map[string]models.Profile),
		sessions: make(map[int64]models.FocusSession),
		daily:    make(map[dayKey]int64),
		goals:    make(map[goalKey]models.Goal),
	}
}

// clone copies the maps. Stored structs are replaced rather than mutated in
// place, so sharing their pointer fields is safe.
func (st state) clone() state {
	c := state{
		nextID:   st.nextID,
		users:    make(map[string]models.Profile, len(st.users)),
		sessions: make(map[int64]models.FocusSession, len(st.sessions)),
		daily:    make(map[dayKey]int64, len(st.daily)),
		goals:    make(map[goalKey]models.Goal, len(st.goals)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.sessions {
		c.sessions[k] = v
	}
	for k, v := range st.daily {
		c.daily[k] = v
	}
	for k, v := range st.goals {
		c.goals[k] = v
	}
	return c
}

type Store struct {
	mu sync.Mutex
	st state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Init() error { return nil }

func (s *Store) Load() error { return nil }

func (s *Store) Close() error { return nil }

// GetConfigPath returns the DSN that selects this backend.
func (s *Store) GetConfigPath() string { return DSN }

type txKey struct{}

// lock takes the store mutex unless ctx already runs inside this store's
// transaction, which holds it.
func (s *Store) lock(ctx context.Context) func() {
	if owner, ok := ctx.Value(txKey{}).(*Store); ok && owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx serializes fn against every other store call and restores the
// previous state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(txKey{}).(*Store); ok && owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func errMissingUser(anonID string) error {
	return fmt.Errorf("user %q does not exist", anonID)
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func copySession(sess models.FocusSession) models.FocusSession {
	if sess.EndedAt != nil {
		t := *sess.EndedAt
		sess.EndedAt = &t
	}
	if sess.DurationSec != nil {
		d := *sess.DurationSec
		sess.DurationSec = &d
	}
	return sess
}

func copyProfile(p models.Profile) models.Profile {
	if p.Nickname != nil {
		n := *p.Nickname
		p.Nickname = &n
	}
	if p.NicknameTag != nil {
		t := *p.NicknameTag
		p.NicknameTag = &t
	}
	return p
}

func (s *Store) FindOpenSession(ctx context.Context, anonID string) (*models.FocusSession, error) {
	defer s.lock(ctx)()
	for _, sess := range s.st.sessions {
		if sess.AnonID == anonID && sess.IsOpen() {
			c := copySession(sess)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) OpenSession(ctx context.Context, anonID string, startedAt time.Time) (models.FocusSession, error) {
	defer s.lock(ctx)()

	if _, ok := s.st.users[anonID]; !ok {
		return models.FocusSession{}, apperrors.Integrity("failed to open session", errMissingUser(anonID))
	}
	for _, sess := range s.st.sessions {
		if sess.AnonID == anonID && sess.IsOpen() {
			return models.FocusSession{}, apperrors.ErrAlreadyOpen
		}
	}

	ts := stamp(startedAt)
	sess := models.FocusSession{
		ID:        s.st.nextID,
		AnonID:    anonID,
		StartedAt: ts,
		CreatedAt: ts,
	}
	s.st.nextID++
	s.st.sessions[sess.ID] = sess
	return copySession(sess), nil
}

func (s *Store) CloseSession(ctx context.Context, sessionID int64, endedAt time.Time) (models.FocusSession, bool, error) {
	defer s.lock(ctx)()

	sess, ok := s.st.sessions[sessionID]
	if !ok || !sess.IsOpen() {
		return models.FocusSession{}, false, nil
	}

	end := stamp(endedAt)
	duration := int64(end.Sub(sess.StartedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	sess.EndedAt = &end
	sess.DurationSec = &duration
	s.st.sessions[sessionID] = sess
	return copySession(sess), true, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID int64) (*models.FocusSession, error) {
	defer s.lock(ctx)()
	sess, ok := s.st.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	c := copySession(sess)
	return &c, nil
}

func (s *Store) SessionsStartedBetween(ctx context.Context, anonID string, from, to time.Time) ([]models.FocusSession, error) {
	defer s.lock(ctx)()

	sessions := []models.FocusSession{}
	for _, sess := range s.st.sessions {
		if sess.AnonID != anonID || sess.StartedAt.Before(from) || !sess.StartedAt.Before(to) {
			continue
		}
		sessions = append(sessions, copySession(sess))
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.Before(sessions[j].StartedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}
