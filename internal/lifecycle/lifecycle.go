// Package lifecycle opens and closes focus sessions. A session moves from
// OPEN to CLOSED exactly once, and every close credits its duration to the
// daily aggregate of the date the session ended on, in the same transaction.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/focusbank/internal/calendar"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/logger"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

// Store is the slice of storage.Provider the engine needs.
type Store interface {
	storage.Transactor
	storage.SessionStore
	storage.AggregateStore
}

type Engine struct {
	store    Store
	resolver *calendar.Resolver
}

func New(store Store, resolver *calendar.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

func (e *Engine) now() time.Time {
	return e.resolver.Now().Truncate(time.Second)
}

func requireUser(anonID string) (string, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return "", apperrors.Validation("user id is required")
	}
	return anonID, nil
}

// StartFocus opens a new session for the user. It fails with ErrAlreadyOpen
// when the user has an open session and with ErrUnknownUser when the user
// was never registered.
func (e *Engine) StartFocus(ctx context.Context, anonID string) (models.FocusSession, error) {
	anonID, err := requireUser(anonID)
	if err != nil {
		return models.FocusSession{}, err
	}

	var sess models.FocusSession
	err = e.store.WithinTx(ctx, func(ctx context.Context) error {
		open, err := e.store.FindOpenSession(ctx, anonID)
		if err != nil {
			return err
		}
		if open != nil {
			return apperrors.ErrAlreadyOpen
		}

		sess, err = e.store.OpenSession(ctx, anonID, e.now())
		if errors.Is(err, apperrors.ErrIntegrity) {
			return apperrors.Wrap(apperrors.ErrUnknownUser, err)
		}
		return err
	})
	log := logger.With("anon_id", anonID)
	if err != nil {
		log.Debug("Start rejected", "error", err)
		return models.FocusSession{}, err
	}

	log.Info("Session opened", "session_id", sess.ID)
	return sess, nil
}

// EndFocus closes an open session and credits its duration to the closing
// date. A stop on a closed or unknown session returns a NotClosable error
// and changes nothing.
func (e *Engine) EndFocus(ctx context.Context, sessionID int64) (models.FocusSession, error) {
	var sess models.FocusSession
	var date string

	err := e.store.WithinTx(ctx, func(ctx context.Context) error {
		closedSess, closed, err := e.store.CloseSession(ctx, sessionID, e.now())
		if err != nil {
			return err
		}
		if !closed {
			return apperrors.NotClosable(sessionID)
		}

		// Sessions that cross midnight count entirely toward the day they end.
		date = e.resolver.DateOf(*closedSess.EndedAt)
		if err := e.store.IncrementDaily(ctx, closedSess.AnonID, date, closedSess.Seconds()); err != nil {
			return err
		}
		sess = closedSess
		return nil
	})
	log := logger.With("session_id", sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotClosable) {
			log.Debug("Stop found nothing to close")
		} else {
			log.Error("Failed to close session", "error", err)
		}
		return models.FocusSession{}, err
	}

	log.Info("Session closed", "anon_id", sess.AnonID, "date", date, "seconds", sess.Seconds())
	return sess, nil
}

// CurrentSession returns the user's open session, or nil.
func (e *Engine) CurrentSession(ctx context.Context, anonID string) (*models.FocusSession, error) {
	anonID, err := requireUser(anonID)
	if err != nil {
		return nil, err
	}
	return e.store.FindOpenSession(ctx, anonID)
}

// GetSession returns the session with the given id, or nil.
func (e *Engine) GetSession(ctx context.Context, sessionID int64) (*models.FocusSession, error) {
	return e.store.GetSession(ctx, sessionID)
}

// ListSessions returns the sessions the user started on date, oldest first.
func (e *Engine) ListSessions(ctx context.Context, anonID, date string) ([]models.FocusSession, error) {
	anonID, err := requireUser(anonID)
	if err != nil {
		return nil, err
	}
	start, end, err := e.resolver.DayBounds(date)
	if err != nil {
		return nil, err
	}
	return e.store.SessionsStartedBetween(ctx, anonID, start, end)
}
