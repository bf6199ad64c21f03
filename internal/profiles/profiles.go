// Package profiles registers anonymous identities and manages the optional
// public nickname shown on leaderboards.
package profiles

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/focusbank/internal/calendar"
	"github.com/julianstephens/focusbank/internal/constants"
	apperrors "github.com/julianstephens/focusbank/internal/errors"
	"github.com/julianstephens/focusbank/internal/logger"
	"github.com/julianstephens/focusbank/internal/models"
	"github.com/julianstephens/focusbank/internal/storage"
)

var nicknameRe = regexp.MustCompile(constants.NicknamePattern)

type Store interface {
	storage.Transactor
	storage.UserStore
}

type Engine struct {
	store    Store
	resolver *calendar.Resolver
	tag      func() string
}

func New(store Store, resolver *calendar.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver, tag: RandomTag}
}

// WithTagGenerator replaces the nickname tag source.
func (e *Engine) WithTagGenerator(fn func() string) *Engine {
	e.tag = fn
	return e
}

// NewAnonID mints a fresh anonymous identifier.
func NewAnonID() string {
	return uuid.NewString()
}

// RandomTag returns a zero-padded tag in 0001..9999.
func RandomTag() string {
	return fmt.Sprintf("%04d", rand.Intn(constants.NicknameTagMax)+1)
}

// ValidNickname reports whether a trimmed nickname satisfies the length and
// character rules.
func ValidNickname(nickname string) bool {
	return nicknameRe.MatchString(nickname)
}

func (e *Engine) now() time.Time {
	return e.resolver.Now().Truncate(time.Second)
}

// RegisterUser creates the identity if it does not exist yet. Registering an
// existing user is not an error; created reports which case happened.
func (e *Engine) RegisterUser(ctx context.Context, anonID string) (*models.Profile, bool, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return nil, false, apperrors.Validation("user id is required")
	}

	var profile *models.Profile
	var created bool
	err := e.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if created, err = e.store.EnsureUser(ctx, anonID, e.now()); err != nil {
			return err
		}
		profile, err = e.store.GetUser(ctx, anonID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		logger.Info("User registered", "anon_id", anonID)
	}
	return profile, created, nil
}

func (e *Engine) GetProfile(ctx context.Context, anonID string) (*models.Profile, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	return e.store.GetUser(ctx, anonID)
}

// CheckNickname reports whether nickname could be claimed right now.
func (e *Engine) CheckNickname(ctx context.Context, nickname string) (models.NicknameCheck, error) {
	nickname = strings.TrimSpace(nickname)
	check := models.NicknameCheck{Nickname: nickname}

	if !ValidNickname(nickname) {
		check.Reason = constants.ReasonInvalidFormat
		return check, nil
	}

	owner, err := e.store.FindUserByNickname(ctx, nickname)
	if err != nil {
		return models.NicknameCheck{}, err
	}
	if owner != nil {
		check.Reason = constants.ReasonDuplicate
		return check, nil
	}

	check.Available = true
	return check, nil
}

// SetNickname claims nickname for the user, registering the user if needed.
// The first nickname assigns a random tag that later renames keep.
func (e *Engine) SetNickname(ctx context.Context, anonID, nickname string) (*models.Profile, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	nickname = strings.TrimSpace(nickname)
	if !ValidNickname(nickname) {
		return nil, apperrors.ValidationReason(constants.ReasonInvalidFormat,
			"invalid nickname %q (%d-%d letters, digits, Hangul or underscore)",
			nickname, constants.NicknameMinLen, constants.NicknameMaxLen)
	}

	var profile *models.Profile
	err := e.store.WithinTx(ctx, func(ctx context.Context) error {
		now := e.now()
		if _, err := e.store.EnsureUser(ctx, anonID, now); err != nil {
			return err
		}

		owner, err := e.store.FindUserByNickname(ctx, nickname)
		if err != nil {
			return err
		}
		if owner != nil && owner.AnonID != anonID {
			return apperrors.ErrNicknameTaken
		}
		if owner == nil {
			if err := e.store.SetNickname(ctx, anonID, nickname, e.tag(), now); err != nil {
				return err
			}
		}

		profile, err = e.store.GetUser(ctx, anonID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Nickname set", "anon_id", anonID, "handle", profile.Handle())
	return profile, nil
}
