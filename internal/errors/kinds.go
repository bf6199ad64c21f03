package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/julianstephens/focusbank/internal/constants"
)

// Kind classifies an outcome so callers can branch without matching messages.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindNotClosable
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotClosable:
		return "not-closable"
	case KindIntegrity:
		return "integrity"
	default:
		return "unexpected"
	}
}

// Error is a classified application error. Reason is an optional
// machine-readable code such as "already-open".
type Error struct {
	Kind   Kind
	Reason string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, and on reason when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrNotClosable = &Error{Kind: KindNotClosable}
	ErrIntegrity   = &Error{Kind: KindIntegrity}
	ErrUnexpected  = &Error{Kind: KindUnexpected}

	ErrAlreadyOpen   = &Error{Kind: KindConflict, Reason: constants.ReasonAlreadyOpen, Msg: "user already has an open session"}
	ErrUnknownUser   = &Error{Kind: KindConflict, Reason: constants.ReasonUnknownUser, Msg: "user is not registered"}
	ErrNicknameTaken = &Error{Kind: KindConflict, Reason: constants.ReasonNicknameTaken, Msg: "nickname is already in use"}
)

// Validation returns a validation error with a formatted message.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// ValidationReason is Validation with a machine-readable reason.
func ValidationReason(reason, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// NotClosable reports a stop that found nothing to close.
func NotClosable(sessionID int64) error {
	return &Error{
		Kind:   KindNotClosable,
		Reason: constants.ReasonSessionMissing,
		Msg:    fmt.Sprintf("session %d is not open", sessionID),
	}
}

// NoOpenSession reports a stop request for a user with nothing running.
func NoOpenSession(anonID string) error {
	return &Error{
		Kind:   KindNotClosable,
		Reason: constants.ReasonSessionMissing,
		Msg:    fmt.Sprintf("user %s has no open session", anonID),
	}
}

// Integrity wraps a store error caused by a referential precondition.
func Integrity(msg string, err error) error {
	return &Error{Kind: KindIntegrity, Msg: msg, Err: err}
}

// Wrap attaches a reason-bearing conflict to the error that caused it, so both
// the conflict and the cause stay reachable through errors.Is.
func Wrap(sentinel *Error, cause error) error {
	return &Error{Kind: sentinel.Kind, Reason: sentinel.Reason, Msg: sentinel.Msg, Err: cause}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// ReasonOf returns the reason of the first classified error in err's chain.
func ReasonOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Reason
	}
	return ""
}
