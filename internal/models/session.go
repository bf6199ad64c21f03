package models

import "time"

// SessionState is the lifecycle state of a focus session.
type SessionState string

const (
	SessionOpen   SessionState = "OPEN"
	SessionClosed SessionState = "CLOSED"
)

// FocusSession is one timed work interval. EndedAt and DurationSec stay nil
// until the session is closed, after which the record never changes.
type FocusSession struct {
	ID          int64      `json:"session_id"`
	AnonID      string     `json:"anon_id"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	DurationSec *int64     `json:"duration_sec,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsOpen reports whether the session is still awaiting its end time.
func (s *FocusSession) IsOpen() bool {
	return s.EndedAt == nil
}

func (s *FocusSession) State() SessionState {
	if s.IsOpen() {
		return SessionOpen
	}
	return SessionClosed
}

// Seconds returns the recorded duration, or 0 for an open session.
func (s *FocusSession) Seconds() int64 {
	if s.DurationSec == nil {
		return 0
	}
	return *s.DurationSec
}

// Elapsed returns how long the session has been running at now. Closed
// sessions report their fixed duration.
func (s *FocusSession) Elapsed(now time.Time) time.Duration {
	if !s.IsOpen() {
		return time.Duration(s.Seconds()) * time.Second
	}
	if now.Before(s.StartedAt) {
		return 0
	}
	return now.Sub(s.StartedAt)
}
