package constants

// Machine-readable reasons attached to conflict and validation outcomes.
const (
	ReasonAlreadyOpen    = "already-open"
	ReasonUnknownUser    = "unknown-user"
	ReasonNicknameTaken  = "nickname-taken"
	ReasonInvalidFormat  = "invalid-format"
	ReasonDuplicate      = "duplicate"
	ReasonSessionMissing = "not-closable"
)
