package constants

import "time"

const (
	AppName            = "focusbank"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/focusbank/focusbank.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is how instants are persisted in text columns. Values are
	// always UTC and truncated to whole seconds so they sort lexically.
	TimestampFormat = time.RFC3339

	// DefaultTimezone anchors every calendar boundary (day, ISO week, month).
	DefaultTimezone = "Asia/Seoul"

	// Environment overrides for the global flags
	EnvDB       = "FOCUSBANK_DB"
	EnvTimezone = "FOCUSBANK_TZ"
	EnvDebug    = "FOCUSBANK_DEBUG"
)
