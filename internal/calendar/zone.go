package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/julianstephens/focusbank/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" it returns the system's local timezone, and an
// empty name selects the default zone.
func LoadLocation(timezone string) (*time.Location, error) {
	switch timezone {
	case "":
		timezone = constants.DefaultTimezone
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ISOWeekLabel formats the ISO week containing t as "YYYY-Www".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthLabel formats the month containing t as "YYYY-MM".
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}
