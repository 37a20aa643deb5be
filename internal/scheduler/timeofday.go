package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// MinutesPerDay bounds every minute offset handled by the package.
const MinutesPerDay = 24 * 60

// DateLayout is the calendar date format shared with the store and API clients.
const DateLayout = "2006-01-02"

// ErrInvalidTimeFormat is returned when a wall-clock string is not HH:MM or HH:MM:SS
// or one of its components is out of range.
var ErrInvalidTimeFormat = errors.New("scheduler: invalid time format")

// ErrInvalidDateFormat is returned when a calendar date is not YYYY-MM-DD.
var ErrInvalidDateFormat = errors.New("scheduler: invalid date format")

// ParseTimeToMinutes converts an HH:MM or HH:MM:SS string into minutes since midnight.
// Seconds are validated but otherwise ignored.
func ParseTimeToMinutes(value string) (int, error) {
	h, m, _, err := splitClock(value)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// FormatMinutesToTime renders minutes since midnight as HH:MM:00.
func FormatMinutesToTime(minutes int) (string, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d minutes is outside a day", ErrInvalidTimeFormat, minutes)
	}
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60), nil
}

// NormalizeTime canonicalises an accepted wall-clock string to HH:MM:SS.
func NormalizeTime(value string) (string, error) {
	h, m, s, err := splitClock(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}

// ParseDate validates a YYYY-MM-DD date key.
func ParseDate(value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}
	return day, nil
}

func splitClock(value string) (hours, minutes, seconds int, err error) {
	switch len(value) {
	case 5:
		if value[2] != ':' {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
		}
	case 8:
		if value[2] != ':' || value[5] != ':' {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
		}
	default:
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	var ok bool
	if hours, ok = twoDigits(value[0:2]); !ok || hours > 23 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	if minutes, ok = twoDigits(value[3:5]); !ok || minutes > 59 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	if len(value) == 8 {
		if seconds, ok = twoDigits(value[6:8]); !ok || seconds > 59 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
		}
	}
	return hours, minutes, seconds, nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
