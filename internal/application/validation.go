package application

import (
	"strings"

	"github.com/example/room-booking/internal/scheduler"
)

// bookingWindow is a validated, normalized booking interval.
type bookingWindow struct {
	date     string
	start    string
	end      string
	interval scheduler.Interval
}

// resolveWindow validates a date and interval. Malformed clock strings surface as
// ErrInvalidTimeFormat; structural problems surface as a ValidationError.
func resolveWindow(date, start, end string) (bookingWindow, error) {
	vErr := &ValidationError{}

	date = strings.TrimSpace(date)
	if date == "" {
		vErr.add("booking_date", "booking_date is required")
	} else if _, err := scheduler.ParseDate(date); err != nil {
		vErr.add("booking_date", "booking_date must be YYYY-MM-DD")
	}
	if strings.TrimSpace(start) == "" {
		vErr.add("start_time", "start_time is required")
	}
	if strings.TrimSpace(end) == "" {
		vErr.add("end_time", "end_time is required")
	}
	if vErr.HasErrors() {
		return bookingWindow{}, vErr
	}

	interval, err := scheduler.ParseInterval(strings.TrimSpace(start), strings.TrimSpace(end))
	if err != nil {
		return bookingWindow{}, err
	}
	if interval.End <= interval.Start {
		vErr.add("end_time", "end_time must be after start_time")
		return bookingWindow{}, vErr
	}

	// Stored times carry minute precision.
	normStart, _ := scheduler.FormatMinutesToTime(interval.Start)
	normEnd, _ := scheduler.FormatMinutesToTime(interval.End)
	return bookingWindow{date: date, start: normStart, end: normEnd, interval: interval}, nil
}

func validateDate(date string) *ValidationError {
	vErr := &ValidationError{}
	if _, err := scheduler.ParseDate(strings.TrimSpace(date)); err != nil {
		vErr.add("booking_date", "booking_date must be YYYY-MM-DD")
	}
	return vErr
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
