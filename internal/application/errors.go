package application

import (
	"errors"

	"github.com/example/room-booking/internal/scheduler"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("application: room not found")
	// ErrBookingNotFound is returned when the referenced booking does not exist.
	ErrBookingNotFound = errors.New("application: booking not found")
	// ErrRoomInactive is returned when a booking targets a room that is not active.
	ErrRoomInactive = errors.New("application: room inactive")
	// ErrSlotConflict is returned when the requested interval overlaps a confirmed booking.
	ErrSlotConflict = errors.New("application: slot conflict")
	// ErrInvalidTransition is returned when a booking is not in a state that allows the change.
	ErrInvalidTransition = errors.New("application: invalid booking state transition")
	// ErrAlreadyExists is returned when a room with the same identity already exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrStoreUnavailable is returned when the backing store call itself failed.
	// Callers may retry it, unlike ErrSlotConflict.
	ErrStoreUnavailable = errors.New("application: store unavailable")
	// ErrInvalidTimeFormat aliases the scheduler sentinel so callers need one import.
	ErrInvalidTimeFormat = scheduler.ErrInvalidTimeFormat
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
