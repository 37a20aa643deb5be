package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// BookingStore captures the persistence operations the booking core depends on.
type BookingStore interface {
	GetRoomByID(ctx context.Context, id string) (Room, error)
	ListConfirmedBookings(ctx context.Context, roomID, bookingDate, excludeID string) ([]Booking, error)
	InsertBooking(ctx context.Context, booking Booking) (Booking, error)
	UpdateBookingFields(ctx context.Context, id string, patch BookingPatch) (Booking, error)
	MarkCompleted(ctx context.Context, ids []string, at time.Time) (int, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListPastConfirmedBookingIDs(ctx context.Context, today, clock string) ([]string, error)
	ListUnremindedConfirmed(ctx context.Context, bookingDate string) ([]Booking, error)
	MarkReminded(ctx context.Context, id string, at time.Time) (bool, error)
}

// RoomLocker serializes availability check and write for a room. The returned
// release function must be called exactly once.
type RoomLocker interface {
	Lock(ctx context.Context, roomID string) (release func(), err error)
}

// Notifier delivers booking events. Delivery is best effort and happens after commit.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }

// mapStoreError translates persistence failures into application sentinels. notFound
// selects the sentinel reported for a missing record.
func mapStoreError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if isApplicationError(err) {
		return err
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return notFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrSlotConflict
	case errors.Is(err, persistence.ErrStaleState):
		return ErrInvalidTransition
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func isApplicationError(err error) bool {
	for _, sentinel := range []error{
		ErrUnauthorized, ErrRoomNotFound, ErrBookingNotFound, ErrRoomInactive,
		ErrSlotConflict, ErrInvalidTransition, ErrAlreadyExists, ErrStoreUnavailable,
		ErrInvalidTimeFormat,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
