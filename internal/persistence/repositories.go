package persistence

import (
	"context"
	"time"
)

// RoomRepository exposes room configuration storage.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// BookingRepository exposes booking storage. Implementations must reject overlapping
// confirmed bookings for the same room and date with ErrConflict.
type BookingRepository interface {
	InsertBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBookingFields(ctx context.Context, id string, patch BookingPatch) (Booking, error)
	ListConfirmedBookings(ctx context.Context, roomID, bookingDate, excludeID string) ([]Booking, error)
	ListPastConfirmedBookingIDs(ctx context.Context, today, clock string) ([]string, error)
	MarkCompleted(ctx context.Context, ids []string, at time.Time) (int, error)
	ListUnremindedConfirmed(ctx context.Context, bookingDate string) ([]Booking, error)
	MarkReminded(ctx context.Context, id string, at time.Time) (bool, error)
}

// Store is the full set of operations a backing database provides.
type Store interface {
	RoomRepository
	BookingRepository
	Ping(ctx context.Context) error
	Close() error
}
