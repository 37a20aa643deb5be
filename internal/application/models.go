package application

import (
	"time"

	"github.com/example/room-booking/internal/scheduler"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// RoomStatus reports whether a room accepts bookings.
type RoomStatus string

const (
	RoomStatusActive   RoomStatus = "active"
	RoomStatusInactive RoomStatus = "inactive"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name                string
	Location            string
	Capacity            int
	OperatingHoursStart string
	OperatingHoursEnd   string
	SlotDurationMinutes int
	Status              RoomStatus
}

// Room is a bookable room with its daily operating window.
type Room struct {
	ID                  string
	Name                string
	Location            string
	Capacity            int
	OperatingHoursStart string
	OperatingHoursEnd   string
	SlotDurationMinutes int
	Status              RoomStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// Booking is a reservation of a room for an interval on a calendar date.
// BookingDate is a YYYY-MM-DD key and is never converted between timezones.
type Booking struct {
	ID                 string
	RoomID             string
	UserID             string
	BookingDate        string
	StartTime          string
	EndTime            string
	Status             BookingStatus
	Notes              *string
	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string
	ReminderSentAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BookingPatch lists the fields to change on a booking. Nil fields are left untouched.
// ExpectStatus, when set, makes the write conditional on the stored status.
type BookingPatch struct {
	RoomID             *string
	BookingDate        *string
	StartTime          *string
	EndTime            *string
	Notes              *string
	Status             *BookingStatus
	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string
	UpdatedAt          time.Time
	ExpectStatus       BookingStatus
}

// RoomAvailability is the slot grid of one room for one date.
type RoomAvailability struct {
	RoomID      string
	BookingDate string
	Slots       []scheduler.TimeSlot
}

// CheckAvailabilityParams identifies a candidate interval. ExcludeBookingID lets an
// edit ignore the booking being moved.
type CheckAvailabilityParams struct {
	RoomID           string
	BookingDate      string
	StartTime        string
	EndTime          string
	ExcludeBookingID string
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal   Principal
	RoomID      string
	BookingDate string
	StartTime   string
	EndTime     string
	Notes       *string
}

// UpdateBookingParams wraps a partial booking edit. Nil fields keep their value.
type UpdateBookingParams struct {
	Principal   Principal
	BookingID   string
	RoomID      *string
	BookingDate *string
	StartTime   *string
	EndTime     *string
	Notes       *string
}

// CancelBookingParams wraps the data required to cancel a booking.
type CancelBookingParams struct {
	Principal Principal
	BookingID string
	Reason    *string
}

// ListBookingsParams selects the confirmed bookings of a room on a date.
type ListBookingsParams struct {
	RoomID      string
	BookingDate string
}

// NotificationType names the booking lifecycle event being announced.
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingReminder  NotificationType = "booking_reminder"
	NotificationBookingUpdated   NotificationType = "booking_updated"
)

// Notification is the outbound event emitted after a booking change commits.
type Notification struct {
	BookingID   string
	Type        NotificationType
	RoomID      string
	UserID      string
	BookingDate string
	StartTime   string
	EndTime     string
	OccurredAt  time.Time
}

func notificationFor(b Booking, kind NotificationType, at time.Time) Notification {
	return Notification{
		BookingID:   b.ID,
		Type:        kind,
		RoomID:      b.RoomID,
		UserID:      b.UserID,
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		OccurredAt:  at,
	}
}
