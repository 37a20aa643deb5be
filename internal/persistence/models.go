package persistence

import "time"

// Room is a bookable room configuration row.
type Room struct {
	ID                  string
	Name                string
	Location            string
	Capacity            int
	OperatingHoursStart string
	OperatingHoursEnd   string
	SlotDurationMinutes int
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Booking is a reservation row. Dates are YYYY-MM-DD and times HH:MM:SS.
type Booking struct {
	ID                 string
	RoomID             string
	UserID             string
	BookingDate        string
	StartTime          string
	EndTime            string
	Status             string
	Notes              *string
	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string
	ReminderSentAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BookingPatch lists the columns to change on a booking. Nil fields are left untouched.
// When ExpectStatus is set the update only applies while the row still has that status.
type BookingPatch struct {
	RoomID             *string
	BookingDate        *string
	StartTime          *string
	EndTime            *string
	Notes              *string
	Status             *string
	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string
	UpdatedAt          time.Time
	ExpectStatus       string
}
