package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

var (
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC)

// ReferenceDate is the booking date fixtures default to. It is the calendar day
// of ReferenceTime.
const ReferenceDate = "2026-03-02"

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic bookable room.
type RoomFixture struct {
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

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns an active 08:00-18:00 room with 30 minute slots.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:                  id,
		Name:                fmt.Sprintf("Room %03d", idx),
		Location:            "Main Office",
		Capacity:            int(4 + idx%4),
		OperatingHoursStart: "08:00:00",
		OperatingHoursEnd:   "18:00:00",
		SlotDurationMinutes: 30,
		Status:              string(application.RoomStatusActive),
		CreatedAt:           created,
		UpdatedAt:           created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithOperatingHours sets the daily operating window and slot length.
func WithOperatingHours(start, end string, slotMinutes int) RoomOption {
	return func(f *RoomFixture) {
		f.OperatingHoursStart = start
		f.OperatingHoursEnd = end
		f.SlotDurationMinutes = slotMinutes
	}
}

// WithRoomInactive marks the room as not accepting bookings.
func WithRoomInactive() RoomOption {
	return func(f *RoomFixture) {
		f.Status = string(application.RoomStatusInactive)
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:                  f.ID,
		Name:                f.Name,
		Location:            f.Location,
		Capacity:            f.Capacity,
		OperatingHoursStart: f.OperatingHoursStart,
		OperatingHoursEnd:   f.OperatingHoursEnd,
		SlotDurationMinutes: f.SlotDurationMinutes,
		Status:              application.RoomStatus(f.Status),
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:                  f.ID,
		Name:                f.Name,
		Location:            f.Location,
		Capacity:            f.Capacity,
		OperatingHoursStart: f.OperatingHoursStart,
		OperatingHoursEnd:   f.OperatingHoursEnd,
		SlotDurationMinutes: f.SlotDurationMinutes,
		Status:              f.Status,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:                f.Name,
		Location:            f.Location,
		Capacity:            f.Capacity,
		OperatingHoursStart: f.OperatingHoursStart,
		OperatingHoursEnd:   f.OperatingHoursEnd,
		SlotDurationMinutes: f.SlotDurationMinutes,
		Status:              application.RoomStatus(f.Status),
	}
}

// ---------------------------- Booking fixtures ---------------------------

// BookingFixture represents a deterministic booking.
type BookingFixture struct {
	ID          string
	RoomID      string
	UserID      string
	BookingDate string
	StartTime   string
	EndTime     string
	Status      string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a confirmed 09:00-10:00 booking on ReferenceDate.
func NewBookingFixture(roomID string, opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:          fmt.Sprintf("booking-%03d", idx),
		RoomID:      roomID,
		UserID:      "user-001",
		BookingDate: ReferenceDate,
		StartTime:   "09:00:00",
		EndTime:     "10:00:00",
		Status:      string(application.BookingStatusConfirmed),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingWindow sets the date and HH:MM:SS interval.
func WithBookingWindow(date, start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.BookingDate = date
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingUser sets the owning user.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingStatus sets the lifecycle status.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(f *BookingFixture) {
		f.Status = string(status)
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:          f.ID,
		RoomID:      f.RoomID,
		UserID:      f.UserID,
		BookingDate: f.BookingDate,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Status:      application.BookingStatus(f.Status),
		Notes:       copyStringPtr(f.Notes),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:          f.ID,
		RoomID:      f.RoomID,
		UserID:      f.UserID,
		BookingDate: f.BookingDate,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Status:      f.Status,
		Notes:       copyStringPtr(f.Notes),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// CreateParams returns the parameters that would create this booking as principal.
func (f BookingFixture) CreateParams() application.CreateBookingParams {
	return application.CreateBookingParams{
		Principal:   application.Principal{UserID: f.UserID},
		RoomID:      f.RoomID,
		BookingDate: f.BookingDate,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Notes:       copyStringPtr(f.Notes),
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}
