package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-booking/internal/scheduler"
)

// AvailabilityService computes the slot grid of a room for a date. Results are always
// derived from the store on request.
type AvailabilityService struct {
	store  BookingStore
	logger *slog.Logger
}

// NewAvailabilityService constructs an availability service backed by the store.
func NewAvailabilityService(store BookingStore, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, logger: defaultLogger(logger)}
}

// GetRoomAvailability returns every slot of the room's operating window on the date,
// marking the ones that overlap a confirmed booking as unavailable.
func (s *AvailabilityService) GetRoomAvailability(ctx context.Context, roomID, bookingDate string) (availability RoomAvailability, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("AvailabilityService is not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AvailabilityService", "GetRoomAvailability",
		"room_id", roomID,
		"booking_date", bookingDate,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "availability lookup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "availability computed", "slot_count", len(availability.Slots))
	}()

	bookingDate = strings.TrimSpace(bookingDate)
	if vErr := validateDate(bookingDate); vErr.HasErrors() {
		err = vErr
		return
	}

	var room Room
	room, err = s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		err = mapStoreError(err, ErrRoomNotFound)
		return
	}
	if room.Status != RoomStatusActive {
		err = ErrRoomInactive
		return
	}

	var bookings []Booking
	bookings, err = s.store.ListConfirmedBookings(ctx, room.ID, bookingDate, "")
	if err != nil {
		err = mapStoreError(err, ErrRoomNotFound)
		return
	}

	var busy []scheduler.Interval
	busy, err = bookingIntervals(bookings)
	if err != nil {
		return
	}

	var slots []scheduler.TimeSlot
	slots, err = scheduler.GenerateSlots(room.OperatingHoursStart, room.OperatingHoursEnd, room.SlotDurationMinutes, busy)
	if err != nil {
		err = fmt.Errorf("room %s operating hours: %w", room.ID, err)
		return
	}

	availability = RoomAvailability{
		RoomID:      room.ID,
		BookingDate: bookingDate,
		Slots:       slots,
	}
	return
}

func bookingIntervals(bookings []Booking) ([]scheduler.Interval, error) {
	out := make([]scheduler.Interval, 0, len(bookings))
	for _, b := range bookings {
		interval, err := scheduler.ParseInterval(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		out = append(out, interval)
	}
	return out, nil
}
