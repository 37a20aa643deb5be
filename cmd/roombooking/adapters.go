package main

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

// bookingStoreAdapter exposes a persistence.Store as the booking core's store.
type bookingStoreAdapter struct {
	store persistence.Store
}

func newBookingStoreAdapter(store persistence.Store) *bookingStoreAdapter {
	return &bookingStoreAdapter{store: store}
}

func (a *bookingStoreAdapter) GetRoomByID(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.store.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *bookingStoreAdapter) ListConfirmedBookings(ctx context.Context, roomID, bookingDate, excludeID string) ([]application.Booking, error) {
	models, err := a.store.ListConfirmedBookings(ctx, roomID, bookingDate, excludeID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *bookingStoreAdapter) InsertBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	written := toPersistenceBooking(booking)
	if err := a.store.InsertBooking(ctx, written); err != nil {
		return application.Booking{}, err
	}
	// The row is committed at this point. A failed read-back must not report the
	// booking as failed, so fall back to what was written.
	stored, err := a.store.GetBooking(ctx, booking.ID)
	if err != nil {
		return toApplicationBooking(written), nil
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingStoreAdapter) UpdateBookingFields(ctx context.Context, id string, patch application.BookingPatch) (application.Booking, error) {
	stored, err := a.store.UpdateBookingFields(ctx, id, toPersistencePatch(patch))
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingStoreAdapter) MarkCompleted(ctx context.Context, ids []string, at time.Time) (int, error) {
	return a.store.MarkCompleted(ctx, ids, at)
}

func (a *bookingStoreAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.store.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingStoreAdapter) ListPastConfirmedBookingIDs(ctx context.Context, today, clock string) ([]string, error) {
	return a.store.ListPastConfirmedBookingIDs(ctx, today, clock)
}

func (a *bookingStoreAdapter) ListUnremindedConfirmed(ctx context.Context, bookingDate string) ([]application.Booking, error) {
	models, err := a.store.ListUnremindedConfirmed(ctx, bookingDate)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *bookingStoreAdapter) MarkReminded(ctx context.Context, id string, at time.Time) (bool, error) {
	return a.store.MarkReminded(ctx, id, at)
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:                  room.ID,
		Name:                room.Name,
		Location:            room.Location,
		Capacity:            room.Capacity,
		OperatingHoursStart: room.OperatingHoursStart,
		OperatingHoursEnd:   room.OperatingHoursEnd,
		SlotDurationMinutes: room.SlotDurationMinutes,
		Status:              string(room.Status),
		CreatedAt:           room.CreatedAt,
		UpdatedAt:           room.UpdatedAt,
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:                  room.ID,
		Name:                room.Name,
		Location:            room.Location,
		Capacity:            room.Capacity,
		OperatingHoursStart: room.OperatingHoursStart,
		OperatingHoursEnd:   room.OperatingHoursEnd,
		SlotDurationMinutes: room.SlotDurationMinutes,
		Status:              application.RoomStatus(room.Status),
		CreatedAt:           room.CreatedAt,
		UpdatedAt:           room.UpdatedAt,
	}
}

func toPersistenceBooking(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:                 b.ID,
		RoomID:             b.RoomID,
		UserID:             b.UserID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		Notes:              b.Notes,
		CancelledAt:        b.CancelledAt,
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,
		ReminderSentAt:     b.ReminderSentAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toApplicationBooking(b persistence.Booking) application.Booking {
	return application.Booking{
		ID:                 b.ID,
		RoomID:             b.RoomID,
		UserID:             b.UserID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             application.BookingStatus(b.Status),
		Notes:              b.Notes,
		CancelledAt:        b.CancelledAt,
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,
		ReminderSentAt:     b.ReminderSentAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toApplicationBookings(models []persistence.Booking) []application.Booking {
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings
}

func toPersistencePatch(p application.BookingPatch) persistence.BookingPatch {
	patch := persistence.BookingPatch{
		RoomID:             p.RoomID,
		BookingDate:        p.BookingDate,
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		Notes:              p.Notes,
		CancelledAt:        p.CancelledAt,
		CancelledBy:        p.CancelledBy,
		CancellationReason: p.CancellationReason,
		UpdatedAt:          p.UpdatedAt,
		ExpectStatus:       string(p.ExpectStatus),
	}
	if p.Status != nil {
		status := string(*p.Status)
		patch.Status = &status
	}
	return patch
}
