package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_GetRoomAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("marks booked slots", func(t *testing.T) {
		store := newMemoryStore(activeRoom("room-1", "09:00:00", "17:00:00", 60))
		store.put(Booking{ID: "b1", RoomID: "room-1", BookingDate: "2026-03-12",
			StartTime: "10:30:00", EndTime: "11:30:00", Status: BookingStatusConfirmed})
		store.put(Booking{ID: "b2", RoomID: "room-1", BookingDate: "2026-03-12",
			StartTime: "14:00:00", EndTime: "15:00:00", Status: BookingStatusCancelled})
		store.put(Booking{ID: "b3", RoomID: "room-1", BookingDate: "2026-03-13",
			StartTime: "09:00:00", EndTime: "17:00:00", Status: BookingStatusConfirmed})

		svc := NewAvailabilityService(store, nil)
		got, err := svc.GetRoomAvailability(ctx, "room-1", "2026-03-12")
		require.NoError(t, err)
		assert.Equal(t, "room-1", got.RoomID)
		assert.Equal(t, "2026-03-12", got.BookingDate)
		require.Len(t, got.Slots, 8)

		var unavailable []string
		for _, slot := range got.Slots {
			if !slot.IsAvailable {
				unavailable = append(unavailable, slot.StartTime)
			}
		}
		assert.Equal(t, []string{"10:00:00", "11:00:00"}, unavailable)
	})

	t.Run("partial trailing slot is dropped", func(t *testing.T) {
		store := newMemoryStore(activeRoom("room-1", "09:00", "10:30", 60))
		got, err := NewAvailabilityService(store, nil).GetRoomAvailability(ctx, "room-1", "2026-03-12")
		require.NoError(t, err)
		require.Len(t, got.Slots, 1)
		assert.Equal(t, "10:00:00", got.Slots[0].EndTime)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := NewAvailabilityService(newMemoryStore(), nil).GetRoomAvailability(ctx, "ghost", "2026-03-12")
		require.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("inactive room", func(t *testing.T) {
		room := activeRoom("room-1", "09:00", "17:00", 60)
		room.Status = RoomStatusInactive
		_, err := NewAvailabilityService(newMemoryStore(room), nil).GetRoomAvailability(ctx, "room-1", "2026-03-12")
		require.ErrorIs(t, err, ErrRoomInactive)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		store := newMemoryStore(activeRoom("room-1", "09:00", "17:00", 60))
		_, err := NewAvailabilityService(store, nil).GetRoomAvailability(ctx, "room-1", "2026-3-12")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("store outage", func(t *testing.T) {
		store := newMemoryStore(activeRoom("room-1", "09:00", "17:00", 60))
		store.getRoomErr = errors.New("too many connections")
		_, err := NewAvailabilityService(store, nil).GetRoomAvailability(ctx, "room-1", "2026-03-12")
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}
