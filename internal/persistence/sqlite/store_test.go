package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/persistence"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(TempFileTestConfig(filepath.Join(t.TempDir(), "booking.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	version, err := store.Migrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), version)
	return store
}

func testRoom(id, name string) persistence.Room {
	return persistence.Room{
		ID:                  id,
		Name:                name,
		Location:            "2F",
		Capacity:            8,
		OperatingHoursStart: "08:00:00",
		OperatingHoursEnd:   "18:00:00",
		SlotDurationMinutes: 30,
		Status:              "active",
		CreatedAt:           baseTime,
		UpdatedAt:           baseTime,
	}
}

func testBooking(id, roomID, date, start, end string) persistence.Booking {
	return persistence.Booking{
		ID:          id,
		RoomID:      roomID,
		UserID:      "alice",
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Status:      "confirmed",
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig("data/booking.db").Validate())
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{DSN: "x.db", JournalMode: "SIDEWAYS"}.Validate())
	assert.Error(t, Config{DSN: "x.db", Synchronous: "SOMETIMES"}.Validate())
	assert.Error(t, Config{DSN: "x.db", BusyTimeout: -time.Second}.Validate())
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	version, err := store.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	require.NoError(t, store.Ping(context.Background()))
}

func TestRoomRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.CreateRoom(ctx, testRoom("room-b", "Beta")))
	require.NoError(t, store.CreateRoom(ctx, testRoom("room-a", "Alpha")))

	got, err := store.GetRoom(ctx, "room-b")
	require.NoError(t, err)
	assert.Equal(t, "Beta", got.Name)
	assert.Equal(t, "2F", got.Location)
	assert.Equal(t, 30, got.SlotDurationMinutes)
	assert.True(t, got.CreatedAt.Equal(baseTime))

	t.Run("duplicate name", func(t *testing.T) {
		err := store.CreateRoom(ctx, testRoom("room-c", "Beta"))
		require.ErrorIs(t, err, persistence.ErrDuplicate)
	})

	t.Run("check constraint", func(t *testing.T) {
		room := testRoom("room-d", "Delta")
		room.SlotDurationMinutes = 0
		require.ErrorIs(t, store.CreateRoom(ctx, room), persistence.ErrConstraintViolation)
	})

	t.Run("update", func(t *testing.T) {
		room := testRoom("room-b", "Beta")
		room.Status = "inactive"
		room.UpdatedAt = baseTime.Add(time.Hour)
		require.NoError(t, store.UpdateRoom(ctx, room))

		got, err := store.GetRoom(ctx, "room-b")
		require.NoError(t, err)
		assert.Equal(t, "inactive", got.Status)
		assert.True(t, got.UpdatedAt.Equal(baseTime.Add(time.Hour)))
	})

	t.Run("missing", func(t *testing.T) {
		require.ErrorIs(t, store.UpdateRoom(ctx, testRoom("ghost", "Ghost")), persistence.ErrNotFound)
		_, err := store.GetRoom(ctx, "ghost")
		require.ErrorIs(t, err, persistence.ErrNotFound)
	})

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "room-a", rooms[0].ID)
}

func TestOverlapTriggers(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.CreateRoom(ctx, testRoom("room-1", "One")))
	require.NoError(t, store.CreateRoom(ctx, testRoom("room-2", "Two")))

	require.NoError(t, store.InsertBooking(ctx, testBooking("b1", "room-1", "2026-03-12", "09:00:00", "10:00:00")))

	t.Run("overlapping insert is rejected", func(t *testing.T) {
		err := store.InsertBooking(ctx, testBooking("b2", "room-1", "2026-03-12", "09:30:00", "10:30:00"))
		require.ErrorIs(t, err, persistence.ErrConflict)
	})

	t.Run("back to back is accepted", func(t *testing.T) {
		require.NoError(t, store.InsertBooking(ctx, testBooking("b3", "room-1", "2026-03-12", "10:00:00", "11:00:00")))
		require.NoError(t, store.InsertBooking(ctx, testBooking("b4", "room-1", "2026-03-12", "08:00:00", "09:00:00")))
	})

	t.Run("other rooms and dates are independent", func(t *testing.T) {
		require.NoError(t, store.InsertBooking(ctx, testBooking("b5", "room-2", "2026-03-12", "09:00:00", "10:00:00")))
		require.NoError(t, store.InsertBooking(ctx, testBooking("b6", "room-1", "2026-03-13", "09:00:00", "10:00:00")))
	})

	t.Run("cancelled rows do not block", func(t *testing.T) {
		cancelled := "cancelled"
		_, err := store.UpdateBookingFields(ctx, "b5", persistence.BookingPatch{Status: &cancelled, UpdatedAt: baseTime, ExpectStatus: "confirmed"})
		require.NoError(t, err)
		require.NoError(t, store.InsertBooking(ctx, testBooking("b7", "room-2", "2026-03-12", "09:15:00", "09:45:00")))
	})

	t.Run("moving onto another booking is rejected", func(t *testing.T) {
		start, end := "09:30:00", "10:30:00"
		_, err := store.UpdateBookingFields(ctx, "b3", persistence.BookingPatch{StartTime: &start, EndTime: &end, UpdatedAt: baseTime})
		require.ErrorIs(t, err, persistence.ErrConflict)

		unchanged, err := store.GetBooking(ctx, "b3")
		require.NoError(t, err)
		assert.Equal(t, "10:00:00", unchanged.StartTime)
	})

	t.Run("unknown room violates foreign key", func(t *testing.T) {
		err := store.InsertBooking(ctx, testBooking("b8", "ghost", "2026-03-12", "12:00:00", "13:00:00"))
		require.ErrorIs(t, err, persistence.ErrNotFound)
	})

	confirmed, err := store.ListConfirmedBookings(ctx, "room-1", "2026-03-12", "b1")
	require.NoError(t, err)
	var ids []string
	for _, b := range confirmed {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"b4", "b3"}, ids)
}

func TestUpdateBookingFields(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.CreateRoom(ctx, testRoom("room-1", "One")))
	notes := "projector"
	b := testBooking("b1", "room-1", "2026-03-12", "09:00:00", "10:00:00")
	b.Notes = &notes
	require.NoError(t, store.InsertBooking(ctx, b))

	cancelled := "cancelled"
	at := baseTime.Add(2 * time.Hour)
	by := "alice"
	reason := "moved"
	updated, err := store.UpdateBookingFields(ctx, "b1", persistence.BookingPatch{
		Status:             &cancelled,
		CancelledAt:        &at,
		CancelledBy:        &by,
		CancellationReason: &reason,
		UpdatedAt:          at,
		ExpectStatus:       "confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", updated.Status)
	require.NotNil(t, updated.CancelledAt)
	assert.True(t, updated.CancelledAt.Equal(at))
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "projector", *updated.Notes)

	_, err = store.UpdateBookingFields(ctx, "b1", persistence.BookingPatch{
		Status: &cancelled, UpdatedAt: at.Add(time.Hour), ExpectStatus: "confirmed",
	})
	require.ErrorIs(t, err, persistence.ErrStaleState)

	again, err := store.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.Equal(at), "stale update must not touch the row")

	_, err = store.UpdateBookingFields(ctx, "ghost", persistence.BookingPatch{UpdatedAt: at})
	require.ErrorIs(t, err, persistence.ErrNotFound)

	empty := ""
	cleared, err := store.UpdateBookingFields(ctx, "b1", persistence.BookingPatch{Notes: &empty, UpdatedAt: at})
	require.NoError(t, err)
	assert.Nil(t, cleared.Notes)
}

func TestCompletionSweep(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.CreateRoom(ctx, testRoom("room-1", "One")))
	require.NoError(t, store.InsertBooking(ctx, testBooking("past-day", "room-1", "2026-03-09", "09:00:00", "10:00:00")))
	require.NoError(t, store.InsertBooking(ctx, testBooking("past-today", "room-1", "2026-03-10", "09:00:00", "10:00:00")))
	require.NoError(t, store.InsertBooking(ctx, testBooking("ends-now", "room-1", "2026-03-10", "11:00:00", "12:00:00")))
	require.NoError(t, store.InsertBooking(ctx, testBooking("future", "room-1", "2026-03-11", "09:00:00", "10:00:00")))

	ids, err := store.ListPastConfirmedBookingIDs(ctx, "2026-03-10", "12:00:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"past-day", "past-today"}, ids)

	n, err := store.MarkCompleted(ctx, append(ids, "future-missing"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.MarkCompleted(ctx, ids, baseTime)
	require.NoError(t, err)
	assert.Zero(t, n)

	done, err := store.GetBooking(ctx, "past-day")
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
}

func TestReminderClaim(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.CreateRoom(ctx, testRoom("room-1", "One")))
	require.NoError(t, store.InsertBooking(ctx, testBooking("b1", "room-1", "2026-03-10", "13:00:00", "14:00:00")))
	require.NoError(t, store.InsertBooking(ctx, testBooking("b2", "room-1", "2026-03-10", "15:00:00", "16:00:00")))

	pending, err := store.ListUnremindedConfirmed(ctx, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	claimed, err := store.MarkReminded(ctx, "b1", baseTime)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkReminded(ctx, "b1", baseTime)
	require.NoError(t, err)
	assert.False(t, claimed)

	pending, err = store.ListUnremindedConfirmed(ctx, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b2", pending[0].ID)
}

func TestDSNWithPragmas(t *testing.T) {
	dsn := dsnWithPragmas(Config{DSN: "/tmp/x.db", BusyTimeout: 2 * time.Second, JournalMode: "wal"})
	assert.Contains(t, dsn, "/tmp/x.db?")
	assert.Contains(t, dsn, "busy_timeout%282000%29")
	assert.Contains(t, dsn, "foreign_keys%281%29")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")

	withQuery := dsnWithPragmas(Config{DSN: "file:x.db?cache=shared"})
	assert.Contains(t, withQuery, "cache=shared&_pragma=")
}
