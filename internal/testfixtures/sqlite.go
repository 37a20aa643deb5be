package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite database
// for integration-style tests.
type SQLiteHarness struct {
	Store    *sqlite.Store
	Rooms    persistence.RoomRepository
	Bookings persistence.BookingRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "roombooking.db")

	storage, err := sqlite.Open(sqlite.TempFileTestConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if _, err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:    storage,
		Rooms:    storage,
		Bookings: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedRoom inserts the room fixture.
func (h *SQLiteHarness) SeedRoom(tb testing.TB, room RoomFixture) RoomFixture {
	tb.Helper()
	if err := h.Rooms.CreateRoom(context.Background(), room.Persistence()); err != nil {
		tb.Fatalf("failed to seed room %s: %v", room.ID, err)
	}
	return room
}

// SeedBooking inserts the booking fixture.
func (h *SQLiteHarness) SeedBooking(tb testing.TB, booking BookingFixture) BookingFixture {
	tb.Helper()
	if err := h.Bookings.InsertBooking(context.Background(), booking.Persistence()); err != nil {
		tb.Fatalf("failed to seed booking %s: %v", booking.ID, err)
	}
	return booking
}
