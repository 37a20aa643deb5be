package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
)

// memoryStore is an in-memory BookingStore that enforces the same overlap rule as the
// SQL stores.
type memoryStore struct {
	mu       sync.Mutex
	rooms    map[string]Room
	bookings map[string]Booking

	getRoomErr error
	listErr    error
	insertErr  error
	updateErr  error
	sweepErr   error

	updates int
}

func newMemoryStore(rooms ...Room) *memoryStore {
	s := &memoryStore{rooms: map[string]Room{}, bookings: map[string]Booking{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memoryStore) put(b Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *memoryStore) booking(id string) Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memoryStore) GetRoomByID(ctx context.Context, id string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getRoomErr != nil {
		return Room{}, s.getRoomErr
	}
	room, ok := s.rooms[id]
	if !ok {
		return Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (s *memoryStore) ListConfirmedBookings(ctx context.Context, roomID, bookingDate, excludeID string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.confirmedLocked(roomID, bookingDate, excludeID), nil
}

func (s *memoryStore) confirmedLocked(roomID, bookingDate, excludeID string) []Booking {
	var out []Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.BookingDate == bookingDate && b.Status == BookingStatusConfirmed && b.ID != excludeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func (s *memoryStore) overlapsLocked(b Booking) bool {
	candidate, _ := scheduler.ParseInterval(b.StartTime, b.EndTime)
	for _, other := range s.confirmedLocked(b.RoomID, b.BookingDate, b.ID) {
		iv, _ := scheduler.ParseInterval(other.StartTime, other.EndTime)
		if candidate.Overlaps(iv) {
			return true
		}
	}
	return false
}

func (s *memoryStore) InsertBooking(ctx context.Context, b Booking) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return Booking{}, s.insertErr
	}
	if _, ok := s.bookings[b.ID]; ok {
		return Booking{}, persistence.ErrDuplicate
	}
	if b.Status == BookingStatusConfirmed && s.overlapsLocked(b) {
		return Booking{}, persistence.ErrConflict
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *memoryStore) UpdateBookingFields(ctx context.Context, id string, patch BookingPatch) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return Booking{}, s.updateErr
	}
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	if patch.ExpectStatus != "" && b.Status != patch.ExpectStatus {
		return Booking{}, persistence.ErrStaleState
	}
	if patch.RoomID != nil {
		b.RoomID = *patch.RoomID
	}
	if patch.BookingDate != nil {
		b.BookingDate = *patch.BookingDate
	}
	if patch.StartTime != nil {
		b.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		b.EndTime = *patch.EndTime
	}
	if patch.Notes != nil {
		notes := *patch.Notes
		b.Notes = &notes
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if patch.CancelledAt != nil {
		at := *patch.CancelledAt
		b.CancelledAt = &at
	}
	if patch.CancelledBy != nil {
		by := *patch.CancelledBy
		b.CancelledBy = &by
	}
	if patch.CancellationReason != nil {
		reason := *patch.CancellationReason
		b.CancellationReason = &reason
	}
	b.UpdatedAt = patch.UpdatedAt
	if b.Status == BookingStatusConfirmed && s.overlapsLocked(b) {
		return Booking{}, persistence.ErrConflict
	}
	s.bookings[id] = b
	s.updates++
	return b, nil
}

func (s *memoryStore) MarkCompleted(ctx context.Context, ids []string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweepErr != nil {
		return 0, s.sweepErr
	}
	n := 0
	for _, id := range ids {
		b, ok := s.bookings[id]
		if !ok || b.Status != BookingStatusConfirmed {
			continue
		}
		b.Status = BookingStatusCompleted
		b.UpdatedAt = at
		s.bookings[id] = b
		n++
	}
	return n, nil
}

func (s *memoryStore) GetBooking(ctx context.Context, id string) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, persistence.ErrNotFound
	}
	return b, nil
}

func (s *memoryStore) ListPastConfirmedBookingIDs(ctx context.Context, today, clock string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweepErr != nil {
		return nil, s.sweepErr
	}
	var ids []string
	for _, b := range s.bookings {
		if b.Status != BookingStatusConfirmed {
			continue
		}
		if b.BookingDate < today || (b.BookingDate == today && b.EndTime < clock) {
			ids = append(ids, b.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memoryStore) ListUnremindedConfirmed(ctx context.Context, bookingDate string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.Status == BookingStatusConfirmed && b.BookingDate == bookingDate && b.ReminderSentAt == nil {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *memoryStore) MarkReminded(ctx context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.ReminderSentAt != nil {
		return false, nil
	}
	b.ReminderSentAt = &at
	s.bookings[id] = b
	return true, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *recordingNotifier) types() []NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationType, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Type
	}
	return out
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	released []string
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, roomID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, roomID)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released = append(l.released, roomID)
	}, nil
}

func activeRoom(id, start, end string, slot int) Room {
	return Room{
		ID:                  id,
		Name:                "Room " + id,
		OperatingHoursStart: start,
		OperatingHoursEnd:   end,
		SlotDurationMinutes: slot,
		Status:              RoomStatusActive,
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + strconv.Itoa(n)
	}
}
