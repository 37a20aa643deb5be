package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/scheduler"
)

// BookingServiceDeps collects the collaborators of a BookingService. Store is required;
// the remaining fields fall back to in-process defaults.
type BookingServiceDeps struct {
	Store       BookingStore
	Locker      RoomLocker
	Notifier    Notifier
	IDGenerator func() string
	Now         func() time.Time
	// Location is the timezone booking dates and times are expressed in.
	Location *time.Location
	Logger   *slog.Logger
}

// BookingService performs conflict-checked booking mutations.
type BookingService struct {
	store       BookingStore
	locker      RoomLocker
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	logger      *slog.Logger
}

// NewBookingService constructs a booking service from its dependencies.
func NewBookingService(deps BookingServiceDeps) *BookingService {
	svc := &BookingService{
		store:       deps.Store,
		locker:      deps.Locker,
		notifier:    deps.Notifier,
		idGenerator: deps.IDGenerator,
		now:         deps.Now,
		location:    deps.Location,
		logger:      defaultLogger(deps.Logger),
	}
	if svc.locker == nil {
		svc.locker = noopLocker{}
	}
	if svc.notifier == nil {
		svc.notifier = noopNotifier{}
	}
	if svc.idGenerator == nil {
		svc.idGenerator = func() string { return "" }
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.location == nil {
		svc.location = time.UTC
	}
	return svc
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) ready() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("BookingService is not configured")
	}
	return nil
}

// CheckAvailability reports whether the interval is free of confirmed bookings for
// the room and date, ignoring ExcludeBookingID.
func (s *BookingService) CheckAvailability(ctx context.Context, params CheckAvailabilityParams) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	window, err := resolveWindow(params.BookingDate, params.StartTime, params.EndTime)
	if err != nil {
		return false, err
	}
	return s.windowAvailable(ctx, params.RoomID, window, params.ExcludeBookingID)
}

func (s *BookingService) windowAvailable(ctx context.Context, roomID string, window bookingWindow, excludeID string) (bool, error) {
	bookings, err := s.store.ListConfirmedBookings(ctx, roomID, window.date, excludeID)
	if err != nil {
		return false, mapStoreError(err, ErrRoomNotFound)
	}
	busy, err := bookingIntervals(bookings)
	if err != nil {
		return false, err
	}
	return !scheduler.OverlapsAny(window.interval, busy), nil
}

// CreateBooking reserves an interval in an active room when no confirmed booking
// overlaps it.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
		"booking_date", params.BookingDate,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if strings.TrimSpace(params.Principal.UserID) == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	roomID := strings.TrimSpace(params.RoomID)
	if roomID == "" {
		vErr.add("room_id", "room_id is required")
	}
	window, windowErr := resolveWindow(params.BookingDate, params.StartTime, params.EndTime)
	if windowErr != nil {
		var other *ValidationError
		if !errors.As(windowErr, &other) {
			err = windowErr
			return
		}
		vErr.merge(other)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var release func()
	release, err = s.lockRooms(ctx, roomID)
	if err != nil {
		return
	}
	defer release()

	if err = s.requireActiveRoom(ctx, roomID); err != nil {
		return
	}

	var available bool
	available, err = s.windowAvailable(ctx, roomID, window, "")
	if err != nil {
		return
	}
	if !available {
		err = ErrSlotConflict
		return
	}

	now := s.now()
	candidate := Booking{
		ID:          s.idGenerator(),
		RoomID:      roomID,
		UserID:      params.Principal.UserID,
		BookingDate: window.date,
		StartTime:   window.start,
		EndTime:     window.end,
		Status:      BookingStatusConfirmed,
		Notes:       normalizeOptionalString(params.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	booking, err = s.store.InsertBooking(ctx, candidate)
	if err != nil {
		err = mapStoreError(err, ErrRoomNotFound)
		return
	}

	s.notify(ctx, logger, notificationFor(booking, NotificationBookingConfirmed, now))
	return
}

// UpdateBooking applies a partial edit to a confirmed booking. Changes to the room,
// date or interval are re-checked against other confirmed bookings.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (booking Booking, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	var existing Booking
	existing, err = s.loadMutable(ctx, params.Principal, params.BookingID)
	if err != nil {
		return
	}

	roomID := existing.RoomID
	if params.RoomID != nil {
		roomID = strings.TrimSpace(*params.RoomID)
		if roomID == "" {
			vErr := &ValidationError{}
			vErr.add("room_id", "room_id must not be empty")
			err = vErr
			return
		}
	}
	date := pick(params.BookingDate, existing.BookingDate)
	start := pick(params.StartTime, existing.StartTime)
	end := pick(params.EndTime, existing.EndTime)

	var window bookingWindow
	window, err = resolveWindow(date, start, end)
	if err != nil {
		return
	}

	patch := BookingPatch{ExpectStatus: BookingStatusConfirmed}
	moved := false
	if roomID != existing.RoomID {
		patch.RoomID = &roomID
		moved = true
	}
	if window.date != existing.BookingDate {
		patch.BookingDate = &window.date
		moved = true
	}
	if window.start != existing.StartTime {
		patch.StartTime = &window.start
		moved = true
	}
	if window.end != existing.EndTime {
		patch.EndTime = &window.end
		moved = true
	}
	if params.Notes != nil {
		notes := strings.TrimSpace(*params.Notes)
		patch.Notes = &notes
	}

	if !moved && patch.Notes == nil {
		booking = existing
		return
	}

	if moved {
		var release func()
		release, err = s.lockRooms(ctx, existing.RoomID, roomID)
		if err != nil {
			return
		}
		defer release()

		if err = s.requireActiveRoom(ctx, roomID); err != nil {
			return
		}

		var available bool
		available, err = s.windowAvailable(ctx, roomID, window, existing.ID)
		if err != nil {
			return
		}
		if !available {
			err = ErrSlotConflict
			return
		}
	}

	now := s.now()
	patch.UpdatedAt = now
	booking, err = s.store.UpdateBookingFields(ctx, existing.ID, patch)
	if err != nil {
		err = mapStoreError(err, ErrBookingNotFound)
		return
	}

	s.notify(ctx, logger, notificationFor(booking, NotificationBookingUpdated, now))
	return
}

// CancelBooking moves a confirmed booking to cancelled. Cancelled and completed
// bookings are terminal and report ErrInvalidTransition without being modified.
func (s *BookingService) CancelBooking(ctx context.Context, params CancelBookingParams) (booking Booking, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	var existing Booking
	existing, err = s.loadMutable(ctx, params.Principal, params.BookingID)
	if err != nil {
		return
	}

	now := s.now()
	cancelled := BookingStatusCancelled
	cancelledBy := params.Principal.UserID
	patch := BookingPatch{
		Status:             &cancelled,
		CancelledAt:        &now,
		CancelledBy:        &cancelledBy,
		CancellationReason: normalizeOptionalString(params.Reason),
		UpdatedAt:          now,
		ExpectStatus:       BookingStatusConfirmed,
	}

	booking, err = s.store.UpdateBookingFields(ctx, existing.ID, patch)
	if err != nil {
		err = mapStoreError(err, ErrBookingNotFound)
		return
	}

	s.notify(ctx, logger, notificationFor(booking, NotificationBookingCancelled, now))
	return
}

// GetBooking returns a booking by identifier.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (Booking, error) {
	if err := s.ready(); err != nil {
		return Booking{}, err
	}
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapStoreError(err, ErrBookingNotFound)
		s.loggerWith(ctx, "GetBooking", "booking_id", bookingID).
			WarnContext(ctx, "booking lookup failed", "error", err, "error_kind", ErrorKind(err))
		return Booking{}, err
	}
	return booking, nil
}

// ListBookings returns the confirmed bookings of a room on a date ordered by start time.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) (bookings []Booking, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListBookings",
		"room_id", params.RoomID,
		"booking_date", params.BookingDate,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	date := strings.TrimSpace(params.BookingDate)
	if vErr := validateDate(date); vErr.HasErrors() {
		err = vErr
		return
	}
	if _, err = s.store.GetRoomByID(ctx, params.RoomID); err != nil {
		err = mapStoreError(err, ErrRoomNotFound)
		return
	}

	bookings, err = s.store.ListConfirmedBookings(ctx, params.RoomID, date, "")
	if err != nil {
		err = mapStoreError(err, ErrRoomNotFound)
		return
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].StartTime < bookings[j].StartTime
	})
	return
}

// loadMutable fetches a booking the principal may change and that is still confirmed.
func (s *BookingService) loadMutable(ctx context.Context, principal Principal, bookingID string) (Booking, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return Booking{}, ErrUnauthorized
	}
	existing, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapStoreError(err, ErrBookingNotFound)
	}
	if !principal.IsAdmin && existing.UserID != principal.UserID {
		return Booking{}, ErrUnauthorized
	}
	if existing.Status != BookingStatusConfirmed {
		return Booking{}, fmt.Errorf("booking is %s: %w", existing.Status, ErrInvalidTransition)
	}
	return existing, nil
}

func (s *BookingService) requireActiveRoom(ctx context.Context, roomID string) error {
	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		return mapStoreError(err, ErrRoomNotFound)
	}
	if room.Status != RoomStatusActive {
		return ErrRoomInactive
	}
	return nil
}

// lockRooms acquires the per-room locks in a stable order so two edits moving
// bookings between the same rooms cannot deadlock.
func (s *BookingService) lockRooms(ctx context.Context, roomIDs ...string) (func(), error) {
	ids := make([]string, 0, len(roomIDs))
	seen := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	releases := make([]func(), 0, len(ids))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, id := range ids {
		release, err := s.locker.Lock(ctx, id)
		if err != nil {
			releaseAll()
			return nil, fmt.Errorf("%w: lock room %s: %w", ErrStoreUnavailable, id, err)
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

func (s *BookingService) notify(ctx context.Context, logger *slog.Logger, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		logger.WarnContext(ctx, "booking notification failed",
			"error", err,
			"notification_type", string(n.Type),
			"booking_id", n.BookingID,
		)
	}
}

func pick(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
