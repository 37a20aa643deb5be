package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
)

// RoomRepository captures the persistence operations needed by the room catalogue.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomService orchestrates validation, authorization, and persistence for rooms.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input, vErr := normalizeRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	room = Room{
		ID:        s.idGenerator(),
		CreatedAt: s.now(),
	}
	applyRoomInput(&room, input)
	room.UpdatedAt = room.CreatedAt

	if s.rooms == nil {
		return
	}

	var persisted Room
	persisted, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = persisted
	return
}

// UpdateRoom validates input and replaces the configuration of an existing room.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_status", string(room.Status)).InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	input, vErr := normalizeRoomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	applyRoomInput(&updated, input)
	updated.UpdatedAt = s.now()

	room, err = s.rooms.UpdateRoom(ctx, updated)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	return
}

// GetRoom returns a single room by identifier.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, ErrRoomNotFound
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		s.loggerWith(ctx, "GetRoom", "room_id", roomID).
			WarnContext(ctx, "room lookup failed", "error", err, "error_kind", ErrorKind(err))
		return Room{}, err
	}
	return room, nil
}

// ListRooms returns the catalogue of rooms ordered by name.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	rooms = make([]Room, len(raw))
	copy(rooms, raw)

	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})

	return
}

// normalizeRoomInput validates a room configuration and canonicalizes its operating
// hours to HH:MM:00. An empty status defaults to active.
func normalizeRoomInput(input RoomInput) (RoomInput, *ValidationError) {
	vErr := &ValidationError{}

	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity < 0 {
		vErr.add("capacity", "capacity must not be negative")
	}
	if input.SlotDurationMinutes <= 0 {
		vErr.add("slot_duration_minutes", "slot_duration_minutes must be positive")
	}

	switch input.Status {
	case "":
		input.Status = RoomStatusActive
	case RoomStatusActive, RoomStatusInactive:
	default:
		vErr.add("status", "status must be active or inactive")
	}

	start, startErr := scheduler.ParseTimeToMinutes(strings.TrimSpace(input.OperatingHoursStart))
	if startErr != nil {
		vErr.add("operating_hours_start", "operating_hours_start must be HH:MM or HH:MM:SS")
	}
	end, endErr := scheduler.ParseTimeToMinutes(strings.TrimSpace(input.OperatingHoursEnd))
	if endErr != nil {
		vErr.add("operating_hours_end", "operating_hours_end must be HH:MM or HH:MM:SS")
	}
	if startErr == nil && endErr == nil {
		if end <= start {
			vErr.add("operating_hours_end", "operating_hours_end must be after operating_hours_start")
		} else {
			input.OperatingHoursStart, _ = scheduler.FormatMinutesToTime(start)
			input.OperatingHoursEnd, _ = scheduler.FormatMinutesToTime(end)
		}
	}

	return input, vErr
}

func applyRoomInput(room *Room, input RoomInput) {
	room.Name = input.Name
	room.Location = input.Location
	room.Capacity = input.Capacity
	room.OperatingHoursStart = input.OperatingHoursStart
	room.OperatingHoursEnd = input.OperatingHoursEnd
	room.SlotDurationMinutes = input.SlotDurationMinutes
	room.Status = input.Status
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRoomNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrRoomNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("room", "room configuration violates a storage constraint")
		return vErr
	}
	return mapStoreError(err, ErrRoomNotFound)
}
