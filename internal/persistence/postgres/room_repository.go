package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/example/room-booking/internal/persistence"
)

const roomColumns = `id, name, COALESCE(location, ''), capacity,
	operating_hours_start::text, operating_hours_end::text,
	slot_duration_minutes, status, created_at, updated_at`

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (id, name, location, capacity, operating_hours_start, operating_hours_end,
			slot_duration_minutes, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5::time, $6::time, $7, $8, $9, $10)`,
		room.ID, room.Name, room.Location, room.Capacity,
		room.OperatingHoursStart, room.OperatingHoursEnd,
		room.SlotDurationMinutes, room.Status, room.CreatedAt, room.UpdatedAt,
	)
	return mapError(err)
}

// UpdateRoom replaces the configuration of an existing room.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rooms
		SET name = $2, location = NULLIF($3, ''), capacity = $4,
			operating_hours_start = $5::time, operating_hours_end = $6::time,
			slot_duration_minutes = $7, status = $8, updated_at = $9
		WHERE id = $1`,
		room.ID, room.Name, room.Location, room.Capacity,
		room.OperatingHoursStart, room.OperatingHoursEnd,
		room.SlotDurationMinutes, room.Status, room.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	room, err := scanRoom(s.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then ID.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

func scanRoom(row pgx.Row) (persistence.Room, error) {
	var room persistence.Room
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Location,
		&room.Capacity,
		&room.OperatingHoursStart,
		&room.OperatingHoursEnd,
		&room.SlotDurationMinutes,
		&room.Status,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, err
}
