package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/persistence"
)

const roomColumns = `id, name, location, capacity, operating_hours_start, operating_hours_end,
	slot_duration_minutes, status, created_at, updated_at`

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.Name,
		nullableString(&room.Location),
		room.Capacity,
		room.OperatingHoursStart,
		room.OperatingHoursEnd,
		room.SlotDurationMinutes,
		room.Status,
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	return mapError(err)
}

// UpdateRoom replaces the configuration of an existing room.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE rooms
		SET name = ?, location = ?, capacity = ?, operating_hours_start = ?, operating_hours_end = ?,
			slot_duration_minutes = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		room.Name,
		nullableString(&room.Location),
		room.Capacity,
		room.OperatingHoursStart,
		room.OperatingHoursEnd,
		room.SlotDurationMinutes,
		room.Status,
		formatTime(room.UpdatedAt),
		room.ID,
	)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, err
}

// ListRooms returns all rooms ordered by name then ID.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room                 persistence.Room
		location             sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&room.ID,
		&room.Name,
		&location,
		&room.Capacity,
		&room.OperatingHoursStart,
		&room.OperatingHoursEnd,
		&room.SlotDurationMinutes,
		&room.Status,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Room{}, err
		}
		return persistence.Room{}, mapError(err)
	}

	room.Location = location.String

	var err error
	if room.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}
