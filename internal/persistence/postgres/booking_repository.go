package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/room-booking/internal/persistence"
)

const bookingColumns = `id, room_id, user_id, to_char(booking_date, 'YYYY-MM-DD'),
	start_time::text, end_time::text, status, notes, cancelled_at, cancelled_by,
	cancellation_reason, reminder_sent_at, created_at, updated_at`

// InsertBooking inserts a booking. The exclusion constraint rejects a confirmed
// booking that overlaps another confirmed booking of the same room.
func (s *Store) InsertBooking(ctx context.Context, b persistence.Booking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookings (id, room_id, user_id, booking_date, start_time, end_time, status, notes,
			cancelled_at, cancelled_by, cancellation_reason, reminder_sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7, NULLIF($8, ''), $9, $10, $11, $12, $13, $14)`,
		b.ID, b.RoomID, b.UserID, b.BookingDate, b.StartTime, b.EndTime, b.Status, b.Notes,
		b.CancelledAt, b.CancelledBy, b.CancellationReason, b.ReminderSentAt, b.CreatedAt, b.UpdatedAt,
	)
	return mapError(err)
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return b, nil
}

// UpdateBookingFields applies the non-nil fields of patch and returns the stored row.
func (s *Store) UpdateBookingFields(ctx context.Context, id string, patch persistence.BookingPatch) (persistence.Booking, error) {
	query, args := updateBookingQuery(id, patch)

	var updated persistence.Booking
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return mapError(err)
		}
		current, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: booking %s is %s", persistence.ErrStaleState, id, current.Status)
		}
		updated = current
		return nil
	})
	if err != nil {
		return persistence.Booking{}, err
	}
	return updated, nil
}

func updateBookingQuery(id string, patch persistence.BookingPatch) (string, []any) {
	args := []any{id, patch.UpdatedAt}
	sets := []string{"updated_at = $2"}

	add := func(column, cast string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, len(args), cast))
	}
	if patch.RoomID != nil {
		add("room_id", "", *patch.RoomID)
	}
	if patch.BookingDate != nil {
		add("booking_date", "::date", *patch.BookingDate)
	}
	if patch.StartTime != nil {
		add("start_time", "::time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", "::time", *patch.EndTime)
	}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = NULLIF($%d, '')", len(args)))
	}
	if patch.Status != nil {
		add("status", "", *patch.Status)
	}
	if patch.CancelledAt != nil {
		add("cancelled_at", "", *patch.CancelledAt)
	}
	if patch.CancelledBy != nil {
		add("cancelled_by", "", *patch.CancelledBy)
	}
	if patch.CancellationReason != nil {
		add("cancellation_reason", "", *patch.CancellationReason)
	}

	query := `UPDATE bookings SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	if patch.ExpectStatus != "" {
		args = append(args, patch.ExpectStatus)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return query, args
}

// ListConfirmedBookings returns the confirmed bookings of a room on a date, skipping
// excludeID, ordered by start time.
func (s *Store) ListConfirmedBookings(ctx context.Context, roomID, bookingDate, excludeID string) ([]persistence.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE room_id = $1 AND booking_date = $2::date AND status = 'confirmed' AND id <> $3
		ORDER BY start_time, id`,
		roomID, bookingDate, excludeID,
	)
}

// ListPastConfirmedBookingIDs returns confirmed bookings whose end lies strictly
// before the given local date and clock time.
func (s *Store) ListPastConfirmedBookingIDs(ctx context.Context, today, clock string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM bookings
		WHERE status = 'confirmed'
		  AND (booking_date < $1::date OR (booking_date = $1::date AND end_time < $2::time))
		ORDER BY booking_date, end_time`,
		today, clock,
	)
	if err != nil {
		return nil, mapError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

// MarkCompleted moves the listed bookings to completed when they are still confirmed.
func (s *Store) MarkCompleted(ctx context.Context, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE bookings SET status = 'completed', updated_at = $2
		WHERE status = 'confirmed' AND id = ANY($1)`,
		ids, at,
	)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}

// ListUnremindedConfirmed returns confirmed bookings on the date without a reminder.
func (s *Store) ListUnremindedConfirmed(ctx context.Context, bookingDate string) ([]persistence.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'confirmed' AND booking_date = $1::date AND reminder_sent_at IS NULL
		ORDER BY start_time, id`,
		bookingDate,
	)
}

// MarkReminded stamps reminder_sent_at when it is still unset and reports whether this
// call claimed the reminder.
func (s *Store) MarkReminded(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE bookings SET reminder_sent_at = $2
		WHERE id = $1 AND status = 'confirmed' AND reminder_sent_at IS NULL`,
		id, at,
	)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (persistence.Booking, error) {
	var b persistence.Booking
	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.UserID,
		&b.BookingDate,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.Notes,
		&b.CancelledAt,
		&b.CancelledBy,
		&b.CancellationReason,
		&b.ReminderSentAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return b, err
}
