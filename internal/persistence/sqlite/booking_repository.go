package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

const bookingColumns = `id, room_id, user_id, booking_date, start_time, end_time, status, notes,
	cancelled_at, cancelled_by, cancellation_reason, reminder_sent_at, created_at, updated_at`

// completeBatchSize keeps IN lists below SQLite's bound parameter limit.
const completeBatchSize = 500

// InsertBooking inserts a booking. A confirmed booking overlapping another confirmed
// booking of the same room and date fails with persistence.ErrConflict.
func (s *Store) InsertBooking(ctx context.Context, b persistence.Booking) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.RoomID,
		b.UserID,
		b.BookingDate,
		b.StartTime,
		b.EndTime,
		b.Status,
		nullableString(b.Notes),
		nullableTime(b.CancelledAt),
		nullableString(b.CancelledBy),
		nullableString(b.CancellationReason),
		nullableTime(b.ReminderSentAt),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	return mapError(err)
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	return getBooking(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getBooking(ctx context.Context, q queryRower, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	b, err := scanBooking(q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return b, err
}

// UpdateBookingFields applies the non-nil fields of patch and returns the stored row.
func (s *Store) UpdateBookingFields(ctx context.Context, id string, patch persistence.BookingPatch) (persistence.Booking, error) {
	sets, args := bookingPatchClauses(patch)
	query := `UPDATE bookings SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)
	if patch.ExpectStatus != "" {
		query += ` AND status = ?`
		args = append(args, patch.ExpectStatus)
	}

	var updated persistence.Booking
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapError(err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		current, err := getBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
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

func bookingPatchClauses(patch persistence.BookingPatch) ([]string, []any) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(patch.UpdatedAt)}

	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.RoomID != nil {
		add("room_id", *patch.RoomID)
	}
	if patch.BookingDate != nil {
		add("booking_date", *patch.BookingDate)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.Notes != nil {
		add("notes", nullableString(patch.Notes))
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.CancelledAt != nil {
		add("cancelled_at", nullableTime(patch.CancelledAt))
	}
	if patch.CancelledBy != nil {
		add("cancelled_by", nullableString(patch.CancelledBy))
	}
	if patch.CancellationReason != nil {
		add("cancellation_reason", nullableString(patch.CancellationReason))
	}
	return sets, args
}

// ListConfirmedBookings returns the confirmed bookings of a room on a date, skipping
// excludeID, ordered by start time.
func (s *Store) ListConfirmedBookings(ctx context.Context, roomID, bookingDate, excludeID string) ([]persistence.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE room_id = ? AND booking_date = ? AND status = 'confirmed' AND id <> ?
		ORDER BY start_time ASC, id ASC`,
		roomID, bookingDate, excludeID,
	)
}

// ListPastConfirmedBookingIDs returns confirmed bookings whose end lies strictly
// before the given local date and clock time.
func (s *Store) ListPastConfirmedBookingIDs(ctx context.Context, today, clock string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM bookings
		WHERE status = 'confirmed'
		  AND (booking_date < ? OR (booking_date = ? AND end_time < ?))
		ORDER BY booking_date ASC, end_time ASC`,
		today, today, clock,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

// MarkCompleted moves the listed bookings to completed when they are still confirmed
// and reports how many changed.
func (s *Store) MarkCompleted(ctx context.Context, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	total := 0
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for start := 0; start < len(ids); start += completeBatchSize {
			end := min(start+completeBatchSize, len(ids))
			batch := ids[start:end]

			args := make([]any, 0, len(batch)+1)
			args = append(args, formatTime(at))
			for _, id := range batch {
				args = append(args, id)
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")

			result, err := tx.ExecContext(ctx, `
				UPDATE bookings SET status = 'completed', updated_at = ?
				WHERE status = 'confirmed' AND id IN (`+placeholders+`)`,
				args...,
			)
			if err != nil {
				return mapError(err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			total += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListUnremindedConfirmed returns confirmed bookings on the date that have not had a
// reminder sent.
func (s *Store) ListUnremindedConfirmed(ctx context.Context, bookingDate string) ([]persistence.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'confirmed' AND booking_date = ? AND reminder_sent_at IS NULL
		ORDER BY start_time ASC, id ASC`,
		bookingDate,
	)
}

// MarkReminded stamps reminder_sent_at when it is still unset. It reports whether
// this call claimed the reminder.
func (s *Store) MarkReminded(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET reminder_sent_at = ?
		WHERE id = ? AND status = 'confirmed' AND reminder_sent_at IS NULL`,
		formatTime(at), id,
	)
	if err != nil {
		return false, mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		b                           persistence.Booking
		notes, cancelledBy, reason  sql.NullString
		cancelledAt, reminderSentAt sql.NullString
		createdAt, updatedAt        string
	)
	if err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.UserID,
		&b.BookingDate,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&notes,
		&cancelledAt,
		&cancelledBy,
		&reason,
		&reminderSentAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, err
		}
		return persistence.Booking{}, mapError(err)
	}

	b.Notes = scanNullString(notes)
	b.CancelledBy = scanNullString(cancelledBy)
	b.CancellationReason = scanNullString(reason)

	var err error
	if b.CancelledAt, err = scanNullTime("cancelled_at", cancelledAt); err != nil {
		return persistence.Booking{}, err
	}
	if b.ReminderSentAt, err = scanNullTime("reminder_sent_at", reminderSentAt); err != nil {
		return persistence.Booking{}, err
	}
	if b.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if b.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return b, nil
}
