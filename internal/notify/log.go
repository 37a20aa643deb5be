package notify

import (
	"context"
	"log/slog"
)

// LogSink writes events to a logger. It is used when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a sink logging through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Deliver logs ev at info level.
func (s *LogSink) Deliver(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "booking notification",
		"event_id", ev.EventID,
		"event_type", ev.EventType,
		"booking_id", ev.BookingID,
		"room_id", ev.RoomID,
		"user_id", ev.UserID,
		"booking_date", ev.BookingDate,
		"start_time", ev.StartTime,
		"end_time", ev.EndTime,
	)
	return nil
}
