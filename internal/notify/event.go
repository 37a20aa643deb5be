// Package notify delivers booking lifecycle notifications off the request path.
package notify

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/application"
)

// Event is the wire form of a booking notification.
type Event struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	BookingID   string    `json:"booking_id"`
	RoomID      string    `json:"room_id"`
	UserID      string    `json:"user_id"`
	BookingDate string    `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEvent converts an application notification into an event with the given id.
func NewEvent(id string, n application.Notification) Event {
	return Event{
		EventID:     id,
		EventType:   string(n.Type),
		BookingID:   n.BookingID,
		RoomID:      n.RoomID,
		UserID:      n.UserID,
		BookingDate: n.BookingDate,
		StartTime:   n.StartTime,
		EndTime:     n.EndTime,
		OccurredAt:  n.OccurredAt.UTC(),
	}
}

// Sink delivers a single event to its destination.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}
