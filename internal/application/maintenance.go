package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/scheduler"
)

const clockLayout = "15:04:05"

// MarkPastBookingsAsCompleted moves every confirmed booking whose end lies strictly
// before the current time in the booking timezone to completed. Running it again
// without the clock advancing changes nothing.
func (s *BookingService) MarkPastBookingsAsCompleted(ctx context.Context) (completed int, err error) {
	if err = s.ready(); err != nil {
		return
	}

	now := s.now().In(s.location)
	today := now.Format(scheduler.DateLayout)
	clock := now.Format(clockLayout)

	logger := s.loggerWith(ctx, "MarkPastBookingsAsCompleted",
		"cutoff_date", today,
		"cutoff_time", clock,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "completion sweep failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if completed > 0 {
			logger.InfoContext(ctx, "past bookings completed", "completed_count", completed)
		}
	}()

	var ids []string
	ids, err = s.store.ListPastConfirmedBookingIDs(ctx, today, clock)
	if err != nil {
		err = mapStoreError(err, ErrBookingNotFound)
		return
	}
	if len(ids) == 0 {
		return
	}

	completed, err = s.store.MarkCompleted(ctx, ids, now)
	if err != nil {
		err = mapStoreError(err, ErrBookingNotFound)
		return
	}
	return
}

// SendUpcomingReminders emits one booking_reminder per confirmed booking starting
// within (now, now+lead]. A booking is claimed in the store before its reminder is
// sent, so concurrent runs never remind twice.
func (s *BookingService) SendUpcomingReminders(ctx context.Context, lead time.Duration) (sent int, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if lead <= 0 {
		return 0, nil
	}

	now := s.now().In(s.location)
	horizon := now.Add(lead)

	logger := s.loggerWith(ctx, "SendUpcomingReminders", "lead", lead.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reminder pass failed", "error", err, "error_kind", ErrorKind(err), "sent_count", sent)
			return
		}
		if sent > 0 {
			logger.InfoContext(ctx, "reminders sent", "sent_count", sent)
		}
	}()

	for _, date := range datesBetween(now, horizon) {
		var candidates []Booking
		candidates, err = s.store.ListUnremindedConfirmed(ctx, date)
		if err != nil {
			err = mapStoreError(err, ErrBookingNotFound)
			return
		}

		for _, b := range candidates {
			startsAt, parseErr := time.ParseInLocation(scheduler.DateLayout+" "+clockLayout, b.BookingDate+" "+b.StartTime, s.location)
			if parseErr != nil {
				logger.WarnContext(ctx, "skipping booking with unreadable start", "booking_id", b.ID, "error", parseErr)
				continue
			}
			if !startsAt.After(now) || startsAt.After(horizon) {
				continue
			}

			var claimed bool
			claimed, err = s.store.MarkReminded(ctx, b.ID, now)
			if err != nil {
				err = mapStoreError(err, ErrBookingNotFound)
				return
			}
			if !claimed {
				continue
			}
			s.notify(ctx, logger, notificationFor(b, NotificationBookingReminder, now))
			sent++
		}
	}
	return
}

// datesBetween lists the calendar dates from start to end inclusive.
func datesBetween(start, end time.Time) []string {
	var dates []string
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	last := end.Format(scheduler.DateLayout)
	for {
		formatted := day.Format(scheduler.DateLayout)
		dates = append(dates, formatted)
		if formatted >= last {
			return dates
		}
		day = day.AddDate(0, 0, 1)
	}
}

// MaintenanceTarget is the subset of BookingService driven by the background runner.
type MaintenanceTarget interface {
	MarkPastBookingsAsCompleted(ctx context.Context) (int, error)
	SendUpcomingReminders(ctx context.Context, lead time.Duration) (int, error)
}

// MaintenanceRunner periodically runs the completion sweep and the reminder pass.
type MaintenanceRunner struct {
	target   MaintenanceTarget
	interval time.Duration
	lead     time.Duration
	logger   *slog.Logger
}

// NewMaintenanceRunner constructs a runner. A non-positive interval disables the loop.
func NewMaintenanceRunner(target MaintenanceTarget, interval, lead time.Duration, logger *slog.Logger) *MaintenanceRunner {
	return &MaintenanceRunner{target: target, interval: interval, lead: lead, logger: defaultLogger(logger)}
}

// RunOnce performs a single completion sweep followed by a reminder pass.
func (r *MaintenanceRunner) RunOnce(ctx context.Context) (completed, reminded int, err error) {
	completed, err = r.target.MarkPastBookingsAsCompleted(ctx)
	if err != nil {
		return completed, 0, err
	}
	reminded, err = r.target.SendUpcomingReminders(ctx, r.lead)
	return completed, reminded, err
}

// Run blocks until ctx is cancelled, running a pass on every tick.
func (r *MaintenanceRunner) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.InfoContext(ctx, "maintenance runner disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := r.RunOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "maintenance pass failed", "error", err, "error_kind", ErrorKind(err))
			}
		}
	}
}
