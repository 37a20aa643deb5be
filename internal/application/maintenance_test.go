package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaintenanceService(store *memoryStore, notifier Notifier, now time.Time, loc *time.Location) *BookingService {
	return NewBookingService(BookingServiceDeps{
		Store:    store,
		Notifier: notifier,
		Now:      func() time.Time { return now },
		Location: loc,
	})
}

func confirmed(id, date, start, end string) Booking {
	return Booking{ID: id, RoomID: "room-1", UserID: "alice", BookingDate: date,
		StartTime: start, EndTime: end, Status: BookingStatusConfirmed}
}

func TestMarkPastBookingsAsCompleted(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put(confirmed("yesterday", "2026-03-09", "15:00:00", "16:00:00"))
	store.put(confirmed("this-morning", "2026-03-10", "10:00:00", "11:00:00"))
	store.put(confirmed("ends-now", "2026-03-10", "11:00:00", "12:00:00"))
	store.put(confirmed("later", "2026-03-10", "13:00:00", "14:00:00"))
	cancelled := confirmed("cancelled", "2026-03-01", "09:00:00", "10:00:00")
	cancelled.Status = BookingStatusCancelled
	store.put(cancelled)

	svc := newMaintenanceService(store, nil, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), nil)

	n, err := svc.MarkPastBookingsAsCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, BookingStatusCompleted, store.booking("yesterday").Status)
	assert.Equal(t, BookingStatusCompleted, store.booking("this-morning").Status)
	assert.Equal(t, BookingStatusConfirmed, store.booking("ends-now").Status)
	assert.Equal(t, BookingStatusConfirmed, store.booking("later").Status)
	assert.Equal(t, BookingStatusCancelled, store.booking("cancelled").Status)

	n, err = svc.MarkPastBookingsAsCompleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkPastBookingsAsCompletedUsesBookingTimezone(t *testing.T) {
	store := newMemoryStore()
	store.put(confirmed("early", "2026-03-10", "08:00:00", "09:00:00"))

	jst := time.FixedZone("JST", 9*60*60)
	// 00:30 UTC is 09:30 in JST, after the booking ended.
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)

	utcSvc := newMaintenanceService(store, nil, now, time.UTC)
	n, err := utcSvc.MarkPastBookingsAsCompleted(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	jstSvc := newMaintenanceService(store, nil, now, jst)
	n, err = jstSvc.MarkPastBookingsAsCompleted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMarkPastBookingsAsCompletedStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.sweepErr = errors.New("locked")
	svc := newMaintenanceService(store, nil, time.Now(), nil)

	_, err := svc.MarkPastBookingsAsCompleted(context.Background())
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSendUpcomingReminders(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.put(confirmed("starts-now", "2026-03-10", "12:00:00", "13:00:00"))
	store.put(confirmed("soon", "2026-03-10", "12:30:00", "13:00:00"))
	store.put(confirmed("edge", "2026-03-10", "13:00:00", "14:00:00"))
	store.put(confirmed("too-late", "2026-03-10", "13:30:00", "14:00:00"))
	store.put(confirmed("tomorrow", "2026-03-11", "12:30:00", "13:00:00"))

	notifier := &recordingNotifier{}
	svc := newMaintenanceService(store, notifier, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), nil)

	sent, err := svc.SendUpcomingReminders(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	var ids []string
	for _, n := range notifier.sent {
		assert.Equal(t, NotificationBookingReminder, n.Type)
		ids = append(ids, n.BookingID)
	}
	assert.ElementsMatch(t, []string{"soon", "edge"}, ids)
	assert.NotNil(t, store.booking("soon").ReminderSentAt)
	assert.Nil(t, store.booking("too-late").ReminderSentAt)

	sent, err = svc.SendUpcomingReminders(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, sent, "reminders are sent once per booking")
}

func TestSendUpcomingRemindersAcrossMidnight(t *testing.T) {
	store := newMemoryStore()
	store.put(confirmed("after-midnight", "2026-03-11", "00:15:00", "01:00:00"))

	notifier := &recordingNotifier{}
	svc := newMaintenanceService(store, notifier, time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC), nil)

	sent, err := svc.SendUpcomingReminders(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestDatesBetween(t *testing.T) {
	start := time.Date(2026, 2, 27, 22, 0, 0, 0, time.UTC)
	got := datesBetween(start, start.Add(50*time.Hour))
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}, got)
	assert.Equal(t, []string{"2026-02-27"}, datesBetween(start, start.Add(time.Hour)))
}

type maintenanceTargetStub struct {
	completeErr error
	completed   int
	reminded    int
	leads       []time.Duration
}

func (m *maintenanceTargetStub) MarkPastBookingsAsCompleted(ctx context.Context) (int, error) {
	return m.completed, m.completeErr
}

func (m *maintenanceTargetStub) SendUpcomingReminders(ctx context.Context, lead time.Duration) (int, error) {
	m.leads = append(m.leads, lead)
	return m.reminded, nil
}

func TestMaintenanceRunner(t *testing.T) {
	t.Run("run once performs both passes", func(t *testing.T) {
		target := &maintenanceTargetStub{completed: 3, reminded: 2}
		runner := NewMaintenanceRunner(target, time.Minute, 30*time.Minute, nil)

		completed, reminded, err := runner.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, completed)
		assert.Equal(t, 2, reminded)
		assert.Equal(t, []time.Duration{30 * time.Minute}, target.leads)
	})

	t.Run("sweep failure skips reminders", func(t *testing.T) {
		target := &maintenanceTargetStub{completeErr: ErrStoreUnavailable}
		runner := NewMaintenanceRunner(target, time.Minute, time.Hour, nil)

		_, _, err := runner.RunOnce(context.Background())
		require.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Empty(t, target.leads)
	})

	t.Run("run stops on cancellation", func(t *testing.T) {
		runner := NewMaintenanceRunner(&maintenanceTargetStub{}, time.Millisecond, time.Hour, nil)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			runner.Run(ctx)
			close(done)
		}()
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("runner did not stop")
		}
	})
}
