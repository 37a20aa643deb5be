package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
)

var (
	// ErrQueueFull is returned when a notification is dropped because the queue is full.
	ErrQueueFull = errors.New("notify: queue full")
	// ErrStopped is returned when a notification arrives after the dispatcher stopped.
	ErrStopped = errors.New("notify: dispatcher stopped")
)

// DispatcherOptions tunes a Dispatcher.
type DispatcherOptions struct {
	QueueSize      int
	Workers        int
	DeliverTimeout time.Duration
	// DrainTimeout bounds delivery of events still queued when Run's context ends.
	DrainTimeout time.Duration
	Logger       *slog.Logger
	IDGenerator  func() string
}

// Dispatcher queues notifications and delivers them to a Sink from worker goroutines.
type Dispatcher struct {
	sink  Sink
	queue chan Event
	opts  DispatcherOptions

	// mu orders Notify's enqueue against Run marking the dispatcher stopped, so the
	// final drain sees every event Notify accepted.
	mu      sync.RWMutex
	stopped bool
}

var _ application.Notifier = (*Dispatcher)(nil)

// NewDispatcher constructs a dispatcher. Nothing is delivered until Run is called.
func NewDispatcher(sink Sink, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.DeliverTimeout <= 0 {
		opts.DeliverTimeout = 5 * time.Second
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = uuid.NewString
	}
	return &Dispatcher{sink: sink, queue: make(chan Event, opts.QueueSize), opts: opts}
}

// Notify enqueues n without blocking.
func (d *Dispatcher) Notify(ctx context.Context, n application.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	ev := NewEvent(d.opts.IDGenerator(), n)
	select {
	case d.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of queued events.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run delivers events until ctx is cancelled, then drains what is left within
// DrainTimeout and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-d.queue:
					d.deliver(context.WithoutCancel(ctx), ev)
				}
			}
		}()
	}
	wg.Wait()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.drain(context.WithoutCancel(ctx))
}

func (d *Dispatcher) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.DrainTimeout)
	defer cancel()
	for {
		select {
		case ev := <-d.queue:
			if ctx.Err() != nil {
				d.opts.Logger.Warn("dropping notification after drain timeout", "event_id", ev.EventID, "event_type", ev.EventType)
				continue
			}
			d.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.DeliverTimeout)
	defer cancel()
	if err := d.sink.Deliver(ctx, ev); err != nil {
		d.opts.Logger.Warn("notification delivery failed",
			"error", err,
			"event_id", ev.EventID,
			"event_type", ev.EventType,
			"booking_id", ev.BookingID,
		)
	}
}
