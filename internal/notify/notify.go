// Package notify tells salon staff about appointment changes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/events"
)

// Notifier delivers a rendered event to staff.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// ErrQueueFull is logged when an event is dropped because delivery is
// falling behind.
var ErrQueueFull = errors.New("notification queue full")

// DefaultQueueSize bounds the number of events waiting for delivery.
const DefaultQueueSize = 64

// Dispatcher delivers appointment events to notifiers from a queue, on the
// goroutine running Start. Publishing only enqueues.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	queue     chan events.Event
	logger    *zerolog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewDispatcher creates a dispatcher. timeout bounds the delivery of a
// single event to all notifiers.
func NewDispatcher(timeout time.Duration, queueSize int, logger *zerolog.Logger, notifiers ...Notifier) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		queue:     make(chan events.Event, queueSize),
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Subscribe queues created and cancelled appointment events from bus.
func (d *Dispatcher) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.AppointmentCreated, d.enqueue)
	bus.Subscribe(events.AppointmentCancelled, d.enqueue)
}

func (d *Dispatcher) enqueue(e events.Event) error {
	select {
	case d.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start delivers queued events until ctx is done, then drains what is left
// in the queue before returning.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-d.queue:
					d.deliver(e)
				default:
					return
				}
			}
		case e := <-d.queue:
			d.deliver(e)
		}
	}
}

// Done is closed once Start has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) deliver(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, n := range d.notifiers {
		if err := n.Notify(ctx, e); err != nil {
			d.logger.Warn().Err(err).Str("event", e.Type).Str("appointment", e.Appointment.ID).Msg("notification failed")
		}
	}
}

// Message renders the staff-facing text for an event.
func Message(e events.Event) string {
	a := e.Appointment
	when := a.Date.Format("02/01/2006 15:04")
	switch e.Type {
	case events.AppointmentCreated:
		return fmt.Sprintf("New appointment: %s with %s on %s (client: %s)", a.Service.Name, a.Professional.Name, when, a.Client.Name)
	case events.AppointmentCancelled:
		return fmt.Sprintf("Appointment cancelled: %s with %s on %s (client: %s)", a.Service.Name, a.Professional.Name, when, a.Client.Name)
	default:
		return fmt.Sprintf("%s: appointment %s", e.Type, a.ID)
	}
}

// LogNotifier writes events to the application log.
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, e events.Event) error {
	n.logger.Info().
		Str("event", e.Type).
		Str("appointment", e.Appointment.ID).
		Str("professional", e.Appointment.Professional.ID).
		Time("date", e.Appointment.Date).
		Msg(Message(e))
	return nil
}
