package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/model"
)

// Event types.
const (
	AppointmentCreated   = "appointment.created"
	AppointmentCancelled = "appointment.cancelled"
)

// Event represents a lightweight domain event.
type Event struct {
	Type        string
	Appointment model.Appointment
	CreatedAt   time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(event Event)
}

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handler errors are logged
// and never reach the publisher.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Str("appointment", event.Appointment.ID).Msg("event handler failed")
		}
	}
}
