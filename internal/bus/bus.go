// Package bus provides the in-process publish/subscribe substrate the
// engine uses to push events to the transport layer.
package bus

import (
	"sync"

	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

// Handler receives a published event. targets lists the connection ids the
// event is addressed to; nil means every live connection. Handlers are
// invoked synchronously in publish order and must not block: delivery
// ordering (per-room message order in particular) depends on it.
type Handler func(evt domain.Event, targets []string)

// Bus is an in-memory event bus. The zero value is not usable; use New.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// SubscribeAll registers a handler for every event type. The transport
// layer uses this to serialize engine events to the wire.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Broadcast publishes an event addressed to every live connection.
func (b *Bus) Broadcast(evt domain.Event) {
	b.publish(evt, nil)
}

// PublishTo publishes an event addressed to the given connection ids.
// Publishing to an empty target list is a no-op.
func (b *Bus) PublishTo(evt domain.Event, targets []string) {
	if len(targets) == 0 {
		return
	}
	b.publish(evt, targets)
}

func (b *Bus) publish(evt domain.Event, targets []string) {
	b.mu.RLock()
	typed := b.handlers[evt.EventType()]
	all := b.all
	b.mu.RUnlock()

	for _, h := range typed {
		b.invoke(h, evt, targets)
	}
	for _, h := range all {
		b.invoke(h, evt, targets)
	}
}

// invoke isolates subscriber panics so one misbehaving handler cannot take
// down the publishing goroutine.
func (b *Bus) invoke(h Handler, evt domain.Event, targets []string) {
	defer func() {
		if r := recover(); r != nil {
			log.L().Error().
				Str("event", evt.EventType()).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()
	h(evt, targets)
}
