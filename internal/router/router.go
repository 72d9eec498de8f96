// Package router validates, persists, and fans out chat messages.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/registry"
	"github.com/Ladinawan-01/LiveChat/internal/rooms"
	"github.com/Ladinawan-01/LiveChat/internal/store"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

// Intent is one outbound message request. Exactly one of Room or Receiver
// must be set.
type Intent struct {
	Sender     string
	SenderName string
	Room       string
	Receiver   string
	Text       string
}

// Router accepts message intents, persists them through the message store,
// and fans the stored message out to the live connections it addresses.
// Fan-out only happens after the durable write is acknowledged, so a
// client never sees a live message that is not also in history.
type Router struct {
	registry *registry.Registry
	rooms    *rooms.Directory
	store    store.MessageStore
	bus      *bus.Bus

	// Per-conversation ordering locks. Held across the durable write and
	// the publish, so each conversation's delivery order matches the
	// order durable writes landed.
	mu       sync.Mutex
	ordering map[string]*sync.Mutex
}

// New creates a Router wired to its collaborators.
func New(reg *registry.Registry, d *rooms.Directory, st store.MessageStore, b *bus.Bus) *Router {
	return &Router{
		registry: reg,
		rooms:    d,
		store:    st,
		bus:      b,
		ordering: make(map[string]*sync.Mutex),
	}
}

// Send validates the intent, persists the message, and fans it out.
// Validation and state errors happen before any persistence attempt; a
// persistence failure aborts the send with no fan-out.
func (r *Router) Send(ctx context.Context, intent Intent) (domain.Message, error) {
	text := strings.TrimSpace(intent.Text)

	switch {
	case intent.Room == "" && intent.Receiver == "":
		return domain.Message{}, domain.ErrMissingAddressing
	case intent.Room != "" && intent.Receiver != "":
		return domain.Message{}, domain.ErrAmbiguousAddressing
	case text == "":
		return domain.Message{}, domain.ErrEmptyBody
	case len([]rune(text)) > domain.MaxMessageLength:
		return domain.Message{}, domain.ErrBodyTooLong
	}

	if intent.Room != "" && !r.rooms.Exists(intent.Room) {
		return domain.Message{}, domain.ErrRoomNotFound
	}

	msg := domain.Message{
		Sender:     intent.Sender,
		SenderName: intent.SenderName,
		Room:       intent.Room,
		Receiver:   intent.Receiver,
		Text:       text,
	}

	// The ordering lock is taken before the durable write and held
	// through publish: two racing senders in one conversation serialize
	// at the store, and delivery order matches the order their writes
	// landed. It is a per-conversation lock, not a table lock; the
	// membership and registry reads below take their own locks, so no
	// in-memory table is held across the store I/O.
	lock := r.orderingLock(conversationKey(msg))
	lock.Lock()
	defer lock.Unlock()

	stored, err := r.store.Persist(ctx, msg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str(log.FieldUserID, intent.Sender).
			Msg("message persistence failed")
		return domain.Message{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	if stored.IsDirect() {
		r.bus.PublishTo(domain.NewMessage{Message: stored}, r.directTargets(stored))
	} else {
		// Every connection currently in the room, sender's own included.
		r.bus.PublishTo(domain.NewMessage{Message: stored}, r.rooms.Members(stored.Room))
	}

	return stored, nil
}

// directTargets collects every live connection of the sender and the
// receiver, deduplicated. An offline receiver simply contributes none:
// the message stays persisted with no live push.
func (r *Router) directTargets(msg domain.Message) []string {
	seen := make(map[string]struct{})
	var targets []string
	for _, id := range r.registry.ConnectionsFor(msg.Sender) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			targets = append(targets, id)
		}
	}
	for _, id := range r.registry.ConnectionsFor(msg.Receiver) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			targets = append(targets, id)
		}
	}
	return targets
}

func (r *Router) orderingLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.ordering[key]
	if !ok {
		lock = &sync.Mutex{}
		r.ordering[key] = lock
	}
	return lock
}

func conversationKey(msg domain.Message) string {
	if msg.IsDirect() {
		a, b := msg.Sender, msg.Receiver
		if b < a {
			a, b = b, a
		}
		return "dm:" + a + "#" + b
	}
	return "room:" + msg.Room
}
