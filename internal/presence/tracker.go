// Package presence derives the online-user set from connection bindings.
package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

type entry struct {
	record domain.PresenceRecord
	conns  int
}

// Tracker maintains the global online-user set. Presence is keyed by user
// id: a user is online while at least one live connection is bound to it.
type Tracker struct {
	mu    sync.RWMutex
	users map[string]*entry
	bus   *bus.Bus
	now   func() time.Time
}

// New creates an empty Tracker publishing on b.
func New(b *bus.Bus) *Tracker {
	return &Tracker{
		users: make(map[string]*entry),
		bus:   b,
		now:   time.Now,
	}
}

// AddConnection records one more live connection for the user. The first
// connection transitions the user online and broadcasts UserJoined; further
// connections only bump the refcount. Returns the current presence record.
//
// UserJoined is published under the tracker lock so per-user join/leave
// ordering is never inverted.
func (t *Tracker) AddConnection(userID, username, avatar string) domain.PresenceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.users[userID]
	if !ok {
		now := t.now()
		e = &entry{record: domain.PresenceRecord{
			UserID:      userID,
			Username:    username,
			Avatar:      avatar,
			OnlineSince: now,
			LastSeen:    now,
		}}
		t.users[userID] = e
	}
	e.conns++
	e.record.LastSeen = t.now()

	if e.conns == 1 {
		t.bus.Broadcast(domain.UserJoined{User: e.record})
	}
	return e.record
}

// RemoveConnection records one live connection gone for the user. When the
// last connection disappears the user transitions offline, LastSeen is
// stamped, UserLeft is broadcast, and wentOffline is true. Unknown users
// are ignored.
func (t *Tracker) RemoveConnection(userID string) (record domain.PresenceRecord, wentOffline bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.users[userID]
	if !ok {
		return domain.PresenceRecord{}, false
	}

	e.conns--
	if e.conns > 0 {
		return e.record, false
	}

	e.record.LastSeen = t.now()
	delete(t.users, userID)
	t.bus.Broadcast(domain.UserLeft{User: e.record})
	return e.record, true
}

// IsOnline reports whether the user has at least one live connection.
func (t *Tracker) IsOnline(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.users[userID]
	return ok
}

// ListOnline returns a snapshot of all online users, ordered by username.
func (t *Tracker) ListOnline() []domain.PresenceRecord {
	t.mu.RLock()
	records := make([]domain.PresenceRecord, 0, len(t.users))
	for _, e := range t.users {
		records = append(records, e.record)
	}
	t.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Username < records[j].Username
	})
	return records
}
