// Package typing maintains the short-lived "user is composing" flags.
package typing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

// Tracker upserts one typing flag per user. Flags expire after
// domain.TypingExpiry: readers apply the staleness check themselves, and a
// background sweep purges (and announces the end of) expired flags left
// behind by clients that never sent a stop.
type Tracker struct {
	mu     sync.RWMutex
	byUser map[string]domain.TypingStatus
	bus    *bus.Bus
	now    func() time.Time
}

// New creates an empty Tracker publishing on b.
func New(b *bus.Bus) *Tracker {
	return &Tracker{
		byUser: make(map[string]domain.TypingStatus),
		bus:    b,
		now:    time.Now,
	}
}

// SetTyping upserts the user's flag and broadcasts UserTyping. A start
// refreshes the expiry window.
func (t *Tracker) SetTyping(userID, username string, isTyping bool) {
	t.mu.Lock()
	t.byUser[userID] = domain.TypingStatus{
		UserID:     userID,
		Username:   username,
		IsTyping:   isTyping,
		LastTyping: t.now(),
	}
	t.bus.Broadcast(domain.UserTyping{UserID: userID, Username: username, IsTyping: isTyping})
	t.mu.Unlock()
}

// Clear removes the user's record entirely. If the user was still showing
// as typing, a stop is broadcast so peers do not keep a stuck indicator.
// Used on disconnect.
func (t *Tracker) Clear(userID string) {
	t.mu.Lock()
	status, ok := t.byUser[userID]
	delete(t.byUser, userID)
	if ok && status.Active(t.now()) {
		t.bus.Broadcast(domain.UserTyping{UserID: userID, Username: status.Username, IsTyping: false})
	}
	t.mu.Unlock()
}

// ListTyping returns users currently typing, the staleness window already
// applied, ordered by username.
func (t *Tracker) ListTyping() []domain.TypingStatus {
	now := t.now()

	t.mu.RLock()
	list := make([]domain.TypingStatus, 0, len(t.byUser))
	for _, status := range t.byUser {
		if status.Active(now) {
			list = append(list, status)
		}
	}
	t.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Username < list[j].Username
	})
	return list
}

// Run sweeps expired records until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *Tracker) sweep() {
	now := t.now()

	t.mu.Lock()
	for userID, status := range t.byUser {
		if now.Sub(status.LastTyping) < domain.TypingExpiry {
			continue
		}
		delete(t.byUser, userID)
		if status.IsTyping {
			// The client went away mid-typing; announce the stop.
			t.bus.Broadcast(domain.UserTyping{UserID: userID, Username: status.Username, IsTyping: false})
			log.L().Debug().Str(log.FieldUserID, userID).Msg("typing flag expired")
		}
	}
	t.mu.Unlock()
}
