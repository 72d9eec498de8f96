package typing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

type typingRecorder struct {
	mu     sync.Mutex
	events []domain.UserTyping
}

func (r *typingRecorder) record(evt domain.Event, _ []string) {
	if typing, ok := evt.(domain.UserTyping); ok {
		r.mu.Lock()
		r.events = append(r.events, typing)
		r.mu.Unlock()
	}
}

func (r *typingRecorder) all() []domain.UserTyping {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.UserTyping(nil), r.events...)
}

func newTestTracker() (*Tracker, *typingRecorder) {
	b := bus.New()
	rec := &typingRecorder{}
	b.SubscribeAll(rec.record)
	return New(b), rec
}

func TestSetTypingBroadcasts(t *testing.T) {
	tracker, rec := newTestTracker()

	tracker.SetTyping("u1", "alice", true)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Username)
	assert.True(t, events[0].IsTyping)

	typing := tracker.ListTyping()
	require.Len(t, typing, 1)
	assert.Equal(t, "u1", typing[0].UserID)
}

func TestStaleRecordReadsAsNotTyping(t *testing.T) {
	tracker, _ := newTestTracker()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tracker.now = func() time.Time { return now }

	tracker.SetTyping("u1", "alice", true)

	now = base.Add(domain.TypingExpiry - time.Millisecond)
	assert.Len(t, tracker.ListTyping(), 1)

	// Past the window the record is logically stale even though it has
	// not been purged.
	now = base.Add(domain.TypingExpiry)
	assert.Empty(t, tracker.ListTyping())
}

func TestStopTypingNotReported(t *testing.T) {
	tracker, _ := newTestTracker()

	tracker.SetTyping("u1", "alice", true)
	tracker.SetTyping("u1", "alice", false)

	assert.Empty(t, tracker.ListTyping())
}

func TestClearBroadcastsStopForActiveRecord(t *testing.T) {
	tracker, rec := newTestTracker()

	tracker.SetTyping("u1", "alice", true)
	tracker.Clear("u1")

	events := rec.all()
	require.Len(t, events, 2)
	assert.False(t, events[1].IsTyping)
	assert.Empty(t, tracker.ListTyping())
}

func TestClearUnknownUserIsSilent(t *testing.T) {
	tracker, rec := newTestTracker()

	tracker.Clear("ghost")
	assert.Empty(t, rec.all())
}

func TestSweepPurgesExpiredAndAnnouncesStop(t *testing.T) {
	tracker, rec := newTestTracker()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tracker.now = func() time.Time { return now }

	tracker.SetTyping("u1", "alice", true)
	tracker.SetTyping("u2", "bob", true)

	now = base.Add(domain.TypingExpiry + time.Second)
	tracker.sweep()

	events := rec.all()
	require.Len(t, events, 4)
	stops := 0
	for _, e := range events[2:] {
		assert.False(t, e.IsTyping)
		stops++
	}
	assert.Equal(t, 2, stops)

	// Purged for real, not just filtered at read time.
	tracker.mu.RLock()
	assert.Empty(t, tracker.byUser)
	tracker.mu.RUnlock()
}

func TestSweepKeepsFreshRecords(t *testing.T) {
	tracker, _ := newTestTracker()

	tracker.SetTyping("u1", "alice", true)
	tracker.sweep()

	assert.Len(t, tracker.ListTyping(), 1)
}

func TestRefreshExtendsWindow(t *testing.T) {
	tracker, _ := newTestTracker()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tracker.now = func() time.Time { return now }

	tracker.SetTyping("u1", "alice", true)
	now = base.Add(3 * time.Second)
	tracker.SetTyping("u1", "alice", true)

	now = base.Add(7 * time.Second)
	assert.Len(t, tracker.ListTyping(), 1)
}
