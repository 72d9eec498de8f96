package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/presence"
	"github.com/Ladinawan-01/LiveChat/internal/rooms"
	"github.com/Ladinawan-01/LiveChat/internal/typing"
)

type captured struct {
	event   domain.Event
	targets []string
}

type recorder struct {
	mu     sync.Mutex
	events []captured
}

func (r *recorder) record(evt domain.Event, targets []string) {
	r.mu.Lock()
	r.events = append(r.events, captured{event: evt, targets: targets})
	r.mu.Unlock()
}

func (r *recorder) ofType(eventType string) []captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []captured
	for _, c := range r.events {
		if c.event.EventType() == eventType {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	registry *Registry
	rooms    *rooms.Directory
	presence *presence.Tracker
	typing   *typing.Tracker
	rec      *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := bus.New()
	rec := &recorder{}
	b.SubscribeAll(rec.record)

	d := rooms.New(b, "general")
	p := presence.New(b)
	tt := typing.New(b)
	return &fixture{
		registry: New(d, p, tt, b),
		rooms:    d,
		presence: p,
		typing:   tt,
		rec:      rec,
	}
}

// join registers a connection and binds a user to it.
func (f *fixture) join(t *testing.T, connID, userID, username string) {
	t.Helper()
	require.NoError(t, f.registry.Register(connID))
	require.NoError(t, f.registry.BindUser(connID, userID, username, ""))
}

func TestRegisterDuplicateConnection(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.registry.Register("c1"))
	assert.ErrorIs(t, f.registry.Register("c1"), domain.ErrDuplicateConnection)
}

func TestBindUserUnknownConnection(t *testing.T) {
	f := newFixture(t)

	err := f.registry.BindUser("ghost", "u1", "alice", "")
	assert.ErrorIs(t, err, domain.ErrUnknownConnection)
}

func TestBindUserAutoJoinsDefaultRoom(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")

	assert.Equal(t, 1, f.rooms.MemberCount("general"))
	assert.Equal(t, []string{"general"}, f.registry.Rooms("c1"))
	assert.True(t, f.presence.IsOnline("u1"))
}

func TestBindUserPushesSnapshotsToJoiningConnection(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")

	online := f.rec.ofType(domain.EventOnlineUsers)
	require.Len(t, online, 1)
	assert.Equal(t, []string{"c1"}, online[0].targets)
	assert.Len(t, online[0].event.(domain.OnlineUsers).Users, 1)

	roomList := f.rec.ofType(domain.EventRoomsList)
	require.Len(t, roomList, 1)
	assert.Equal(t, []string{"c1"}, roomList[0].targets)
}

func TestJoinRoomErrors(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.registry.JoinRoom("ghost", "general"), domain.ErrUnknownConnection)

	require.NoError(t, f.registry.Register("c1"))
	assert.ErrorIs(t, f.registry.JoinRoom("c1", "general"), domain.ErrUnboundUser)

	require.NoError(t, f.registry.BindUser("c1", "u1", "alice", ""))
	assert.ErrorIs(t, f.registry.JoinRoom("c1", "nowhere"), domain.ErrRoomNotFound)
}

func TestRebindSameUserKeepsPresenceBalanced(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")

	// A second user:join on the same connection must not bump the
	// presence refcount.
	require.NoError(t, f.registry.BindUser("c1", "u1", "alice", ""))
	assert.Len(t, f.rec.ofType(domain.EventUserJoined), 1)
	assert.Equal(t, 1, f.rooms.MemberCount("general"))

	f.registry.Unregister("c1")
	assert.False(t, f.presence.IsOnline("u1"))
	assert.Empty(t, f.presence.ListOnline())
	assert.Len(t, f.rec.ofType(domain.EventUserLeft), 1)
}

func TestRebindDifferentUserReleasesPreviousIdentity(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")

	require.NoError(t, f.registry.BindUser("c1", "u2", "bob", ""))
	assert.False(t, f.presence.IsOnline("u1"))
	assert.True(t, f.presence.IsOnline("u2"))

	f.registry.Unregister("c1")
	assert.False(t, f.presence.IsOnline("u2"))
	assert.Empty(t, f.presence.ListOnline())
}

func TestJoinRoomTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	f.join(t, "c2", "u2", "bob")
	_, err := f.rooms.CreateRoom("team", "u1", false)
	require.NoError(t, err)
	require.NoError(t, f.registry.JoinRoom("c2", "team"))

	require.NoError(t, f.registry.JoinRoom("c1", "team"))
	require.NoError(t, f.registry.JoinRoom("c1", "team"))

	assert.Equal(t, 2, f.rooms.MemberCount("team"))
	// c2's join had no peers to tell; c1's first join notified c2; the
	// repeat notified nobody.
	joins := f.rec.ofType(domain.EventUserJoinedRoom)
	count := 0
	for _, c := range joins {
		if c.event.(domain.UserJoinedRoom).Room == "team" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestJoinRoomNotifiesPeersOnly(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	f.join(t, "c2", "u2", "bob")
	_, err := f.rooms.CreateRoom("team", "u1", false)
	require.NoError(t, err)

	require.NoError(t, f.registry.JoinRoom("c1", "team"))
	require.NoError(t, f.registry.JoinRoom("c2", "team"))

	var teamJoins []captured
	for _, c := range f.rec.ofType(domain.EventUserJoinedRoom) {
		if c.event.(domain.UserJoinedRoom).Room == "team" {
			teamJoins = append(teamJoins, c)
		}
	}
	require.Len(t, teamJoins, 1, "first join has no peers to notify")
	assert.Equal(t, []string{"c1"}, teamJoins[0].targets)
	assert.Equal(t, "bob", teamJoins[0].event.(domain.UserJoinedRoom).Username)
}

func TestLeaveRoom(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	f.join(t, "c2", "u2", "bob")
	_, err := f.rooms.CreateRoom("team", "u1", false)
	require.NoError(t, err)
	require.NoError(t, f.registry.JoinRoom("c1", "team"))
	require.NoError(t, f.registry.JoinRoom("c2", "team"))

	require.NoError(t, f.registry.LeaveRoom("c1", "team"))
	assert.Equal(t, 1, f.rooms.MemberCount("team"))

	var teamLeaves []captured
	for _, c := range f.rec.ofType(domain.EventUserLeftRoom) {
		if c.event.(domain.UserLeftRoom).Room == "team" {
			teamLeaves = append(teamLeaves, c)
		}
	}
	require.Len(t, teamLeaves, 1)
	assert.Equal(t, []string{"c2"}, teamLeaves[0].targets)
}

func TestCannotLeaveDefaultRoom(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")

	assert.ErrorIs(t, f.registry.LeaveRoom("c1", "general"), domain.ErrCannotLeaveDefaultRoom)
	assert.Equal(t, 1, f.rooms.MemberCount("general"))
}

func TestLeaveRoomNotMember(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	_, err := f.rooms.CreateRoom("team", "u1", false)
	require.NoError(t, err)

	assert.ErrorIs(t, f.registry.LeaveRoom("c1", "team"), domain.ErrNotMember)
}

func TestUnregisterCleansUpEverything(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	f.join(t, "c2", "u2", "bob")
	_, err := f.rooms.CreateRoom("team", "u1", false)
	require.NoError(t, err)
	require.NoError(t, f.registry.JoinRoom("c1", "team"))
	f.typing.SetTyping("u1", "alice", true)

	f.registry.Unregister("c1")

	assert.Equal(t, 1, f.rooms.MemberCount("general"))
	assert.Equal(t, 0, f.rooms.MemberCount("team"))
	assert.False(t, f.presence.IsOnline("u1"))
	assert.Empty(t, f.typing.ListTyping(), "typing flag cleared on last disconnect")

	left := f.rec.ofType(domain.EventUserLeft)
	require.Len(t, left, 1, "UserLeft published exactly once")
	assert.Equal(t, "u1", left[0].event.(domain.UserLeft).User.UserID)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")

	f.registry.Unregister("c1")
	before := len(f.rec.ofType(domain.EventUserLeft))
	f.registry.Unregister("c1")

	assert.Equal(t, before, len(f.rec.ofType(domain.EventUserLeft)))
	assert.Equal(t, 0, f.rooms.MemberCount("general"))
}

func TestMultiTabUserStaysOnline(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	f.join(t, "c2", "u1", "alice")

	assert.Equal(t, 2, f.rooms.MemberCount("general"))

	f.registry.Unregister("c1")
	assert.True(t, f.presence.IsOnline("u1"))
	assert.Empty(t, f.rec.ofType(domain.EventUserLeft))

	f.registry.Unregister("c2")
	assert.False(t, f.presence.IsOnline("u1"))
	assert.Len(t, f.rec.ofType(domain.EventUserLeft), 1)
}

func TestUserOf(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.registry.UserOf("ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownConnection)

	require.NoError(t, f.registry.Register("c1"))
	_, _, err = f.registry.UserOf("c1")
	assert.ErrorIs(t, err, domain.ErrUnboundUser)

	require.NoError(t, f.registry.BindUser("c1", "u1", "alice", ""))
	userID, username, err := f.registry.UserOf("c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "alice", username)
}

func TestConnectionsFor(t *testing.T) {
	f := newFixture(t)
	f.join(t, "c1", "u1", "alice")
	f.join(t, "c2", "u1", "alice")
	f.join(t, "c3", "u2", "bob")

	assert.ElementsMatch(t, []string{"c1", "c2"}, f.registry.ConnectionsFor("u1"))
	assert.Nil(t, f.registry.ConnectionsFor("offline"))
}

func TestMemberCountConsistentUnderConcurrentJoinLeave(t *testing.T) {
	f := newFixture(t)
	_, err := f.rooms.CreateRoom("team", domain.SystemUser, false)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		connID := fmt.Sprintf("c%d", i)
		userID := fmt.Sprintf("u%d", i)
		f.join(t, connID, userID, userID)

		wg.Add(1)
		go func(connID string) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(t, f.registry.JoinRoom(connID, "team"))
				count := f.rooms.MemberCount("team")
				assert.GreaterOrEqual(t, count, 1)
				assert.LessOrEqual(t, count, workers)
				assert.NoError(t, f.registry.LeaveRoom(connID, "team"))
			}
		}(connID)
	}
	wg.Wait()

	assert.Equal(t, 0, f.rooms.MemberCount("team"))
	assert.Equal(t, workers, f.rooms.MemberCount("general"))
}
