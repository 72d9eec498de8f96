package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

func newDirectory() *Directory {
	return New(bus.New(), "general")
}

func TestDefaultRoomAlwaysExists(t *testing.T) {
	d := newDirectory()

	assert.True(t, d.Exists("general"))
	assert.Equal(t, "general", d.DefaultRoom())

	list := d.ListRooms()
	require.Len(t, list, 1)
	assert.Equal(t, domain.SystemUser, list[0].CreatedBy)
}

func TestCreateRoom(t *testing.T) {
	d := newDirectory()

	room, err := d.CreateRoom("  team  ", "u1", true)
	require.NoError(t, err)
	assert.Equal(t, "team", room.Name)
	assert.Equal(t, "u1", room.CreatedBy)
	assert.True(t, room.IsPrivate)
	assert.Equal(t, 0, d.MemberCount("team"))
}

func TestCreateRoomRejectsEmptyName(t *testing.T) {
	d := newDirectory()

	_, err := d.CreateRoom("   ", "u1", false)
	assert.ErrorIs(t, err, domain.ErrInvalidRoomName)
}

func TestCreateRoomRejectsDuplicate(t *testing.T) {
	d := newDirectory()

	_, err := d.CreateRoom("team", "u1", false)
	require.NoError(t, err)

	_, err = d.CreateRoom("team", "u2", false)
	assert.ErrorIs(t, err, domain.ErrRoomExists)

	// The duplicate attempt must not touch existing state.
	assert.Equal(t, 0, d.MemberCount("team"))
	assert.Len(t, d.ListRooms(), 2)
}

func TestRoomNamesAreCaseSensitive(t *testing.T) {
	d := newDirectory()

	_, err := d.CreateRoom("Team", "u1", false)
	require.NoError(t, err)
	_, err = d.CreateRoom("team", "u1", false)
	assert.NoError(t, err)
}

func TestCreateRoomBroadcastsRoomCreated(t *testing.T) {
	b := bus.New()
	var created []domain.Event
	b.Subscribe(domain.EventRoomCreated, func(evt domain.Event, targets []string) {
		created = append(created, evt)
		assert.Nil(t, targets)
	})

	d := New(b, "general")
	_, err := d.CreateRoom("team", "u1", false)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, "team", created[0].(domain.RoomCreated).Room.Name)
}

func TestListRoomsOrdering(t *testing.T) {
	d := newDirectory()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	d.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	d.CreateRoom("oldest", "u1", false)
	d.CreateRoom("middle", "u1", false)
	d.CreateRoom("newest", "u1", false)

	list := d.ListRooms()
	require.Len(t, list, 4)
	assert.Equal(t, "general", list[0].Name, "default room is always first")
	assert.Equal(t, "newest", list[1].Name)
	assert.Equal(t, "middle", list[2].Name)
	assert.Equal(t, "oldest", list[3].Name)
}

func TestListRoomsTieBreaksByName(t *testing.T) {
	d := newDirectory()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	d.CreateRoom("beta", "u1", false)
	d.CreateRoom("alpha", "u1", false)

	list := d.ListRooms()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[1].Name)
	assert.Equal(t, "beta", list[2].Name)
}

func TestMembershipBookkeeping(t *testing.T) {
	d := newDirectory()

	joined, err := d.AddMember("general", "c1")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, 1, d.MemberCount("general"))

	// Joining twice is an idempotent no-op.
	joined, err = d.AddMember("general", "c1")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Equal(t, 1, d.MemberCount("general"))

	require.NoError(t, d.RemoveMember("general", "c1"))
	assert.Equal(t, 0, d.MemberCount("general"))
}

func TestAddMemberUnknownRoom(t *testing.T) {
	d := newDirectory()

	_, err := d.AddMember("nowhere", "c1")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRemoveMemberErrors(t *testing.T) {
	d := newDirectory()

	assert.ErrorIs(t, d.RemoveMember("nowhere", "c1"), domain.ErrRoomNotFound)
	assert.ErrorIs(t, d.RemoveMember("general", "c1"), domain.ErrNotMember)
}

func TestRemoveFromAll(t *testing.T) {
	d := newDirectory()
	d.CreateRoom("team", "u1", false)

	d.AddMember("general", "c1")
	d.AddMember("team", "c1")
	d.AddMember("team", "c2")

	removed := d.RemoveFromAll("c1")
	assert.ElementsMatch(t, []string{"general", "team"}, removed)
	assert.Equal(t, 0, d.MemberCount("general"))
	assert.Equal(t, 1, d.MemberCount("team"))

	assert.Empty(t, d.RemoveFromAll("c1"))
}

func TestMemberCountUnknownRoomIsZero(t *testing.T) {
	d := newDirectory()
	assert.Equal(t, 0, d.MemberCount("nowhere"))
}
