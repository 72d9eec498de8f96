// Package rooms maintains the room set and per-room membership.
package rooms

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

type roomEntry struct {
	room    domain.Room
	members map[string]struct{} // connection ids
}

// Directory is the authoritative table of rooms. Membership mutations are
// driven by the connection registry; the directory only does bookkeeping.
type Directory struct {
	mu          sync.RWMutex
	rooms       map[string]*roomEntry
	defaultRoom string
	bus         *bus.Bus
	now         func() time.Time
}

// New creates a Directory seeded with the default room, which always
// exists and can never be removed or left.
func New(b *bus.Bus, defaultRoom string) *Directory {
	d := &Directory{
		rooms:       make(map[string]*roomEntry),
		defaultRoom: defaultRoom,
		bus:         b,
		now:         time.Now,
	}
	d.rooms[defaultRoom] = &roomEntry{
		room: domain.Room{
			Name:      defaultRoom,
			CreatedBy: domain.SystemUser,
			CreatedAt: d.now(),
		},
		members: make(map[string]struct{}),
	}
	return d
}

// DefaultRoom returns the name of the distinguished default room.
func (d *Directory) DefaultRoom() string {
	return d.defaultRoom
}

// CreateRoom adds a new room and broadcasts RoomCreated. The name is
// trimmed; an empty name or an existing room is rejected without mutating
// any state. Room names are case-sensitive.
func (d *Directory) CreateRoom(name, createdBy string, isPrivate bool) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, domain.ErrInvalidRoomName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.rooms[name]; exists {
		return domain.Room{}, domain.ErrRoomExists
	}

	e := &roomEntry{
		room: domain.Room{
			Name:      name,
			CreatedBy: createdBy,
			CreatedAt: d.now(),
			IsPrivate: isPrivate,
		},
		members: make(map[string]struct{}),
	}
	d.rooms[name] = e

	d.bus.Broadcast(domain.RoomCreated{Room: e.room})
	return e.room, nil
}

// Exists reports whether the room is present.
func (d *Directory) Exists(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[name]
	return ok
}

// ListRooms returns a snapshot of all rooms: the default room first, the
// rest newest-first, ties broken by name ascending.
func (d *Directory) ListRooms() []domain.Room {
	d.mu.RLock()
	list := make([]domain.Room, 0, len(d.rooms))
	for _, e := range d.rooms {
		r := e.room
		r.MemberCount = len(e.members)
		list = append(list, r)
	}
	d.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == d.defaultRoom {
			return true
		}
		if list[j].Name == d.defaultRoom {
			return false
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// MemberCount returns the number of connections joined to the room, or 0
// for an unknown room.
func (d *Directory) MemberCount(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if e, ok := d.rooms[name]; ok {
		return len(e.members)
	}
	return 0
}

// Members returns a snapshot of the connection ids joined to the room.
func (d *Directory) Members(name string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.rooms[name]
	if !ok {
		return nil
	}
	members := make([]string, 0, len(e.members))
	for id := range e.members {
		members = append(members, id)
	}
	return members
}

// AddMember joins a connection to the room. Joining a room the connection
// is already in is an idempotent no-op (joined reports false).
func (d *Directory) AddMember(name, connID string) (joined bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.rooms[name]
	if !ok {
		return false, domain.ErrRoomNotFound
	}
	if _, already := e.members[connID]; already {
		return false, nil
	}
	e.members[connID] = struct{}{}
	return true, nil
}

// RemoveMember removes a connection from the room.
func (d *Directory) RemoveMember(name, connID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.rooms[name]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if _, member := e.members[connID]; !member {
		return domain.ErrNotMember
	}
	delete(e.members, connID)
	return nil
}

// RemoveFromAll drops the connection from every room it is in and returns
// the names of the rooms it was removed from. Used on disconnect, where
// the default-room restriction does not apply.
func (d *Directory) RemoveFromAll(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed []string
	for name, e := range d.rooms {
		if _, member := e.members[connID]; member {
			delete(e.members, connID)
			removed = append(removed, name)
		}
	}
	return removed
}
