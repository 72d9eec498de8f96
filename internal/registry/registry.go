// Package registry is the authoritative table of live connections, their
// bound user identities, and their room memberships. It drives presence
// and typing cleanup on disconnect.
package registry

import (
	"sync"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/presence"
	"github.com/Ladinawan-01/LiveChat/internal/rooms"
	"github.com/Ladinawan-01/LiveChat/internal/typing"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

type connection struct {
	id       string
	userID   string
	username string
	avatar   string
	rooms    map[string]struct{}
}

func (c *connection) bound() bool { return c.userID != "" }

// Registry owns the connection table. All mutations serialize through its
// mutex; calls into the room directory and presence tracker happen while
// it is held, so cross-table state (membership sets vs member counts,
// presence vs bindings) is never observed half-applied.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*connection
	rooms    *rooms.Directory
	presence *presence.Tracker
	typing   *typing.Tracker
	bus      *bus.Bus
}

// New creates an empty Registry wired to its collaborators.
func New(d *rooms.Directory, p *presence.Tracker, t *typing.Tracker, b *bus.Bus) *Registry {
	return &Registry{
		conns:    make(map[string]*connection),
		rooms:    d,
		presence: p,
		typing:   t,
		bus:      b,
	}
}

// Register creates an anonymous connection entry. The transport layer owns
// connection ids, so a duplicate indicates a bug upstream.
func (r *Registry) Register(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connID]; exists {
		return domain.ErrDuplicateConnection
	}
	r.conns[connID] = &connection{
		id:    connID,
		rooms: make(map[string]struct{}),
	}
	log.L().Debug().Str(log.FieldConnID, connID).Msg("connection registered")
	return nil
}

// BindUser attaches a user identity to a registered connection, brings the
// user online, auto-joins the default room, and pushes the online-user and
// room snapshots to the joining connection. Re-binding the same identity is
// a refresh: the presence refcount still counts this connection once.
// Binding a different identity releases the previous one first.
func (r *Registry) BindUser(connID, userID, username, avatar string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return domain.ErrUnknownConnection
	}

	switch {
	case !c.bound():
		r.presence.AddConnection(userID, username, avatar)
	case c.userID != userID:
		if _, wentOffline := r.presence.RemoveConnection(c.userID); wentOffline {
			r.typing.Clear(c.userID)
		}
		r.presence.AddConnection(userID, username, avatar)
	default:
		// Same identity re-joining on the same connection.
	}

	c.userID = userID
	c.username = username
	c.avatar = avatar

	defaultRoom := r.rooms.DefaultRoom()
	joined, err := r.rooms.AddMember(defaultRoom, connID)
	if err == nil && joined {
		c.rooms[defaultRoom] = struct{}{}
		r.notifyRoomPeers(domain.UserJoinedRoom{
			UserID:   userID,
			Username: username,
			Room:     defaultRoom,
		}, defaultRoom, connID)
	}

	r.bus.PublishTo(domain.OnlineUsers{Users: r.presence.ListOnline()}, []string{connID})
	r.bus.PublishTo(domain.RoomsList{Rooms: r.rooms.ListRooms()}, []string{connID})

	log.L().Info().
		Str(log.FieldConnID, connID).
		Str(log.FieldUserID, userID).
		Str(log.FieldUsername, username).
		Msg("user bound to connection")
	return nil
}

// JoinRoom adds the connection to a room. Joining a room the connection is
// already in is an idempotent no-op. Remaining members are notified.
func (r *Registry) JoinRoom(connID, room string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return domain.ErrUnknownConnection
	}
	if !c.bound() {
		return domain.ErrUnboundUser
	}

	joined, err := r.rooms.AddMember(room, connID)
	if err != nil {
		return err
	}
	if !joined {
		return nil
	}
	c.rooms[room] = struct{}{}

	r.notifyRoomPeers(domain.UserJoinedRoom{
		UserID:   c.userID,
		Username: c.username,
		Room:     room,
	}, room, connID)

	log.L().Info().
		Str(log.FieldConnID, connID).
		Str(log.FieldUsername, c.username).
		Str(log.FieldRoom, room).
		Msg("joined room")
	return nil
}

// LeaveRoom removes the connection from a room. The default room cannot be
// left explicitly; it is only vacated on disconnect.
func (r *Registry) LeaveRoom(connID, room string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return domain.ErrUnknownConnection
	}
	if room == r.rooms.DefaultRoom() {
		return domain.ErrCannotLeaveDefaultRoom
	}
	if _, member := c.rooms[room]; !member {
		return domain.ErrNotMember
	}

	if err := r.rooms.RemoveMember(room, connID); err != nil {
		return err
	}
	delete(c.rooms, room)

	r.notifyRoomPeers(domain.UserLeftRoom{
		UserID:   c.userID,
		Username: c.username,
		Room:     room,
	}, room, connID)

	log.L().Info().
		Str(log.FieldConnID, connID).
		Str(log.FieldUsername, c.username).
		Str(log.FieldRoom, room).
		Msg("left room")
	return nil
}

// Unregister removes the connection, vacates every room it was in (the
// default-room restriction does not apply here), and, when this was the
// user's last live connection, takes the user offline and clears any
// typing flag. Idempotent: a second call is a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)

	for _, room := range r.rooms.RemoveFromAll(connID) {
		r.notifyRoomPeers(domain.UserLeftRoom{
			UserID:   c.userID,
			Username: c.username,
			Room:     room,
		}, room, connID)
	}

	if c.bound() {
		if _, wentOffline := r.presence.RemoveConnection(c.userID); wentOffline {
			r.typing.Clear(c.userID)
		}
	}

	log.L().Info().
		Str(log.FieldConnID, connID).
		Str(log.FieldUsername, c.username).
		Msg("connection unregistered")
}

// UserOf returns the identity bound to the connection.
func (r *Registry) UserOf(connID string) (userID, username string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	if !ok {
		return "", "", domain.ErrUnknownConnection
	}
	if !c.bound() {
		return "", "", domain.ErrUnboundUser
	}
	return c.userID, c.username, nil
}

// ConnectionsFor returns the ids of every live connection bound to the
// user. An offline user yields nil.
func (r *Registry) ConnectionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, c := range r.conns {
		if c.userID == userID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Rooms returns a snapshot of the rooms the connection has joined.
func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(c.rooms))
	for name := range c.rooms {
		names = append(names, name)
	}
	return names
}

// notifyRoomPeers publishes evt to every member of the room except the
// acting connection. Caller holds r.mu.
func (r *Registry) notifyRoomPeers(evt domain.Event, room, exclude string) {
	members := r.rooms.Members(room)
	targets := members[:0]
	for _, id := range members {
		if id != exclude {
			targets = append(targets, id)
		}
	}
	r.bus.PublishTo(evt, targets)
}
