package domain

// Event is an asynchronous push published by the engine for the transport
// layer to deliver. The event type doubles as the wire event name.
type Event interface {
	EventType() string
}

// Event type names. These match the event vocabulary the browser client
// already listens for.
const (
	EventUserJoined     = "user:joined"
	EventUserLeft       = "user:left"
	EventOnlineUsers    = "users:online"
	EventRoomCreated    = "room:created"
	EventRoomsList      = "rooms:list"
	EventUserJoinedRoom = "userJoinedRoom"
	EventUserLeftRoom   = "userLeftRoom"
	EventNewMessage     = "newMessage"
	EventUserTyping     = "userTyping"
)

// UserJoined announces a user coming online (first live connection).
type UserJoined struct {
	User PresenceRecord `json:"user"`
}

func (UserJoined) EventType() string { return EventUserJoined }

// UserLeft announces a user going offline (last live connection gone).
type UserLeft struct {
	User PresenceRecord `json:"user"`
}

func (UserLeft) EventType() string { return EventUserLeft }

// OnlineUsers is the full online-user snapshot, sent to a connection
// right after its user identity is bound.
type OnlineUsers struct {
	Users []PresenceRecord `json:"users"`
}

func (OnlineUsers) EventType() string { return EventOnlineUsers }

// RoomCreated announces a new room to every connection.
type RoomCreated struct {
	Room Room `json:"room"`
}

func (RoomCreated) EventType() string { return EventRoomCreated }

// RoomsList is the full room snapshot, sent to a connection on bind.
type RoomsList struct {
	Rooms []Room `json:"rooms"`
}

func (RoomsList) EventType() string { return EventRoomsList }

// UserJoinedRoom notifies existing room members of a new member.
type UserJoinedRoom struct {
	UserID   string `json:"userId"`
	Username string `json:"user"`
	Room     string `json:"room"`
}

func (UserJoinedRoom) EventType() string { return EventUserJoinedRoom }

// UserLeftRoom notifies remaining room members of a departure.
type UserLeftRoom struct {
	UserID   string `json:"userId"`
	Username string `json:"user"`
	Room     string `json:"room"`
}

func (UserLeftRoom) EventType() string { return EventUserLeftRoom }

// NewMessage carries a persisted message to the connections it fans out to.
type NewMessage struct {
	Message Message `json:"message"`
}

func (NewMessage) EventType() string { return EventNewMessage }

// UserTyping announces a typing-state change.
type UserTyping struct {
	UserID   string `json:"userId"`
	Username string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}

func (UserTyping) EventType() string { return EventUserTyping }
