package domain

// WebSocket message types from client.
const (
	MsgTypeJoin        = "user:join"
	MsgTypeCreateRoom  = "createRoom"
	MsgTypeJoinRoom    = "joinRoom"
	MsgTypeLeaveRoom   = "leaveRoom"
	MsgTypeSendMessage = "sendMessage"
	MsgTypeTyping      = "typing"
	MsgTypeLeave       = "user:leave"
)

// WebSocket message types to client.
const (
	MsgTypeConnStatus = "connection:status"
	MsgTypeRoomJoined = "roomJoined"
	MsgTypeError      = "error"
)

// Error codes reported back to the originating connection.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotJoined        = "NOT_JOINED"
	ErrCodeRoomNotFound     = "ROOM_NOT_FOUND"
	ErrCodeRoomExists       = "ROOM_EXISTS"
	ErrCodeNotMember        = "NOT_MEMBER"
	ErrCodeDefaultRoom      = "DEFAULT_ROOM"
	ErrCodeEmptyMessage     = "EMPTY_MESSAGE"
	ErrCodeMessageTooLong   = "MESSAGE_TOO_LONG"
	ErrCodeBadAddressing    = "BAD_ADDRESSING"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// BaseMessage is the envelope shared by all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// JoinMessage binds a user identity to the connection.
type JoinMessage struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// CreateRoomMessage asks for a new room.
type CreateRoomMessage struct {
	Type      string `json:"type"`
	Room      string `json:"room"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
}

// RoomMessage joins or leaves a room, depending on Type.
type RoomMessage struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// SendMessage carries an outbound chat message intent. Exactly one of
// Room or Receiver must be set.
type SendMessage struct {
	Type     string `json:"type"`
	Room     string `json:"room,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Text     string `json:"text"`
}

// TypingMessage updates the sender's typing flag.
type TypingMessage struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

// Server -> Client messages

// ConnStatusMessage greets a connection after the transport accepts it.
type ConnStatusMessage struct {
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// RoomJoinedMessage confirms a successful room join to the joining
// connection itself.
type RoomJoinedMessage struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// EventMessage wraps an engine event for delivery. Type is the event's
// wire name and Payload the event itself.
type EventMessage struct {
	Type    string `json:"type"`
	Payload Event  `json:"payload"`
}

// ErrorMessage reports a rejected intent to the originating connection.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage creates a new error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
