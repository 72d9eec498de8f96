package domain

import "errors"

// Validation errors: the client sent a malformed or disallowed intent.
var (
	ErrEmptyBody           = errors.New("message body is empty")
	ErrBodyTooLong         = errors.New("message body exceeds maximum length")
	ErrMissingAddressing   = errors.New("message has neither room nor receiver")
	ErrAmbiguousAddressing = errors.New("message has both room and receiver")
	ErrInvalidRoomName     = errors.New("room name is empty")
	ErrMissingIdentity     = errors.New("userId and username are required")
)

// State errors: the operation conflicts with current connection or room state.
var (
	ErrDuplicateConnection    = errors.New("connection id already registered")
	ErrUnknownConnection      = errors.New("connection not registered")
	ErrUnboundUser            = errors.New("no user bound to connection")
	ErrRoomNotFound           = errors.New("room does not exist")
	ErrRoomExists             = errors.New("room already exists")
	ErrNotMember              = errors.New("connection is not a member of room")
	ErrCannotLeaveDefaultRoom = errors.New("cannot leave the default room")
)

// Infrastructure errors.
var (
	// ErrPersistenceFailed wraps message store failures; the send is
	// aborted with no fan-out.
	ErrPersistenceFailed = errors.New("failed to persist message")
)
