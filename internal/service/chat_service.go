package service

import (
	"context"
	"errors"

	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/hub"
	"github.com/Ladinawan-01/LiveChat/internal/registry"
	"github.com/Ladinawan-01/LiveChat/internal/rooms"
	"github.com/Ladinawan-01/LiveChat/internal/router"
	"github.com/Ladinawan-01/LiveChat/internal/typing"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

type chatService struct {
	registry *registry.Registry
	rooms    *rooms.Directory
	router   *router.Router
	typing   *typing.Tracker
}

// NewChatService wires the engine components behind the ChatService
// interface.
func NewChatService(
	reg *registry.Registry,
	d *rooms.Directory,
	rt *router.Router,
	t *typing.Tracker,
) ChatService {
	return &chatService{
		registry: reg,
		rooms:    d,
		router:   rt,
		typing:   t,
	}
}

// HandleConnect registers the anonymous connection and greets it.
func (s *chatService) HandleConnect(_ context.Context, c *hub.Client) error {
	if err := s.registry.Register(c.ID); err != nil {
		c.SendMessage(&domain.ConnStatusMessage{
			Type:      domain.MsgTypeConnStatus,
			Connected: false,
			Message:   "Failed to join chat",
		})
		return err
	}

	return c.SendMessage(&domain.ConnStatusMessage{
		Type:      domain.MsgTypeConnStatus,
		Connected: true,
		Message:   "Connected to chat server",
	})
}

func (s *chatService) HandleJoin(_ context.Context, c *hub.Client, userID, username, avatar string) error {
	if userID == "" || username == "" {
		return s.reject(c, domain.ErrMissingIdentity)
	}

	if err := s.registry.BindUser(c.ID, userID, username, avatar); err != nil {
		return s.reject(c, err)
	}
	return nil
}

func (s *chatService) HandleCreateRoom(_ context.Context, c *hub.Client, room string, isPrivate bool) error {
	userID, _, err := s.registry.UserOf(c.ID)
	if err != nil {
		return s.reject(c, err)
	}

	if _, err := s.rooms.CreateRoom(room, userID, isPrivate); err != nil {
		return s.reject(c, err)
	}
	return nil
}

func (s *chatService) HandleJoinRoom(_ context.Context, c *hub.Client, room string) error {
	if err := s.registry.JoinRoom(c.ID, room); err != nil {
		return s.reject(c, err)
	}

	return c.SendMessage(&domain.RoomJoinedMessage{
		Type: domain.MsgTypeRoomJoined,
		Room: room,
	})
}

func (s *chatService) HandleLeaveRoom(_ context.Context, c *hub.Client, room string) error {
	if err := s.registry.LeaveRoom(c.ID, room); err != nil {
		return s.reject(c, err)
	}
	return nil
}

func (s *chatService) HandleSendMessage(ctx context.Context, c *hub.Client, room, receiver, text string) error {
	userID, username, err := s.registry.UserOf(c.ID)
	if err != nil {
		return s.reject(c, err)
	}

	_, err = s.router.Send(ctx, router.Intent{
		Sender:     userID,
		SenderName: username,
		Room:       room,
		Receiver:   receiver,
		Text:       text,
	})
	if err != nil {
		return s.reject(c, err)
	}
	return nil
}

func (s *chatService) HandleTyping(_ context.Context, c *hub.Client, isTyping bool) error {
	userID, username, err := s.registry.UserOf(c.ID)
	if err != nil {
		return s.reject(c, err)
	}

	s.typing.SetTyping(userID, username, isTyping)
	return nil
}

// HandleDisconnect runs full unregister cleanup. Idempotent, so it is safe
// for both an explicit user:leave and the transport-level disconnect to
// land here.
func (s *chatService) HandleDisconnect(_ context.Context, c *hub.Client) error {
	s.registry.Unregister(c.ID)
	return nil
}

// reject maps an engine error to its wire code and reports it to the
// originating connection only.
func (s *chatService) reject(c *hub.Client, err error) error {
	code := domain.ErrCodeInternalError
	switch {
	case errors.Is(err, domain.ErrUnknownConnection), errors.Is(err, domain.ErrUnboundUser):
		code = domain.ErrCodeNotJoined
	case errors.Is(err, domain.ErrRoomNotFound):
		code = domain.ErrCodeRoomNotFound
	case errors.Is(err, domain.ErrRoomExists):
		code = domain.ErrCodeRoomExists
	case errors.Is(err, domain.ErrInvalidRoomName), errors.Is(err, domain.ErrMissingIdentity):
		code = domain.ErrCodeBadRequest
	case errors.Is(err, domain.ErrNotMember):
		code = domain.ErrCodeNotMember
	case errors.Is(err, domain.ErrCannotLeaveDefaultRoom):
		code = domain.ErrCodeDefaultRoom
	case errors.Is(err, domain.ErrEmptyBody):
		code = domain.ErrCodeEmptyMessage
	case errors.Is(err, domain.ErrBodyTooLong):
		code = domain.ErrCodeMessageTooLong
	case errors.Is(err, domain.ErrMissingAddressing), errors.Is(err, domain.ErrAmbiguousAddressing):
		code = domain.ErrCodeBadAddressing
	case errors.Is(err, domain.ErrPersistenceFailed):
		code = domain.ErrCodeStoreUnavailable
	}

	log.L().Debug().Err(err).Str(log.FieldConnID, c.ID).Str("code", code).Msg("intent rejected")
	c.SendMessage(domain.NewErrorMessage(code, err.Error()))
	return err
}
