package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Ladinawan-01/LiveChat/internal/config"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/hub"
	"github.com/Ladinawan-01/LiveChat/internal/service"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades websocket connections and dispatches their inbound
// intents to the chat service.
type WSHandler struct {
	hub     *hub.Hub
	service service.ChatService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

// Handle upgrades the request and starts the connection's pumps.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	h.hub.Register(client)

	if err := h.service.HandleConnect(context.Background(), client); err != nil {
		log.L().Error().Err(err).Str(log.FieldConnID, client.ID).Msg("connect failed")
		h.hub.Unregister(client)
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleClose)
}

func (h *WSHandler) handleClose(client *hub.Client) {
	if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
		log.L().Error().Err(err).Str(log.FieldConnID, client.ID).Msg("disconnect cleanup failed")
	}
}

// handleMessage dispatches one inbound frame. Every rejection is reported
// to this connection only; a failure here never touches other connections.
func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeJoin:
		var msg domain.JoinMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid user:join message"))
			return
		}
		if err := h.service.HandleJoin(ctx, client, msg.UserID, msg.Username, msg.Avatar); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("join rejected")
		}

	case domain.MsgTypeCreateRoom:
		var msg domain.CreateRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid createRoom message"))
			return
		}
		if err := h.service.HandleCreateRoom(ctx, client, msg.Room, msg.IsPrivate); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("createRoom rejected")
		}

	case domain.MsgTypeJoinRoom:
		var msg domain.RoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid joinRoom message"))
			return
		}
		if err := h.service.HandleJoinRoom(ctx, client, msg.Room); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("joinRoom rejected")
		}

	case domain.MsgTypeLeaveRoom:
		var msg domain.RoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid leaveRoom message"))
			return
		}
		if err := h.service.HandleLeaveRoom(ctx, client, msg.Room); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("leaveRoom rejected")
		}

	case domain.MsgTypeSendMessage:
		var msg domain.SendMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid sendMessage message"))
			return
		}
		if err := h.service.HandleSendMessage(ctx, client, msg.Room, msg.Receiver, msg.Text); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("sendMessage rejected")
		}

	case domain.MsgTypeTyping:
		var msg domain.TypingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid typing message"))
			return
		}
		if err := h.service.HandleTyping(ctx, client, msg.IsTyping); err != nil {
			log.L().Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("typing rejected")
		}

	case domain.MsgTypeLeave:
		if err := h.service.HandleDisconnect(ctx, client); err != nil {
			log.L().Error().Err(err).Str(log.FieldConnID, client.ID).Msg("leave cleanup failed")
		}

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}
