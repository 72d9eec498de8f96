package service

import (
	"context"

	"github.com/Ladinawan-01/LiveChat/internal/hub"
)

// ChatService translates client intents into engine operations and reports
// rejections back to the originating connection.
type ChatService interface {
	HandleConnect(ctx context.Context, client *hub.Client) error
	HandleJoin(ctx context.Context, client *hub.Client, userID, username, avatar string) error
	HandleCreateRoom(ctx context.Context, client *hub.Client, room string, isPrivate bool) error
	HandleJoinRoom(ctx context.Context, client *hub.Client, room string) error
	HandleLeaveRoom(ctx context.Context, client *hub.Client, room string) error
	HandleSendMessage(ctx context.Context, client *hub.Client, room, receiver, text string) error
	HandleTyping(ctx context.Context, client *hub.Client, isTyping bool) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error
}
