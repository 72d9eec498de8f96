// Package store persists chat messages. The engine only depends on the
// MessageStore interface; the concrete backend is chosen at startup.
package store

import (
	"context"

	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

// History pagination bounds, matching the read API.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// HistoryQuery selects one conversation: a room, or the direct-message
// thread between two users (matched in either direction).
type HistoryQuery struct {
	Room     string
	Sender   string
	Receiver string
	Limit    int
	Offset   int
}

// Normalize clamps Limit into [1, MaxHistoryLimit] and floors Offset at 0.
func (q *HistoryQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// MessageStore is the durable message collaborator. Persist assigns the
// message id and timestamp; the router never fabricates either.
type MessageStore interface {
	Persist(ctx context.Context, msg domain.Message) (domain.Message, error)

	// LoadHistory returns one page of a conversation, newest first.
	LoadHistory(ctx context.Context, q HistoryQuery) ([]domain.Message, error)

	Close() error
}
