package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

// MemoryStore is an in-memory MessageStore for local development and
// tests. Not durable across restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Persist(_ context.Context, msg domain.Message) (domain.Message, error) {
	msg.ID = uuid.New().String()
	msg.Timestamp = time.Now().UTC()

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg, nil
}

func (s *MemoryStore) LoadHistory(_ context.Context, q HistoryQuery) ([]domain.Message, error) {
	q.Normalize()
	direct := q.Room == ""

	s.mu.RLock()
	var matched []domain.Message
	// Newest first: walk the append-ordered log backwards.
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if direct {
			if !m.IsDirect() {
				continue
			}
			if !(m.Sender == q.Sender && m.Receiver == q.Receiver) &&
				!(m.Sender == q.Receiver && m.Receiver == q.Sender) {
				continue
			}
		} else if m.Room != q.Room {
			continue
		}
		matched = append(matched, m)
	}
	s.mu.RUnlock()

	if q.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Offset:]
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
