// Package cache caches history pages in front of the message store.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/store"
)

// ErrCacheMiss is returned when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

// HistoryResult is one cached history page, newest first.
type HistoryResult struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

// HistoryCache caches history pages keyed by conversation and page window.
type HistoryCache interface {
	BuildKey(q store.HistoryQuery) string
	Get(ctx context.Context, key string) (*HistoryResult, error)
	Set(ctx context.Context, key string, result *HistoryResult, ttl time.Duration) error
	Close() error
}
