// Package history serves paged conversation history reads, with a cache
// in front of the message store for the frequently re-requested pages.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Ladinawan-01/LiveChat/internal/cache"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/internal/store"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

// Page is one page of conversation history, oldest first for display.
type Page struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"hasMore"`
}

// Service reads history pages. Reads sit entirely outside the engine's
// concurrency discipline: they only touch the store and the cache.
type Service struct {
	store    store.MessageStore
	cache    cache.HistoryCache
	cacheTTL time.Duration
	sf       singleflight.Group
}

// New creates a history Service. cache may be nil to disable caching.
func New(st store.MessageStore, c cache.HistoryCache, cacheTTL time.Duration) *Service {
	return &Service{
		store:    st,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// GetHistory returns one page of the conversation selected by q, oldest
// first. The newest page is always read from the store directly so active
// conversations never serve a stale head; deeper pages go through the
// cache with singleflight collapsing concurrent identical reads.
func (s *Service) GetHistory(ctx context.Context, q store.HistoryQuery) (*Page, error) {
	q.Normalize()

	if s.cache == nil || q.Offset == 0 {
		messages, err := s.store.LoadHistory(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		return toPage(messages, q.Limit), nil
	}

	key := s.cache.BuildKey(q)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.fetchWithCache(ctx, q, key)
	})
	if err != nil {
		return nil, err
	}

	cached, ok := result.(*cache.HistoryResult)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return toPage(cached.Messages, q.Limit), nil
}

func (s *Service) fetchWithCache(ctx context.Context, q store.HistoryQuery, key string) (*cache.HistoryResult, error) {
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Ctx(ctx).Warn().Err(err).Msg("history cache get error")
	}

	messages, err := s.store.LoadHistory(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	result := &cache.HistoryResult{
		Messages: messages,
		HasMore:  len(messages) == q.Limit,
	}

	// Populate the cache off the request path.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, key, result, s.cacheTTL); err != nil {
			log.L().Warn().Err(err).Msg("history cache set error")
		}
	}()

	return result, nil
}

// toPage reverses the store's newest-first page into display order.
func toPage(newestFirst []domain.Message, limit int) *Page {
	messages := make([]domain.Message, len(newestFirst))
	for i, m := range newestFirst {
		messages[len(newestFirst)-1-i] = m
	}
	return &Page{
		Messages: messages,
		HasMore:  len(newestFirst) == limit,
	}
}
