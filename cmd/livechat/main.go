package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/cache"
	"github.com/Ladinawan-01/LiveChat/internal/config"
	"github.com/Ladinawan-01/LiveChat/internal/handler"
	"github.com/Ladinawan-01/LiveChat/internal/history"
	"github.com/Ladinawan-01/LiveChat/internal/hub"
	"github.com/Ladinawan-01/LiveChat/internal/presence"
	"github.com/Ladinawan-01/LiveChat/internal/registry"
	"github.com/Ladinawan-01/LiveChat/internal/rooms"
	"github.com/Ladinawan-01/LiveChat/internal/router"
	"github.com/Ladinawan-01/LiveChat/internal/service"
	"github.com/Ladinawan-01/LiveChat/internal/store"
	"github.com/Ladinawan-01/LiveChat/internal/typing"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log)
	logger := log.L()
	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting livechat")

	// Message store.
	var messageStore store.MessageStore
	switch cfg.Store.Driver {
	case "memory":
		messageStore = store.NewMemoryStore()
		logger.Warn().Msg("using in-memory message store; history is not durable")
	default:
		messageStore, err = store.NewCassandraStore(cfg.Cassandra)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to cassandra")
		}
		logger.Info().Strs("hosts", cfg.Cassandra.Hosts).Msg("connected to cassandra")
	}
	defer messageStore.Close()

	// History cache.
	var historyCache cache.HistoryCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisHistoryCache(cfg.Redis.RedisConfig, cfg.Redis.CachePrefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rc.Close()
		historyCache = rc
		logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
	}

	// Engine.
	eventBus := bus.New()
	presenceTracker := presence.New(eventBus)
	roomDirectory := rooms.New(eventBus, cfg.Chat.DefaultRoom)
	typingTracker := typing.New(eventBus)
	connRegistry := registry.New(roomDirectory, presenceTracker, typingTracker, eventBus)
	messageRouter := router.New(connRegistry, roomDirectory, messageStore, eventBus)
	historyService := history.New(messageStore, historyCache, cfg.Redis.CacheTTL)

	// Transport.
	wsHub := hub.NewHub(cfg.WebSocket)
	wsHub.Attach(eventBus)

	chatService := service.NewChatService(connRegistry, roomDirectory, messageRouter, typingTracker)
	wsHandler := handler.NewWSHandler(wsHub, chatService, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(roomDirectory, presenceTracker, typingTracker, historyService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(log.GinMiddleware(logger))

	httpHandler.RegisterRoutes(engine)
	engine.GET("/socket", wsHandler.Handle)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		typingTracker.Run(ctx, cfg.Chat.TypingSweepInterval)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("livechat stopped")
}
