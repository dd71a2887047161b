package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkup/internal/app/roomlist"
	"linkup/internal/domain/chat"
	"linkup/internal/infra/api"
	"linkup/internal/infra/broker/kafka"
	"linkup/internal/infra/config"
	mongodb "linkup/internal/infra/db/mongo"
	ginserver "linkup/internal/infra/http/gin"
	"linkup/internal/infra/inbox"
	"linkup/internal/infra/obs"
	"linkup/internal/infra/socket"
	"linkup/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	if cfg.ViewerID == "" {
		logger.Error("VIEWER_ID is required")
		os.Exit(1)
	}

	var client roomlist.API
	if cfg.ChatAPIURL == "memory" {
		logger.Info("using in-memory chat backend")
		stub := memory.NewChatAPI()
		stub.Seed(demoRooms(cfg.ViewerID)...)
		client = stub
	} else {
		client = api.New(cfg.ChatAPIURL, cfg.ChatAPIToken, cfg.ChatAPITime)
	}
	service := roomlist.NewService(client, roomlist.Config{
		PageLimit:    cfg.PageLimit,
		SearchWindow: cfg.SearchDebounce,
	}, logger)
	service.SetViewer(ctx, cfg.ViewerID)

	var events interface {
		HandleRoomEvent(ev chat.RoomEvent)
	} = service
	if cfg.MongoURI != "" {
		mc, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("event inbox unavailable, continuing without dedup", "error", err)
		} else {
			events = inbox.DedupHandler{
				Next:  service,
				Inbox: inbox.NewStore(mc.DB, cfg.KafkaGroup),
				Log:   logger,
			}
		}
	}

	if cfg.SocketURL != "" {
		source := socket.New(cfg.SocketURL, cfg.ViewerID, events, logger)
		go runSocket(ctx, source, logger)
	}
	if len(cfg.KafkaBroker) > 0 {
		source, err := kafka.NewSource(cfg.KafkaBroker, cfg.KafkaGroup, cfg.KafkaTopic, events, logger)
		if err != nil {
			logger.Error("kafka source init failed", "error", err)
			os.Exit(1)
		}
		defer source.Close()
		go func() {
			if err := source.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("kafka source stopped", "error", err)
			}
		}()
	}
	if cfg.SocketURL == "" && len(cfg.KafkaBroker) == 0 {
		logger.Warn("no event source configured, list will only change on fetches")
	}

	if err := service.LoadFirstPage(ctx, chat.FilterCriteria{Tab: chat.TabAll}); err != nil {
		logger.Warn("initial room load failed", "error", err)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error {
			if service.Viewer() == "" {
				return errors.New("no viewer")
			}
			return nil
		},
	}, ginserver.Handlers{
		Rooms: ginserver.RoomsHandler{Service: service, Logger: logger},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "viewer", cfg.ViewerID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// runSocket reconnects with a fixed backoff. The backoff policy lives here in
// the daemon, not in the socket adapter.
func runSocket(ctx context.Context, source *socket.Source, logger *slog.Logger) {
	for {
		err := source.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("socket source disconnected, retrying", "error", err)
		select {
		case <-time.After(3 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

// demoRooms seeds the in-memory backend with a handful of conversations so a
// local run has something to show.
func demoRooms(viewerID string) []chat.RoomRecord {
	now := time.Now()
	at := func(d time.Duration) *time.Time {
		v := now.Add(-d)
		return &v
	}
	return []chat.RoomRecord{
		{
			ID:      "demo-personal",
			UserIDs: []string{viewerID, "demo-friend"},
			Users: []chat.RoomUser{
				{ID: viewerID, UnreadMessageCount: 2},
				{ID: "demo-friend", Name: "Alex"},
			},
			IsPersonal:      true,
			LastMessage:     "see you there!",
			LastMessageTime: at(10 * time.Minute),
			CreatedAt:       now.Add(-48 * time.Hour),
		},
		{
			ID:              "demo-group",
			UserIDs:         []string{viewerID, "demo-friend", "demo-other"},
			Users:           []chat.RoomUser{{ID: viewerID, UnreadMessageCount: 1}},
			Name:            "Weekend hike",
			LastMessage:     "who's driving?",
			LastMessageTime: at(2 * time.Hour),
			CreatedAt:       now.Add(-72 * time.Hour),
		},
		{
			ID:        "demo-event",
			UserIDs:   []string{viewerID, "demo-other"},
			Name:      "Jazz night",
			EventID:   "demo-ev",
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
