package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/songclash/songclash/adapters/blob"
	"github.com/songclash/songclash/adapters/directory"
	"github.com/songclash/songclash/adapters/events"
	"github.com/songclash/songclash/config"
	"github.com/songclash/songclash/presence"
	"github.com/songclash/songclash/service"
	"github.com/songclash/songclash/transport/ws"
)

func main() {
	cfgName := os.Getenv("SONGCLASH_CONFIG")
	if cfgName == "" {
		cfgName = "songclash"
	}

	cfg, err := config.Load(cfgName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dir, err := directory.Open(cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open user directory: %v", err)
	}
	defer dir.Close()

	blobs, err := blob.NewFSStore(cfg.Storage.MediaDir)
	if err != nil {
		log.Fatalf("Failed to open media store: %v", err)
	}

	// Event publisher: redis stream when configured, in-process otherwise.
	wmLogger := watermill.NewStdLogger(false, false)
	var publisher message.Publisher
	if cfg.Events.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Events.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redis.NewClient(opts)},
			wmLogger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}
	eventPub := events.NewWatermillPublisher(publisher)

	registry := presence.NewRegistry()

	srv := &ws.Services{
		Auth:       service.NewAuthService(dir, dir, registry, eventPub, cfg.Session.TTL(), logger),
		Friends:    service.NewFriendService(dir, registry, logger),
		Challenges: service.NewChallengeService(dir, registry, eventPub, logger),
		Uploads:    service.NewUploadService(blobs, cfg.Storage.UploadsEnabled, logger),
		Log:        logger,
	}

	// Expired session secrets are swept on the session TTL cadence. Live
	// connections are never touched by the sweep.
	go func() {
		ticker := time.NewTicker(cfg.Session.TTL())
		defer ticker.Stop()
		for range ticker.C {
			n, err := dir.PurgeExpired(context.Background(), time.Now())
			if err != nil {
				logger.Warn("session purge failed", "err", err)
			} else if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}()

	router := ws.SetupRouter(srv, cfg.Server.StaticDir)

	logger.Info("listening", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
