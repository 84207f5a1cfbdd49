package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storegate/internal/cache"
	"storegate/internal/cdn"
	"storegate/internal/config"
	"storegate/internal/handlers"
	"storegate/internal/jobs"
	"storegate/internal/log"
	"storegate/internal/rpcclient"
	"storegate/internal/server"
	"storegate/internal/service"
	"storegate/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	authClient, err := rpcclient.NewAuthClient(cfg.Services.Auth.Address(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create auth client")
	}
	defer authClient.Close()

	enhanceClient, err := rpcclient.NewEnhanceClient(cfg.Services.Enhance.Address(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create enhancement client")
	}
	defer enhanceClient.Close()

	objectStore, err := storage.NewObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	cloudFront, err := cdn.New(ctx, cfg.CDN, cfg.Storage.Region, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init cdn")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		}
	}

	imageService := service.NewImageService(objectStore, enhanceClient, cloudFront, cfg.Upload, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, imageService, authClient, enhanceClient, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	watchdog := jobs.NewWatchdog(authClient, enhanceClient, redisClient, logger)
	if err := watchdog.Start(); err != nil {
		logger.Error().Err(err).Msg("watchdog start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, watchdog, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, watchdog *jobs.Watchdog, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	watchdog.Stop()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("gateway exited cleanly")
}
