package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/cache"
	"github.com/yonasmekonnen/gym-membership/internal/config"
	"github.com/yonasmekonnen/gym-membership/internal/lib/rabbitmq"
	"github.com/yonasmekonnen/gym-membership/internal/lib/sl"
	"github.com/yonasmekonnen/gym-membership/internal/services/countdown"
	"github.com/yonasmekonnen/gym-membership/internal/services/reconciler"
	"github.com/yonasmekonnen/gym-membership/internal/storage/repository"
)

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

func main() {
	cfg := config.MustLoad()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting reconciler", slog.String("env", cfg.Env))
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("succes to connect to RabbitMQ:", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()
	err = waitForDB(db)
	if err != nil {
		logger.Error("Database is not ready:", sl.Err(err))
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Error("failed to connect to redis", sl.Err(err))
		os.Exit(1)
	}

	engine := countdown.New(db, cacheRedis, logger)
	reconcilerService := reconciler.NewService(db, engine, cacheRedis, logger, cfg.OpTimeout)

	go reconcilerService.Run(ctx, ch, cfg.RunInterval)
	select {}
}
