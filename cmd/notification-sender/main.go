package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yonasmekonnen/gym-membership/internal/config"
	"github.com/yonasmekonnen/gym-membership/internal/lib/rabbitmq"
	"github.com/yonasmekonnen/gym-membership/internal/lib/sl"
	"github.com/yonasmekonnen/gym-membership/internal/lib/smtp"
	"github.com/yonasmekonnen/gym-membership/internal/services/sender"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))
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

	newTransport := smtp.NewTransport(cfg, logger)

	senderService := sender.NewSenderService(newTransport, cfg.StaffEmail, logger)

	err = rabbitmq.ConsumeMessages(ctx, ch, "notification.member-status", senderService.SendMemberStatusUpdate)
	if err != nil {
		logger.Error("failed to start consumer", sl.Err(err))
		os.Exit(1)
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	logger.Info("Notification sender shutting down gracefully")
}
