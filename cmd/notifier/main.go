package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/config"
	"storefront/internal/consumer"
	"storefront/internal/logger"
	"storefront/internal/sender"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	cfg := config.Load(log)

	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopicEmail == "" {
		log.Fatal("KAFKA_BROKERS and KAFKA_TOPIC_EMAIL are required for the notifier")
	}

	emailSender := sender.NewEmailSender(cfg)
	emailConsumer := consumer.NewKafkaEmailConsumer(cfg.KafkaBrokers, "storefront-notifier", cfg.KafkaTopicEmail, emailSender, log)
	defer emailConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := emailConsumer.Run(ctx); err != nil {
		log.Fatal("consumer stopped with error", zap.Error(err))
	}
	log.Info("notifier stopped")
}
