package main

import (
	"context"
	"os"

	"storefront/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/payments"
	"storefront/internal/producer"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/shipping"
	"storefront/internal/sweeper"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// One-shot expiration sweep, meant for cron or manual runs. The service
// binary runs the same sweep on a ticker.
func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repo := repository.New(db)
	gateway := payments.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.AccessToken)
	quoter := shipping.NewClient(cfg.Shipping.BaseURL, cfg.Shipping.APIToken, cfg.Shipping.OriginZip)

	var notifier service.ReceiptNotifier
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopicEmail != "" {
		emailProducer := producer.NewEmailProducer(cfg.KafkaBrokers, cfg.KafkaTopicEmail)
		defer emailProducer.Close()
		notifier = emailProducer
	}

	checkoutSvc := service.NewCheckoutService(repo, gateway, quoter, notifier, log)
	sweep := sweeper.NewScheduler(checkoutSvc, cfg.SweepInterval, log)

	n, err := sweep.RunOnceNow(context.Background())
	if err != nil {
		log.Fatal("sweep failed", zap.Error(err))
	}
	log.Info("sweep completed", zap.Int("expired", n))
}
