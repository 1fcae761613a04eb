package main

import (
	"context"
	"os"

	"storefront/config"
	"storefront/internal/database"
	"storefront/internal/idempotency"
	"storefront/internal/logger"
	"storefront/internal/payments"
	"storefront/internal/producer"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/shipping"
	"storefront/internal/sweeper"
	"storefront/internal/transport/http/handlers"
	"storefront/internal/transport/http/router"

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
	catalogSvc := service.NewCatalogService(repo)

	var idemStore *idempotency.Store
	if cfg.Redis.Enabled {
		var err error
		idemStore, err = idempotency.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer idemStore.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweep := sweeper.NewScheduler(checkoutSvc, cfg.SweepInterval, log)
	sweep.Start(ctx)
	defer sweep.Stop()

	r := router.Router(router.Deps{
		Checkout:  handlers.NewCheckoutHandler(checkoutSvc, idemStore, log),
		Catalog:   handlers.NewCatalogHandler(catalogSvc, log),
		Webhook:   handlers.NewWebhookHandler(checkoutSvc, cfg.Gateway.WebhookSecret, log),
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("failed to run http server", zap.Error(err))
	}
}
