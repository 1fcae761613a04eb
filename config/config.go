package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	JWT JWT

	Redis Redis

	Gateway  Gateway
	Shipping Shipping

	KafkaBrokers    []string
	KafkaTopicEmail string

	SMTP SMTP

	SweepInterval time.Duration
}

type DB struct {
	database.Config
}

type JWT struct {
	Secret string
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Gateway is the payment processor connection.
type Gateway struct {
	BaseURL       string
	AccessToken   string
	WebhookSecret string
}

// Shipping is the carrier rate API connection.
type Shipping struct {
	BaseURL   string
	APIToken  string
	OriginZip string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	TMPLDir  string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		JWT: JWT{
			Secret: getEnv("JWT_SECRET", log),
		},
		Redis: Redis{
			Enabled:  os.Getenv("REDIS_ENABLED") == "true",
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		Gateway: Gateway{
			BaseURL:       getEnv("PAYMENT_GATEWAY_URL", log),
			AccessToken:   getEnv("PAYMENT_GATEWAY_TOKEN", log),
			WebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		},
		Shipping: Shipping{
			BaseURL:   getEnv("SHIPPING_API_URL", log),
			APIToken:  getEnv("SHIPPING_API_TOKEN", log),
			OriginZip: getEnv("SHIPPING_ORIGIN_ZIP", log),
		},
		KafkaBrokers:    splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicEmail: os.Getenv("KAFKA_TOPIC_EMAIL"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     atoiDefault(os.Getenv("SMTP_PORT"), 465),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			TMPLDir:  envDefault("TMPL_DIR", "templates"),
		},
		SweepInterval: time.Duration(atoiDefault(os.Getenv("SWEEP_INTERVAL_SECONDS"), 60)) * time.Second,
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func envDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
