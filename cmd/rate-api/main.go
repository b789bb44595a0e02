package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ReefCultures/RateBox/config"
	"github.com/ReefCultures/RateBox/internal/api/rates_api"
	"github.com/ReefCultures/RateBox/internal/broker/kafka"
	"github.com/ReefCultures/RateBox/internal/cache/rediscache"
	"github.com/ReefCultures/RateBox/internal/carrierdir"
	"github.com/ReefCultures/RateBox/internal/rates"
	"github.com/ReefCultures/RateBox/internal/storage/pgquotes"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("config parse error: %v", err))
	}

	httpAddr := cfg.RateBox.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.RateBox.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "rate-api"
	}
	createdTopic := cfg.Kafka.QuoteCreatedTopicName
	if createdTopic == "" {
		createdTopic = "quote.created"
	}
	expiredTopic := cfg.Kafka.QuoteExpiredTopicName
	if expiredTopic == "" {
		expiredTopic = "quote.expired"
	}
	quoteTTL := time.Duration(cfg.RateBox.QuoteTTLSeconds) * time.Second
	if quoteTTL <= 0 {
		quoteTTL = 15 * time.Minute
	}
	quoteCacheTTL := time.Duration(cfg.RateBox.QuoteCacheTTLSeconds) * time.Second
	if quoteCacheTTL <= 0 {
		quoteCacheTTL = 10 * time.Minute
	}
	dirTTL := time.Duration(cfg.RateBox.CarrierDirTTLSeconds) * time.Second
	if dirTTL <= 0 {
		dirTTL = 15 * time.Minute
	}
	rlPerMin := int64(cfg.RateBox.RateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 120
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st, err := pgquotes.New(connString)
	if err != nil {
		panic(err)
	}
	defer st.Close()

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)
	rl := rediscache.NewRateLimiter(redisAddr)

	provider := newRateProviderClient(cfg)
	dir := carrierdir.New(provider, rc, dirTTL, cfg.RateBox.CarrierIDs)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	consumer := kafka.NewConsumer(brokers, expiredTopic, consumerGroup)
	defer func() { _ = consumer.Close() }()

	svc := rates.New(provider, dir, st, originAddress(cfg), quoteTTL).
		WithQuoteCache(rc, quoteCacheTTL).
		WithProducer(producer, createdTopic).
		WithRateLimiter(rl, rlPerMin)

	api := rates_api.New(svc, dir)

	swaggerPath := os.Getenv("swaggerPath")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runRateAPI(ctx, rateAPIOpts{
		httpAddr:      httpAddr,
		swaggerPath:   swaggerPath,
		topic:         expiredTopic,
		consumerGroup: consumerGroup,
		ready: func(ctx context.Context) error {
			if err := st.Ping(ctx); err != nil {
				return err
			}
			return rc.Ping(ctx)
		},
	}, api, svc, consumer); err != nil && err != context.Canceled {
		panic(err)
	}
}
