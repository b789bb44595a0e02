package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ReefCultures/RateBox/config"
	"github.com/ReefCultures/RateBox/internal/broker/kafka"
	"github.com/ReefCultures/RateBox/internal/services/sweeper"
	"github.com/ReefCultures/RateBox/internal/storage/pgquotes"
)

type workerFactories struct {
	newStorage  func(cfg *config.Config) (repo sweeper.Repository, closeFn func(), err error)
	newProducer func(cfg *config.Config) sweeper.Producer
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (sweeper.Repository, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgquotes.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) sweeper.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
	}
}

func RunQuoteWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	topic := cfg.Kafka.QuoteExpiredTopicName
	if topic == "" {
		topic = "quote.expired"
	}

	sweepInterval := time.Duration(cfg.RateBox.WorkerSweepIntervalSeconds) * time.Second
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Second
	}
	batchSize := cfg.RateBox.WorkerBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	producer := f.newProducer(cfg)

	sw := sweeper.New(repo, producer, topic).
		WithSettings(sweepInterval, batchSize)

	httpAddr := cfg.RateBox.WorkerHTTPAddr
	if httpAddr == "" {
		httpAddr = ":8082"
	}
	go func() {
		_ = runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr:    httpAddr,
			swaggerPath: os.Getenv("swaggerPath"),
			sweeper:     sw,
			cfg:         cfg,
		})
	}()

	return sw.Run(ctx)
}
