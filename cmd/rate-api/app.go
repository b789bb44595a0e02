package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/ReefCultures/RateBox/config"
	"github.com/ReefCultures/RateBox/internal/api/rates_api"
	"github.com/ReefCultures/RateBox/internal/broker/messages"
	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider"
	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider/fake"
	"github.com/ReefCultures/RateBox/internal/integrations/rateprovider/shipengine"
	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/ReefCultures/RateBox/internal/rates"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type rateAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	// ready reports whether downstream dependencies (postgres, redis) are
	// reachable. Nil means always ready.
	ready func(ctx context.Context) error

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func newRateProviderClient(cfg *config.Config) rateprovider.Client {
	// The live ShipEngine-compatible provider needs a base URL; everything
	// else (local dev, CI) runs against the deterministic fake.
	if cfg.RateBox.RateProviderBaseURL != "" && cfg.RateBox.RateProviderMode == "shipengine" {
		return shipengine.New(cfg.RateBox.RateProviderBaseURL, cfg.RateBox.RateProviderAPIKey)
	}
	return fake.New()
}

func originAddress(cfg *config.Config) models.Address {
	sf := cfg.RateBox.ShipFrom
	return models.Address{
		Name:       sf.Name,
		Street1:    sf.Street1,
		Street2:    sf.Street2,
		City:       sf.City,
		State:      sf.State,
		PostalCode: sf.PostalCode,
		Country:    sf.Country,
		Phone:      sf.Phone,
	}
}

func runRateAPI(ctx context.Context, opts rateAPIOpts, api *rates_api.RatesAPI, svc *rates.Service, consumer kafkaConsumer) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.ready != nil {
			if err := opts.ready(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, opts.swaggerPath)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))

	api.Register(r)

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		_ = consumer.Consume(ctx, func(_key, value []byte) error {
			// Cache refresh is best-effort: a malformed or unapplicable
			// event must not stall the partition.
			var m messages.QuoteExpired
			if err := json.Unmarshal(value, &m); err != nil {
				slog.Warn("skip malformed quote.expired event", "error", err.Error())
				return nil
			}
			if err := svc.ApplyExpiredEvent(ctx, m); err != nil {
				slog.Warn("apply quote.expired event", "quote_key", m.QuoteKey, "error", err.Error())
			}
			return nil
		})
	}()

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())

	httpErr := make(chan error, 1)
	go func() { httpErr <- srv.Serve(lis) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	}
}
