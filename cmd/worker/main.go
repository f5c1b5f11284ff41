package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/maputoimporthub/storefront/internal/messaging"
	"github.com/maputoimporthub/storefront/internal/telemetry"
	"github.com/maputoimporthub/storefront/internal/worker"
)

const serviceVersion = "0.1.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tel, err := telemetry.Setup(ctx, "storefront-worker", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	apiURL := os.Getenv("STOREFRONT_API_URL")
	if apiURL == "" {
		logger.Error("STOREFRONT_API_URL environment variable is required")
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")
	subscriber := messaging.NewSubscriber(brokers, messaging.TopicOrderCreated, "storefront-worker", logger)
	defer func() { _ = subscriber.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	handler := worker.NewOrderHandler(apiURL, httpClient, logger)

	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", tel.MetricsHandler)
		if err := http.ListenAndServe(":"+metricsPort, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting order worker", "brokers", brokers, "api_url", apiURL)

	if err := subscriber.Run(ctx, handler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("worker stopped")
			return
		}
		logger.Error("worker error", "error", err)
		os.Exit(1)
	}
}
