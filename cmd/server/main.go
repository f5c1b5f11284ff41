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

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/maputoimporthub/storefront/internal/admin"
	"github.com/maputoimporthub/storefront/internal/cart"
	"github.com/maputoimporthub/storefront/internal/catalog"
	"github.com/maputoimporthub/storefront/internal/checkout"
	"github.com/maputoimporthub/storefront/internal/messaging"
	"github.com/maputoimporthub/storefront/internal/reports"
	"github.com/maputoimporthub/storefront/internal/store"
	"github.com/maputoimporthub/storefront/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tel, err := telemetry.Setup(ctx, "storefront", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	st, cleanup, err := openStore(ctx, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var publisher checkout.EventPublisher
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		p := messaging.NewPublisher(strings.Split(kafkaBrokers, ","), messaging.TopicOrderCreated)
		defer func() { _ = p.Close() }()
		publisher = p
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	mux := newMux(st, publisher, logger)
	mux.Handle("GET /metrics", tel.MetricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "storefront",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront api", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// newMux registers the full /api route table.
func newMux(st store.Store, publisher checkout.EventPublisher, logger *slog.Logger) *http.ServeMux {
	catalogHandler := catalog.NewHandler(st, logger)
	cartHandler := cart.NewHandler(cart.NewService(st), logger)
	pipeline := checkout.NewPipeline(st, publisher, logger)
	checkoutHandler := checkout.NewHandler(pipeline, st, logger)
	reportsHandler := reports.NewHandler(reports.NewService(st), logger)
	adminHandler := admin.NewHandler(st, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", telemetry.WithHTTPRoute(catalogHandler.HandleList))
	mux.HandleFunc("POST /api/products", telemetry.WithHTTPRoute(catalogHandler.HandleCreate))
	mux.HandleFunc("GET /api/products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGet))
	mux.HandleFunc("PUT /api/products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdate))
	mux.HandleFunc("DELETE /api/products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDelete))
	mux.HandleFunc("PATCH /api/products/{id}/stock", telemetry.WithHTTPRoute(catalogHandler.HandleUpdateStock))

	mux.HandleFunc("POST /api/cart", telemetry.WithHTTPRoute(cartHandler.HandleAdd))
	mux.HandleFunc("GET /api/cart/{sessionId}", telemetry.WithHTTPRoute(cartHandler.HandleGetSession))
	mux.HandleFunc("GET /api/cart/session/{sessionId}", telemetry.WithHTTPRoute(cartHandler.HandleGetSession))
	mux.HandleFunc("DELETE /api/cart/session/{sessionId}", telemetry.WithHTTPRoute(cartHandler.HandleClearSession))
	mux.HandleFunc("PUT /api/cart/{id}", telemetry.WithHTTPRoute(cartHandler.HandleUpdateQuantity))
	mux.HandleFunc("DELETE /api/cart/{id}", telemetry.WithHTTPRoute(cartHandler.HandleRemove))

	mux.HandleFunc("GET /api/orders", telemetry.WithHTTPRoute(checkoutHandler.HandleList))
	mux.HandleFunc("POST /api/orders", telemetry.WithHTTPRoute(checkoutHandler.HandleCreate))
	mux.HandleFunc("GET /api/orders/{id}", telemetry.WithHTTPRoute(checkoutHandler.HandleGet))
	mux.HandleFunc("PATCH /api/orders/{id}/status", telemetry.WithHTTPRoute(checkoutHandler.HandleUpdateStatus))

	mux.HandleFunc("POST /api/admin/login", telemetry.WithHTTPRoute(adminHandler.HandleLogin))

	mux.HandleFunc("GET /api/reports/sales", telemetry.WithHTTPRoute(reportsHandler.HandleSales))
	mux.HandleFunc("GET /api/reports/categories", telemetry.WithHTTPRoute(reportsHandler.HandleCategories))
	mux.HandleFunc("GET /api/reports/low-stock", telemetry.WithHTTPRoute(reportsHandler.HandleLowStock))
	mux.HandleFunc("GET /api/reports/export/sales", telemetry.WithHTTPRoute(reportsHandler.HandleExportSales))

	return mux
}

// openStore returns the Postgres-backed store when POSTGRES_URL is set and a
// seeded in-memory store otherwise. The memory store keeps demo data so the
// api is usable without infrastructure.
func openStore(ctx context.Context, logger *slog.Logger) (store.Store, func(), error) {
	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Info("POSTGRES_URL not set, using in-memory store")
		mem := store.NewMemoryStore()
		seedMemoryStore(ctx, mem, logger)
		return mem, func() {}, nil
	}

	db, err := telemetry.OpenPostgres(postgresURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewPostgresStore(db), func() { _ = db.Close() }, nil
}
