package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appauth "github.com/awemart/awemart/internal/application/auth"
	appcart "github.com/awemart/awemart/internal/application/cart"
	appcatalog "github.com/awemart/awemart/internal/application/catalog"
	"github.com/awemart/awemart/internal/application/checkout"
	appinventory "github.com/awemart/awemart/internal/application/inventory"
	apporders "github.com/awemart/awemart/internal/application/orders"
	apppayment "github.com/awemart/awemart/internal/application/payment"
	appshipment "github.com/awemart/awemart/internal/application/shipment"
	appstats "github.com/awemart/awemart/internal/application/stats"
	"github.com/awemart/awemart/internal/config"
	"github.com/awemart/awemart/internal/infrastructure/eventbus"
	"github.com/awemart/awemart/internal/infrastructure/id"
	obsprovider "github.com/awemart/awemart/internal/infrastructure/observability"
	"github.com/awemart/awemart/internal/infrastructure/observability/oteltrace"
	"github.com/awemart/awemart/internal/infrastructure/observability/prometrics"
	"github.com/awemart/awemart/internal/infrastructure/observability/zaplogger"
	"github.com/awemart/awemart/internal/infrastructure/storage"
	"github.com/awemart/awemart/internal/observability"
	httpapi "github.com/awemart/awemart/internal/presentation/http"
)

func main() {
	cfg := config.Load()

	logger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)

	registry := prometrics.New(cfg.ServiceName, "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP request handling in seconds.",
			prometheus.DefBuckets,
			"method", "route",
		),
	}
	obs := obsprovider.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)

	db, err := storage.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("storage_open_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	bus := eventbus.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	idGen := id.NewUUIDGenerator()

	authService := appauth.NewService(db, idGen)
	catalogService := appcatalog.NewService(db, idGen)
	cartService := appcart.NewService(db, idGen, logger)
	inventoryService := appinventory.NewService(db, logger)
	checkoutService := checkout.NewService(db, idGen, bus, obs)
	paymentService := apppayment.NewService(db, idGen, bus, obs)
	shipmentService := appshipment.NewService(db, idGen, bus, logger)
	ordersService := apporders.NewService(db)
	statsService := appstats.NewService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ShipmentAutoAdvance {
		progressor := appshipment.NewProgressor(shipmentService, cfg.AutoAdvanceInterval, logger)
		progressor.Start(ctx, bus)
		defer progressor.Stop()
	}

	router := httpapi.NewRouter(&httpapi.Handler{
		Auth:      authService,
		Catalog:   catalogService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Payment:   paymentService,
		Shipment:  shipmentService,
		Orders:    ordersService,
		Inventory: inventoryService,
		Stats:     statsService,
		Obs:       obs,
		Metrics:   promhttp.Handler(),
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}
