package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appauth "github.com/storefronthq/storefront/internal/application/auth"
	appbasket "github.com/storefronthq/storefront/internal/application/basket"
	appcatalog "github.com/storefronthq/storefront/internal/application/catalog"
	appcategory "github.com/storefronthq/storefront/internal/application/category"
	appcheckout "github.com/storefronthq/storefront/internal/application/checkout"
	appreview "github.com/storefronthq/storefront/internal/application/review"
	dompayment "github.com/storefronthq/storefront/internal/domain/payment"
	"github.com/storefronthq/storefront/internal/infrastructure/eventbus"
	httptransport "github.com/storefronthq/storefront/internal/infrastructure/http"
	"github.com/storefronthq/storefront/internal/infrastructure/id"
	"github.com/storefronthq/storefront/internal/infrastructure/memory"
	"github.com/storefronthq/storefront/internal/infrastructure/paymentgw"
	"github.com/storefronthq/storefront/internal/infrastructure/token"
	"github.com/storefronthq/storefront/internal/pkg/config"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(getenvDefault("CONFIG_FILE", "config.yaml"))
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	productRepo := memory.NewProductRepository()
	userRepo := memory.NewUserRepository()
	categoryRepo := memory.NewCategoryRepository()
	idGenerator := id.NewUUIDGenerator()

	var provider dompayment.Provider
	if cfg.Payment.Endpoint != "" {
		provider = paymentgw.NewClient(cfg.Payment.Endpoint, cfg.Payment.APIKey, cfg.Payment.Timeout.Std())
	} else {
		provider = paymentgw.NewSimulator(idGenerator)
		baseLogger.Warn("payment_provider_simulated")
	}

	tokenIssuer := token.NewJWTIssuer(cfg.TokenSecret, cfg.TokenTTL.Std())
	authService := appauth.NewService(userRepo, tokenIssuer, idGenerator)
	catalogService := appcatalog.NewService(productRepo, idGenerator)
	reviewService := appreview.NewService(productRepo, idGenerator)
	basketService := appbasket.NewService(userRepo, productRepo)
	categoryService := appcategory.NewService(categoryRepo, productRepo, idGenerator)
	checkoutService := appcheckout.NewService(userRepo, productRepo, provider, idGenerator)

	bus := eventbus.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	confirmationWorker := appcheckout.NewConfirmationWorker(userRepo, bus, baseLogger)
	confirmationWorker.Start()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"route", "method", "status"},
	)
	httpDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	prometheus.MustRegister(httpRequests, httpDurations)

	handler := httptransport.NewHandler(httptransport.Config{
		Auth:       authService,
		Catalog:    catalogService,
		Reviews:    reviewService,
		Basket:     basketService,
		Categories: categoryService,
		Checkout:   checkoutService,
		Events:     bus,
		Logger:     baseLogger,
		Metrics: httptransport.Metrics{
			Requests:  httpRequests,
			Durations: httpDurations,
		},
		RatePerSec: cfg.RateLimit.PerSecond,
		RateBurst:  cfg.RateLimit.Burst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
