// Package app wires the checkout service together: configuration, storage,
// domain services, HTTP surface, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sajibhasan/gymkart/internal/domain/customer"
	"github.com/sajibhasan/gymkart/internal/domain/discount"
	"github.com/sajibhasan/gymkart/internal/domain/order"
	"github.com/sajibhasan/gymkart/internal/domain/shipping"
	"github.com/sajibhasan/gymkart/internal/handler"
	"github.com/sajibhasan/gymkart/internal/identity"
	"github.com/sajibhasan/gymkart/internal/storage/postgres"
	"github.com/sajibhasan/gymkart/pkg/health"
	"github.com/sajibhasan/gymkart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, pool.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	productRepo := postgres.NewProductRepository(pool)
	discountRepo := postgres.NewDiscountRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)

	var profiles identity.Provider = identity.Disabled{}
	if cfg.Identity.SecretKey != "" {
		profiles = identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.SecretKey, nil)
	}

	checkout := order.NewService(
		productRepo,
		discount.NewRepoValidator(discountRepo),
		discountRepo,
		customer.NewUpserter(customerRepo, profiles),
		orderRepo,
		feeTable(cfg.Shipping),
	)

	h, err := handler.NewHandler(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		productRepo,
		checkout,
		m.MeterProvider(),
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	api := chi.NewRouter()
	api.Use(handler.RequireAPIKey(apikeyRepo, []byte(cfg.APIKeyPepper)))
	api.Mount("/", h.Routes())

	mux := chi.NewRouter()
	mux.Get("/livez", healthSvc.LiveEndpoint)
	mux.Get("/readyz", healthSvc.ReadyEndpoint)
	mux.Mount("/api", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Api-Key", "X-User-Id"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			instrument(m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: stop advertising readiness, drain in-flight
	// requests, then stop the server.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// feeTable builds the delivery fee table, applying config overrides on top
// of the standard rates.
func feeTable(cfg ShippingConfig) shipping.FeeTable {
	t := shipping.DefaultTable()
	if cfg.DhakaRate > 0 {
		t.Rates["Dhaka"] = decimal.NewFromInt(int64(cfg.DhakaRate))
	}
	if cfg.DefaultRate > 0 {
		t.DefaultRate = decimal.NewFromInt(int64(cfg.DefaultRate))
	}
	if cfg.FreeOver > 0 {
		t.FreeOver = decimal.NewFromInt(int64(cfg.FreeOver))
	}
	return t
}

// instrument wraps the whole mux in OpenTelemetry HTTP instrumentation
// using the app runtime's providers.
func instrument(m *app.Telemetry) httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "gymkart-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		)
	}
}
