// Package app wires the checkout service together and runs it.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/checkout"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
	"github.com/brmntiosa/Ecommerce-Arum/internal/handler"
	"github.com/brmntiosa/Ecommerce-Arum/internal/midtrans"
	"github.com/brmntiosa/Ecommerce-Arum/internal/rajaongkir"
	"github.com/brmntiosa/Ecommerce-Arum/internal/redisstore"
	"github.com/brmntiosa/Ecommerce-Arum/internal/repository"
	"github.com/brmntiosa/Ecommerce-Arum/pkg/health"
	"github.com/brmntiosa/Ecommerce-Arum/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis session cart store.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := rdb.Close(); err != nil {
			lg.Warn("Redis close error", zap.Error(err))
		}
	}()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("redis", 2*time.Second, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.SetReady(true)

	// Repositories and stores.
	productRepo := repository.NewProductRepository(pool)
	regionRepo := repository.NewRegionRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	cartStore := redisstore.NewCartStore(rdb, cfg.CartTTL)

	// Carrier rate aggregation.
	rateClient := rajaongkir.NewClient(rajaongkir.Config{
		BaseURL: cfg.RajaOngkir.BaseURL,
		APIKey:  cfg.RajaOngkir.APIKey,
	})
	aggregator := shipping.NewAggregator(rateClient, cfg.RajaOngkir.Origin, cfg.RajaOngkir.Couriers, cfg.RajaOngkir.Timeout)

	// Domain services.
	orderService := order.NewService(orderRepo, cfg.PaymentDueDays)
	paymentGateway := midtrans.NewClient(midtrans.Config{
		BaseURL:        cfg.Midtrans.BaseURL,
		ServerKey:      cfg.Midtrans.ServerKey,
		ExpiryDuration: cfg.Midtrans.ExpiryDuration,
		ExpiryUnit:     cfg.Midtrans.ExpiryUnit,
		Channels:       cfg.Midtrans.Channels,
	})
	orchestrator := checkout.NewOrchestrator(cartStore, aggregator, orderService, paymentGateway)

	// HTTP surface: health endpoints + API routes on one server.
	h := handler.New(productRepo, regionRepo, cartStore, aggregator, orchestrator, orderRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "checkout-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-Buyer-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
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
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
