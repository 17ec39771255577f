package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/config"
	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/httpapi"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/payment"
	shopredis "github.com/vladislavdragonenkov/shop/internal/redis"
	"github.com/vladislavdragonenkov/shop/internal/service/cart"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
	"github.com/vladislavdragonenkov/shop/internal/service/reviews"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает все зависимости по конфигурации и обслуживает API до отмены ctx.
func Run(ctx context.Context, cfg config.Config) error {
	logger := log.WithField("component", "app")

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, keeping default")
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	limiter, redisClient := initRateLimiter(cfg, logger)
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := auth.NewService(deps.users, tokens, logger.WithField("component", "auth"))
	catalogSvc := catalog.NewService(deps.products, deps.categories, deps.reviews, logger.WithField("component", "catalog"))
	cartSvc := cart.NewManager(deps.carts, deps.products, logger.WithField("component", "cart"))
	reviewSvc := reviews.NewService(deps.reviews, deps.orders, deps.products, logger.WithField("component", "reviews"))

	orderOptions := []orders.Option{orders.WithMetrics(metrics.NewOrderMetrics())}
	if kafkaProducer != nil {
		orderOptions = append(orderOptions, orders.WithPublisher(kafkaProducer))
	}
	orderSvc := orders.NewEngine(
		deps.orders, deps.products, deps.carts, deps.users, deps.history,
		payment.NewSimulator(),
		logger.WithField("component", "order-engine"),
		orderOptions...,
	)

	api := httpapi.NewServer(
		authSvc, tokens, catalogSvc, cartSvc, orderSvc, reviewSvc,
		logger.WithField("component", "httpapi"),
		httpapi.WithIdempotency(deps.idempotency, cfg.IdempotencyTTL),
		httpapi.WithRateLimiter(limiter),
	)

	cleanup := idempotency.NewCleanupWorker(deps.idempotency,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")))
	go cleanup.Run(ctx)

	buildVersion, _, _ := version.Info()
	healthHandler := healthcheck.NewHandler(buildVersion)
	if deps.store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", deps.store))
	}
	if redisClient != nil {
		healthHandler.RegisterChecker("redis", healthcheck.NewSimpleChecker("redis", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(pingCtx).Err()
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API сервер слушает %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("graceful shutdown превысил таймаут, принудительно останавливаем")
			_ = srv.Close()
		}
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// initRateLimiter выбирает реализацию rate limiter'а. Redis даёт общий счётчик
// на все реплики; без него остаётся локальный лимит внутри процесса.
func initRateLimiter(cfg config.Config, logger *log.Entry) (shopredis.Limiter, *goredis.Client) {
	if cfg.RedisAddr == "" {
		logger.Info("redis is not configured, using in-process rate limiting")
		return shopredis.NewLocalLimiter(), nil
	}

	client, err := shopredis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, falling back to in-process rate limiting")
		return shopredis.NewLocalLimiter(), nil
	}

	logger.WithField("addr", cfg.RedisAddr).Info("redis rate limiter initialized")
	return shopredis.NewRateLimiter(client), client
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проверок.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
