package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Ashivkar123/Image-Resizer/internal/api"
	"github.com/Ashivkar123/Image-Resizer/internal/cache"
	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/config"
	"github.com/Ashivkar123/Image-Resizer/internal/health"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	imgproc "github.com/Ashivkar123/Image-Resizer/internal/processor/image"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/tracing"
	"github.com/Ashivkar123/Image-Resizer/internal/version"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Default()

	log.Info("configuration loaded", "environment", cfg.Environment, "storage", cfg.StorageBackend)

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdownTracing, err := tracing.Init(ctx, &tracing.Config{
			ServiceName:    tracing.DefaultServiceName,
			ServiceVersion: version.Short(),
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			Enabled:        true,
			SampleRate:     cfg.TraceSampleRate,
		})
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() { _ = shutdownTracing(ctx) }()
		log.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint, "sample_rate", cfg.TraceSampleRate)
	}

	log.Info("opening record store")
	records, err := catalog.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer func() { _ = records.Close() }()

	log.Info("opening file storage", "backend", cfg.StorageBackend)
	store, err := storage.Open(ctx, cfg.StorageBackend, cfg.UploadDir, &storage.Config{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
		Region:    cfg.MinIORegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	var (
		redisClient *redis.Client
		previews    cache.Cache = cache.NopCache{}
	)
	if cfg.RedisURL != "" {
		log.Info("connecting to redis")
		redisOpt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(redisOpt)
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		previews = cache.NewRedisCache(redisClient)
	}

	metrics.SetAppInfo(version.Short(), cfg.Environment, "api")

	opts := []resizer.Option{
		resizer.WithCache(previews, cfg.PreviewCacheTTL),
		resizer.WithDefaultQuality(cfg.DefaultQuality),
	}
	if len(cfg.WebhookURLs) > 0 {
		notifier := webhook.New(webhook.Config{
			Endpoints:   cfg.WebhookURLs,
			Secret:      cfg.WebhookSecret,
			Events:      cfg.WebhookEvents,
			Timeout:     cfg.WebhookTimeout,
			MaxAttempts: cfg.WebhookMaxAttempts,
		})
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := notifier.Close(ctx); err != nil {
				log.Warn("webhook deliveries abandoned at shutdown", "error", err)
			}
		}()
		opts = append(opts, resizer.WithNotifier(notifier))
		log.Info("webhooks enabled", "endpoints", len(cfg.WebhookURLs))
	}

	svc := resizer.New(imgproc.NewCodec(nil), records, metrics.NewInstrumentedStorage(store), opts...)

	checker := health.NewChecker().
		WithLatency(metrics.GetLatencyP95).
		With("database", health.PingFunc(records.Ping)).
		With("storage", health.PingFunc(store.HealthCheck))
	if redisClient != nil {
		checker.With("redis", health.RedisPinger(redisClient))
	}

	limiter := api.NewHybridRateLimiter(redisClient, cfg.RateLimit, cfg.RateBurst, cfg.RateWindow)
	defer limiter.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.NewRouter(&api.Config{
		Service:        svc,
		Health:         checker,
		MaxUploadSize:  cfg.MaxUploadSize,
		MaxFiles:       cfg.MaxFiles,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSOrigins,
		DevMode:        !cfg.IsProduction(),
	}))

	handler := api.SecurityHeaders(metrics.HTTPMetricsMiddleware(api.Recovery(api.RequestID(api.RequestLogger(mux)))))
	if cfg.TracingEnabled {
		handler = tracing.HTTPMiddleware(tracing.DefaultServiceName)(handler)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	stopTicker := make(chan struct{})
	if redisClient != nil {
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			redisSetFunc := func(ctx context.Context, key string, value interface{}, exp time.Duration) error {
				return redisClient.Set(ctx, key, value, exp).Err()
			}
			for {
				select {
				case <-ticker.C:
					metrics.UpdateLatencyMetrics(context.Background(), redisSetFunc)
				case <-stopTicker:
					return
				}
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "url", cfg.BaseURL)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		close(stopTicker)
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig)
		close(stopTicker)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			_ = server.Close()
			return fmt.Errorf("forced shutdown: %w", err)
		}
	}

	log.Info("server stopped gracefully")
	return nil
}
