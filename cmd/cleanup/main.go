package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/config"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
	"github.com/Ashivkar123/Image-Resizer/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("cleanup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Default()

	if cfg.RetentionDays <= 0 {
		log.Info("retention disabled, nothing to do")
		return nil
	}

	log.Info("starting cleanup job", "retention_days", cfg.RetentionDays)
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	records, err := catalog.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer func() { _ = records.Close() }()

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

	var opts []resizer.Option
	if len(cfg.WebhookURLs) > 0 {
		notifier := webhook.New(webhook.Config{
			Endpoints:   cfg.WebhookURLs,
			Secret:      cfg.WebhookSecret,
			Events:      cfg.WebhookEvents,
			Timeout:     cfg.WebhookTimeout,
			MaxAttempts: cfg.WebhookMaxAttempts,
		})
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := notifier.Close(ctx); err != nil {
				log.Warn("webhook deliveries abandoned", "error", err)
			}
		}()
		opts = append(opts, resizer.WithNotifier(notifier))
	}

	svc := resizer.New(nil, records, store, opts...)

	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	stats, err := svc.Sweep(logger.WithLogger(ctx, log), cutoff)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	log.Info("cleanup completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"expired", stats.Expired,
		"deleted", stats.Deleted,
		"storage_errors", stats.StorageDeleteErrors,
		"record_errors", stats.RecordDeleteErrors,
	)
	return nil
}
