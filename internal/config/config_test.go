package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "MAX_UPLOAD_SIZE", "DATABASE_URL", "STORAGE_BACKEND", "RATE_WINDOW", "DEFAULT_QUALITY"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(100_000_000), cfg.MaxUploadSize)
	assert.Equal(t, 12, cfg.MaxFiles)
	assert.Equal(t, 90, cfg.DefaultQuality)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, time.Second, cfg.RateWindow)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_UPLOAD_SIZE", "5MB")
	t.Setenv("STORAGE_BACKEND", "MinIO")
	t.Setenv("PREVIEW_CACHE_TTL", "30s")
	t.Setenv("TRACE_SAMPLE_RATE", "0.25")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, int64(5_000_000), cfg.MaxUploadSize)
	assert.Equal(t, "minio", cfg.StorageBackend)
	assert.Equal(t, 30*time.Second, cfg.PreviewCacheTTL)
	assert.InDelta(t, 0.25, cfg.TraceSampleRate, 1e-9)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Webhooks(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WEBHOOK_URLS", "https://hooks.example/a,https://hooks.example/b")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("WEBHOOK_EVENTS", "image.deleted")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Len(t, cfg.WebhookURLs, 2)
	assert.Equal(t, "s3cret", cfg.WebhookSecret)
	assert.Equal(t, []string{"image.deleted"}, cfg.WebhookEvents)
	assert.Equal(t, 3*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 4, cfg.WebhookMaxAttempts)
}

func TestLoad_InvalidSize(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_UPLOAD_SIZE", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:           8080,
			MaxUploadSize:  1024,
			MaxFiles:       12,
			DefaultQuality: 90,
			StorageBackend: "local",
			UploadDir:      "uploads",
			RateLimit:      10,
			RateWindow:     time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"bad quality", func(c *Config) { c.DefaultQuality = 101 }, true},
		{"minio without credentials", func(c *Config) { c.StorageBackend = "minio" }, true},
		{"webhook url", func(c *Config) { c.WebhookURLs = []string{"https://hooks.example/a"} }, false},
		{"webhook url without scheme", func(c *Config) { c.WebhookURLs = []string{"hooks.example/a"} }, true},
		{"minio with credentials", func(c *Config) {
			c.StorageBackend = "minio"
			c.MinIOEndpoint = "localhost:9000"
			c.MinIOAccessKey = "key"
			c.MinIOSecretKey = "secret"
		}, false},
		{"unknown backend", func(c *Config) { c.StorageBackend = "ftp" }, true},
		{"zero files", func(c *Config) { c.MaxFiles = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
