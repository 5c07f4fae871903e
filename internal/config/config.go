package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	BaseURL       string
	MaxUploadSize int64
	MaxFiles      int

	Environment string
	LogLevel    string
	LogFormat   string

	DefaultQuality int

	// DatabaseURL selects Postgres; when empty the record store is the SQLite
	// file at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// RedisURL is optional. Without it previews are not cached and rate
	// limiting is in-memory.
	RedisURL string

	StorageBackend string
	UploadDir      string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIORegion    string

	// CORSOrigins are the browser origins allowed to call the API. In
	// development localhost origins are always allowed.
	CORSOrigins []string

	RateLimit       int
	RateBurst       int
	RateWindow      time.Duration
	PreviewCacheTTL time.Duration
	RetentionDays   int

	// WebhookURLs receive signed library events. Empty disables webhooks;
	// WebhookEvents optionally narrows which event types are sent.
	WebhookURLs        []string
	WebhookSecret      string
	WebhookEvents      []string
	WebhookTimeout     time.Duration
	WebhookMaxAttempts int

	TracingEnabled  bool
	OTLPEndpoint    string
	TraceSampleRate float64
}

// Load reads the environment, after merging a .env file from the working
// directory if there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	cfg.Port = getEnvInt("PORT", 8080)
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")

	cfg.MaxUploadSize, err = getEnvSize("MAX_UPLOAD_SIZE", "100MB")
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}
	cfg.MaxFiles = getEnvInt("MAX_FILES", 12)

	cfg.Environment = getEnvString("ENVIRONMENT", "development")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "json")

	cfg.DefaultQuality = getEnvInt("DEFAULT_QUALITY", 90)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getEnvString("SQLITE_PATH", "data/images.db")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.StorageBackend = strings.ToLower(getEnvString("STORAGE_BACKEND", "local"))
	cfg.UploadDir = getEnvString("UPLOAD_DIR", "uploads")

	cfg.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
	cfg.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.MinIOBucket = getEnvString("MINIO_BUCKET", "images")
	cfg.MinIOUseSSL = getEnvBool("MINIO_USE_SSL", false)
	cfg.MinIORegion = getEnvString("MINIO_REGION", "us-east-1")

	cfg.CORSOrigins = getEnvList("CORS_ORIGINS")

	cfg.RateLimit = getEnvInt("RATE_LIMIT", 20)
	cfg.RateBurst = getEnvInt("RATE_BURST", 40)
	cfg.RateWindow, err = getEnvDuration("RATE_WINDOW", "1s")
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_WINDOW: %w", err)
	}
	cfg.PreviewCacheTTL, err = getEnvDuration("PREVIEW_CACHE_TTL", "10m")
	if err != nil {
		return nil, fmt.Errorf("invalid PREVIEW_CACHE_TTL: %w", err)
	}
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 30)

	cfg.WebhookURLs = getEnvList("WEBHOOK_URLS")
	cfg.WebhookSecret = os.Getenv("WEBHOOK_SECRET")
	cfg.WebhookEvents = getEnvList("WEBHOOK_EVENTS")
	cfg.WebhookTimeout, err = getEnvDuration("WEBHOOK_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}
	cfg.WebhookMaxAttempts = getEnvInt("WEBHOOK_MAX_ATTEMPTS", 4)

	cfg.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getEnvString("OTLP_ENDPOINT", "localhost:4317")
	cfg.TraceSampleRate = getEnvFloat("TRACE_SAMPLE_RATE", 1.0)

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return time.ParseDuration(value)
}

// getEnvSize accepts human sizes ("100MB", "512kb") or a plain byte count.
func getEnvSize(key, defaultValue string) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return units.FromHumanSize(value)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.MaxUploadSize < 1 {
		return fmt.Errorf("invalid max upload size: %d", c.MaxUploadSize)
	}

	if c.MaxFiles < 1 {
		return fmt.Errorf("invalid max files: %d", c.MaxFiles)
	}

	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return fmt.Errorf("invalid default quality: %d", c.DefaultQuality)
	}

	switch c.StorageBackend {
	case "local":
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for local storage")
		}
	case "minio":
		if c.MinIOEndpoint == "" || c.MinIOAccessKey == "" || c.MinIOSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio storage")
		}
	default:
		return fmt.Errorf("invalid storage backend: %q", c.StorageBackend)
	}

	if c.RateLimit < 1 || c.RateWindow <= 0 {
		return fmt.Errorf("invalid rate limit: %d per %s", c.RateLimit, c.RateWindow)
	}

	for _, u := range c.WebhookURLs {
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("invalid webhook url: %q", u)
		}
	}

	if c.RetentionDays < 0 {
		return fmt.Errorf("invalid retention days: %d", c.RetentionDays)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
