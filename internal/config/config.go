package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me"

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (sqlite or pgx)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret  string
	JWTExpiry  time.Duration
	CORSOrigin string

	// Observability (optional)
	SentryDSN string
	LogLevel  string

	// Blob storage: "fs", "s3" or "badger"
	BlobDriver    string
	BlobPath      string
	MaxUploadSize int64

	// S3-compatible storage (AWS S3, MinIO, R2, ...)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PathStyle     bool
	S3PresignExpiry time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "cfm"),
		AppEnv:  envRequired("APP_ENV"), // 'development' or 'production'
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/cfm.db"),

		JWTSecret:  envRequired("JWT_SECRET"),
		JWTExpiry:  envDuration("JWT_EXPIRY", 24*time.Hour),
		CORSOrigin: envString("CORS_ORIGIN", ""),

		SentryDSN: envString("SENTRY_DSN", ""),
		LogLevel:  envString("LOG_LEVEL", ""),

		BlobDriver:    envString("BLOB_DRIVER", "fs"),
		BlobPath:      envString("BLOB_PATH", "./data/blobs"),
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", 16<<20),

		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 15*time.Minute),
	}
	// MinIO and most self-hosted endpoints only support path-style addressing.
	cfg.S3PathStyle = envBool("S3_PATH_STYLE", cfg.S3Endpoint != "")

	if cfg.BlobDriver == "s3" && cfg.S3Bucket == "" {
		slog.Error("BLOB_DRIVER=s3 requires S3_BUCKET")
		os.Exit(1)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction refuses to start a production deployment with
// development-only settings.
func validateProduction(cfg *Config) {
	if cfg.JWTSecret == defaultJWTSecret || len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 characters")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
