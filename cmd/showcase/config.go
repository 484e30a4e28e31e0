package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type config struct {
	Port             string
	BaseURL          string
	DatabaseURL      string
	CatalogFile      string
	StaticDir        string
	S3Endpoint       string
	S3PublicEndpoint string
	S3Bucket         string
	S3AccessKey      string
	S3SecretKey      string
	S3Region         string
	PresignExpiry    time.Duration
	MountTTL         time.Duration
	SweepInterval    time.Duration
	EnableDocs       bool
	AllowedOrigins   []string
	MediaOrigins     []string
}

func loadConfig() config {
	cfg := config{
		Port:             getEnv("PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		CatalogFile:      getEnv("CATALOG_FILE", "showcase.yaml"),
		StaticDir:        os.Getenv("STATIC_DIR"),
		S3Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:3900"),
		S3PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
		S3Bucket:         getEnv("S3_BUCKET", "showcase"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Region:         getEnv("S3_REGION", "eu-central-1"),
		PresignExpiry:    getEnvDuration("PRESIGN_EXPIRY", time.Hour),
		MountTTL:         getEnvDuration("MOUNT_TTL", 30*time.Minute),
		EnableDocs:       getEnv("API_DOCS_ENABLED", "false") == "true",
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
		MediaOrigins:     splitList(os.Getenv("MEDIA_ORIGINS")),
	}
	cfg.SweepInterval = cfg.MountTTL / 4
	if cfg.SweepInterval < time.Second {
		cfg.SweepInterval = time.Second
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs := getEnvInt64(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
