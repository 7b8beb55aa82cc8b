package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	ListenAddr string
	BaseURL    string
	DataDir    string
	LogLevel   string

	SessionSecret string
	AdminEmail    string
	AdminPassword string

	StoreKind   string // document | relational
	DocumentDir string
	DatabaseDSN string

	StorageKind string // local | minio | s3
	UploadDir   string
	MediaPrefix string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3Endpoint        string
	S3UsePathStyle    bool
	S3Domain          string

	WatermarkText         string
	WatermarkFontB64      string
	WatermarkFontIndex    int
	WatermarkFallbackFont string

	MaxUploadBytes    int64
	ScratchTTLMinutes int

	WMInputDir  string
	WMOutputDir string
	WMWorkers   int
}

func Load() *Config {
	dataDir := envOr("DATA_DIR", "./data")

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = randomSecret()
		slog.Warn("SESSION_SECRET not set, using a random one; sessions will not survive restarts")
	}

	return &Config{
		ListenAddr: envOr("LISTEN_ADDR", ":8080"),
		BaseURL:    envOr("BASE_URL", "http://localhost:8080"),
		DataDir:    dataDir,
		LogLevel:   envOr("LOG_LEVEL", "info"),

		SessionSecret: secret,
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		StoreKind:   envOr("STORE_KIND", "document"),
		DocumentDir: envOr("DOCUMENT_DIR", filepath.Join(dataDir, "photos.badger")),
		DatabaseDSN: envOr("DATABASE_DSN", filepath.Join(dataDir, "photofolio.db")),

		StorageKind: envOr("STORAGE_KIND", "local"),
		UploadDir:   envOr("UPLOAD_DIR", filepath.Join(dataDir, "uploads")),
		MediaPrefix: envOr("MEDIA_PREFIX", "/uploads"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioUseSSL:    envBoolOr("MINIO_USE_SSL", true),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		S3Region:          envOr("S3_REGION", "us-east-1"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3UsePathStyle:    envBoolOr("S3_USE_PATH_STYLE", false),
		S3Domain:          os.Getenv("S3_DOMAIN"),

		WatermarkText:         envOr("WATERMARK_TEXT", "Rogers Photography"),
		WatermarkFontB64:      os.Getenv("WATERMARK_FONT_B64"),
		WatermarkFontIndex:    envIntOr("WATERMARK_FONT_INDEX", 1),
		WatermarkFallbackFont: envOr("WATERMARK_FALLBACK_FONT", filepath.Join("fonts", "GreatVibes-Regular.ttf")),

		MaxUploadBytes:    envInt64Or("MAX_UPLOAD_BYTES", 32*1024*1024),
		ScratchTTLMinutes: envIntOr("SCRATCH_TTL_MINUTES", 60),

		WMInputDir:  envOr("WM_INPUT_DIR", filepath.Join("static", "images", "originals")),
		WMOutputDir: envOr("WM_OUTPUT_DIR", filepath.Join("static", "images", "watermarked")),
		WMWorkers:   envIntOr("WM_WORKERS", 4),
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("config: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
