package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストレージバックエンド
const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendS3       = "s3"
)

// 検出器
const (
	DetectorRandom      = "random"
	DetectorRekognition = "rekognition"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Object storage
	S3Bucket          string
	AWSRegion         string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string

	// Backends
	ProfileBackend        string
	FollowBackend         string
	DynamoDBProfilesTable string
	DynamoDBFollowsTable  string

	// Detection
	Detector                 string
	RekognitionMinConfidence float64

	// Fridge images
	PresignExpiry    time.Duration
	PresignCacheSize int
	IngestOnUpload   bool
	MaxUploadBytes   int64

	// Worker
	ReconcileInterval time.Duration

	// Server
	ServerPort string

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitUpload  int

	// CORS
	CORSAllowedOrigin string

	// S3イベント通知Webhookの共有シークレット。空の場合 /events/s3 は無効
	EventsSharedSecret string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は未設定の変数をすべて列挙したエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	if cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AWSRegion = getEnvString("AWS_REGION", "us-east-1")
	cfg.S3Endpoint = getEnvString("S3_ENDPOINT", "")
	cfg.S3AccessKeyID = getEnvString("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnvString("S3_SECRET_ACCESS_KEY", "")
	cfg.S3PublicBaseURL = getEnvString("S3_PUBLIC_BASE_URL", "")
	cfg.ProfileBackend = strings.ToLower(getEnvString("PROFILE_BACKEND", BackendPostgres))
	cfg.FollowBackend = strings.ToLower(getEnvString("FOLLOW_BACKEND", BackendPostgres))
	cfg.DynamoDBProfilesTable = getEnvString("DYNAMODB_PROFILES_TABLE", "UserProfiles")
	cfg.DynamoDBFollowsTable = getEnvString("DYNAMODB_FOLLOWS_TABLE", "Follows")
	cfg.Detector = strings.ToLower(getEnvString("DETECTOR", DetectorRandom))
	cfg.RekognitionMinConfidence = getEnvFloat("REKOGNITION_MIN_CONFIDENCE", 70)
	cfg.PresignExpiry = getEnvDuration("PRESIGN_EXPIRY", time.Hour)
	cfg.PresignCacheSize = getEnvInt("PRESIGN_CACHE_SIZE", 1024)
	cfg.IngestOnUpload = getEnvBool("INGEST_ON_UPLOAD", false)
	cfg.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", 10485760)
	cfg.ReconcileInterval = getEnvDuration("RECONCILE_INTERVAL", time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitUpload = getEnvInt("RATE_LIMIT_UPLOAD", 10)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.EventsSharedSecret = getEnvString("EVENTS_SHARED_SECRET", "")
	cfg.LogLevel = strings.ToLower(getEnvString("LOG_LEVEL", "info"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は列挙値の設定を検証する。
func (c *Config) validate() error {
	var invalid []string

	switch c.ProfileBackend {
	case BackendPostgres, BackendDynamoDB, BackendS3:
	default:
		invalid = append(invalid, "PROFILE_BACKEND="+c.ProfileBackend)
	}
	switch c.FollowBackend {
	case BackendPostgres, BackendDynamoDB:
	default:
		invalid = append(invalid, "FOLLOW_BACKEND="+c.FollowBackend)
	}
	switch c.Detector {
	case DetectorRandom, DetectorRekognition:
	default:
		invalid = append(invalid, "DETECTOR="+c.Detector)
	}

	if len(invalid) > 0 {
		return fmt.Errorf("unsupported configuration values: %v", invalid)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
