package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment. Defaults
// favor local development; production deployments override via env.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string

	// AdminPIN is the step-up gate for moderation actions. A plaintext value
	// is bcrypt-hashed at startup and discarded; production should set
	// ADMIN_PIN_HASH instead.
	AdminPIN     string
	AdminPINHash string
	StepUpTTL    time.Duration

	Redis     RedisConfig
	Storage   StorageConfig
	Push      PushConfig
	Version   VersionConfig
	Kafka     KafkaConfig
	Directory DirectoryConfig
}

// RedisConfig controls the optional Redis connection for step-up sessions.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig points at the S3-compatible photo bucket (Backblaze B2).
type StorageConfig struct {
	Endpoint       string
	Region         string
	KeyID          string
	ApplicationKey string
	Bucket         string
	PublicBaseURL  string
}

// PushConfig controls FCM dispatch. An empty server key disables push.
type PushConfig struct {
	ServerKey string
	Endpoint  string
	AppURL    string
}

// VersionConfig backs the client update-check endpoint.
type VersionConfig struct {
	File        string
	DownloadURL string
}

// KafkaConfig enables the audit event publisher when brokers are set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DirectoryConfig points at the auth provider's admin REST API for the user
// management surface. Empty BaseURL disables it.
type DirectoryConfig struct {
	BaseURL string
	APIKey  string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("CONOCIDA_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminPIN:      os.Getenv("ADMIN_PIN"),
		AdminPINHash:  os.Getenv("ADMIN_PIN_HASH"),
		StepUpTTL:     durationOr("STEPUP_TTL", 15*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Storage: StorageConfig{
			Endpoint:       envOr("B2_ENDPOINT", "https://s3.us-east-005.backblazeb2.com"),
			Region:         envOr("B2_REGION", "us-east-005"),
			KeyID:          os.Getenv("B2_KEY_ID"),
			ApplicationKey: os.Getenv("B2_APPLICATION_KEY"),
			Bucket:         envOr("B2_BUCKET_NAME", "conocida-photos"),
			PublicBaseURL:  os.Getenv("B2_PUBLIC_BASE_URL"),
		},
		Push: PushConfig{
			ServerKey: os.Getenv("FCM_SERVER_KEY"),
			Endpoint:  envOr("FCM_API_URL", "https://fcm.googleapis.com/fcm/send"),
			AppURL:    envOr("APP_URL", "http://localhost:5173"),
		},
		Version: VersionConfig{
			File:        envOr("VERSION_FILE", "public/version.json"),
			DownloadURL: os.Getenv("APP_DOWNLOAD_URL"),
		},
		Kafka: KafkaConfig{
			Topic: envOr("AUDIT_TOPIC", "conocida.audit"),
		},
		Directory: DirectoryConfig{
			BaseURL: os.Getenv("IDP_ADMIN_URL"),
			APIKey:  os.Getenv("IDP_ADMIN_KEY"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	// Dev fallback mirrors the original admin gate; never rely on it in prod.
	if cfg.AdminPIN == "" && cfg.AdminPINHash == "" {
		cfg.AdminPIN = "1619"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
