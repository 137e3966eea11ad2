package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StorageBackendLocal = "local"
	StorageBackendMinIO = "minio"
)

type Config struct {
	Server  ServerConfig
	JWT     JWTConfig
	Storage StorageConfig
	MinIO   MinIOConfig
	Gallery GalleryConfig
}

type ServerConfig struct {
	Port         string
	BodyLimitMB  int
	AllowOrigins string
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type StorageConfig struct {
	// Backend selects where uploaded bytes live: "local" or "minio".
	Backend string
	// DataDir holds the JSON documents (user index, user documents,
	// file records, share registry).
	DataDir string
	// UploadsDir is the root of the per-user upload tree for the local
	// backend.
	UploadsDir string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GalleryConfig struct {
	// PublicBaseURL is the externally reachable base used when building
	// share link URLs.
	PublicBaseURL string
}

func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			BodyLimitMB:  getEnvAsInt("SERVER_BODY_LIMIT_MB", 200),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3001,http://127.0.0.1:3001"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", StorageBackendLocal),
			DataDir:    getEnv("DATA_DIR", "data"),
			UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "mediavault"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "mediavault_secret"),
			Bucket:    getEnv("MINIO_BUCKET", "mediavault"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Gallery: GalleryConfig{
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
