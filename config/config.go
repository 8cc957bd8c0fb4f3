package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	LogLevel    string
	FrontendURL string
	AutoMigrate bool
	// Token issuance
	JWTSecret     string
	JWTTTLMinutes int
	// Upload and listing limits
	MaxUploadBytes int64
	MaxPageSize    int
	// Blob storage: "local" writes under UploadDir, "s3" uses the S3 settings below
	BlobBackend string
	UploadDir   string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // optional, for S3-compatible providers
	S3KeyPrefix string
	// Redis backs the upload rate limiter; empty disables it
	RedisURL            string
	RedisPassword       string
	UploadRatePerMinute int
	UploadRatePerDay    int
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production uses real environment variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60*24), // 1 day

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 16*1024*1024)), // 16 MB
		MaxPageSize:    getEnvInt("MAX_PAGE_SIZE", 100),

		BlobBackend: strings.ToLower(getEnv("BLOB_BACKEND", "local")),
		UploadDir:   getEnv("UPLOAD_DIR", "resumes"),
		S3Region:    getEnv("S3_REGION", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:  strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3KeyPrefix: getEnv("S3_KEY_PREFIX", "resumes/"),

		RedisURL:            getEnv("REDIS_URL", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		UploadRatePerMinute: getEnvInt("UPLOAD_RATE_PER_MINUTE", 10),
		UploadRatePerDay:    getEnvInt("UPLOAD_RATE_PER_DAY", 50),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Falling back to an insecure development secret.")
		cfg.JWTSecret = "secret"
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Upload rate limiting is disabled.")
	}
	if cfg.MaxPageSize < 1 {
		cfg.MaxPageSize = 100
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
