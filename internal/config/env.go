package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEnvironment   = "development"
	defaultPort          = "8080"
	defaultMongoDatabase = "storefront"
	defaultS3Region      = "us-east-1"
	defaultRateLimit     = "100-M"
	defaultLogDir        = "logs"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", defaultEnvironment),
		Port:               getEnv("PORT", defaultPort),
		MongoURI:           os.Getenv("MONGODB_URI"),
		MongoDatabase:      getEnv("MONGODB_DATABASE", defaultMongoDatabase),
		PostgresConnString: os.Getenv("POSTGRES_CONNECTION_STRING"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		BasicAuthUsername:  os.Getenv("BASIC_AUTH_USERNAME"),
		BasicAuthPassword:  os.Getenv("BASIC_AUTH_PASSWORD"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Region:           getEnv("S3_REGION", defaultS3Region),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		RateLimit:          getEnv("RATE_LIMIT", defaultRateLimit),
		LogDir:             getEnv("LOG_DIR", defaultLogDir),
	}

	required := []struct {
		name  string
		value string
	}{
		{"MONGODB_URI", cfg.MongoURI},
		{"POSTGRES_CONNECTION_STRING", cfg.PostgresConnString},
		{"REDIS_URL", cfg.RedisURL},
		{"JWT_SECRET", cfg.JWTSecret},
		{"BASIC_AUTH_USERNAME", cfg.BasicAuthUsername},
		{"BASIC_AUTH_PASSWORD", cfg.BasicAuthPassword},
		{"S3_ENDPOINT", cfg.S3Endpoint},
		{"S3_BUCKET", cfg.S3Bucket},
	}

	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%s environment variable is required", r.name)
		}
	}

	useSSL, err := parseBool("S3_USE_SSL", true)
	if err != nil {
		return nil, err
	}

	cfg.S3UseSSL = useSSL
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}

func parseBool(name string, fallback bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", name, err)
	}

	return b, nil
}

// splits a comma separated list, dropping empty entries
func splitList(v string) []string {
	var out []string

	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
