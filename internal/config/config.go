package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds runtime configuration not covered by command-line flags.
type AppConfig struct {
	HTTPAddr        string
	MetricsAddr     string
	RedisAddr       string
	RedisPass       string
	EncryptionKey   string
	ProvisionBuffer int
}

// Load reads configuration from the environment, after best-effort loading a
// local .env file.
func Load() AppConfig {
	_ = godotenv.Load()

	return AppConfig{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":8081"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:       getEnv("REDIS_PASS", ""),
		EncryptionKey:   getEnv("TOKEN_ENCRYPTION_KEY", ""),
		ProvisionBuffer: getEnvInt("PROVISION_QUEUE_SIZE", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
