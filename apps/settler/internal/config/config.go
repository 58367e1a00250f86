package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DbURL               string
	KafkaBroker         string
	KafkaTopic          string
	APIPort             int
	Environment         string
	ExchangeBaseURL     string
	ExchangeAPIKey      string
	ExchangeSecretKey   string
	DepositAsset        string
	RewardCurrency      string
	DepositHistoryLimit int
}

// NewConfig loads configuration from environment variables
func NewConfig() *Config {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	return &Config{
		DbURL:       getEnvOrFatal("DB_URL"),
		KafkaBroker: getEnvOrFatal("KAFKA_BROKER"),
		KafkaTopic:  getEnvOrFatal("KAFKA_TOPIC"),
		APIPort:     getEnvInt("API_PORT", 8080),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		// Exchange credentials are optional: every exchange-touching
		// call fails with NotConfigured until they are set.
		ExchangeBaseURL:     getEnvOrDefault("EXCHANGE_BASE_URL", "https://api.binance.com"),
		ExchangeAPIKey:      os.Getenv("EXCHANGE_API_KEY"),
		ExchangeSecretKey:   os.Getenv("EXCHANGE_SECRET_KEY"),
		DepositAsset:        getEnvOrDefault("DEPOSIT_ASSET", "USDT"),
		RewardCurrency:      getEnvOrDefault("REWARD_CURRENCY", "KES"),
		DepositHistoryLimit: getEnvInt("DEPOSIT_HISTORY_LIMIT", 100),
	}
}

// IsProduction reports whether the service runs in production-like mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrFatal(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	log.Fatalf("Warning: environment variable %s not set", key)

	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
