package config

import (
	"os"
	"strconv"
)

// Config holds service configuration.
type Config struct {
	HTTPPort          string
	APIKey            string
	AlphaVantageKey   string
	AlphaVantageURL   string
	SchemaPath        string // empty means the bundled schema asset
	DatabaseURL       string // empty disables the request journal
	RequestsPerSecond int
	BurstSize         int
	MaxBodySize       int64
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	return Config{
		HTTPPort:          getEnv("PORT", "8080"),
		APIKey:            getEnv("API_KEY", ""),
		AlphaVantageKey:   getEnv("ALPHA_VANTAGE_API_KEY", ""),
		AlphaVantageURL:   getEnv("ALPHA_VANTAGE_URL", "https://www.alphavantage.co/query"),
		SchemaPath:        getEnv("SCHEMA_PATH", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RequestsPerSecond: getEnvInt("REQUESTS_PER_SECOND", 20),
		BurstSize:         getEnvInt("BURST_SIZE", 40),
		MaxBodySize:       int64(getEnvInt("MAX_BODY_SIZE", 1<<20)),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
