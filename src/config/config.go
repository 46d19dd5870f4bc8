package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Dividend provider settings
	DividendProvider        string // "backend" or "yahoo"
	DividendBackendURL      string
	ProviderTimeout         time.Duration
	ProviderCacheExpiration time.Duration
	ProviderRatePerSecond   float64
	FetchConcurrency        int

	// Session and request settings
	SessionExpiration     time.Duration
	MaxUploadSizeBytes    int64
	DefaultTargetCurrency string
	AllowedOrigins        []string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file
// and stores it in Cfg.
func LoadConfig() *AppConfig {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	}

	Cfg = FromEnv()
	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, Provider=%s, Concurrency=%d",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.DividendProvider, Cfg.FetchConcurrency)
	return Cfg
}

// FromEnv builds an AppConfig from the current process environment only.
func FromEnv() *AppConfig {
	provider := strings.ToLower(getEnv("DIVIDEND_PROVIDER", "backend"))
	if provider != "backend" && provider != "yahoo" {
		log.Printf("Invalid DIVIDEND_PROVIDER '%s', using default: backend", provider)
		provider = "backend"
	}

	concurrency := getEnvAsInt("FETCH_CONCURRENCY", 4)
	if concurrency < 1 {
		log.Printf("FETCH_CONCURRENCY must be at least 1, got %d. Using 1 (sequential).", concurrency)
		concurrency = 1
	}

	return &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./dividends.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		DividendProvider:        provider,
		DividendBackendURL:      strings.TrimRight(getEnv("DIVIDEND_BACKEND_URL", "http://localhost:8000"), "/"),
		ProviderTimeout:         getEnvAsDuration("PROVIDER_TIMEOUT", 20*time.Second),
		ProviderCacheExpiration: getEnvAsDuration("PROVIDER_CACHE_EXPIRATION", 6*time.Hour),
		ProviderRatePerSecond:   getEnvAsFloat("PROVIDER_RATE_PER_SECOND", 5),
		FetchConcurrency:        concurrency,

		SessionExpiration:     getEnvAsDuration("SESSION_EXPIRATION", 2*time.Hour),
		MaxUploadSizeBytes:    getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 1<<20),
		DefaultTargetCurrency: strings.ToUpper(getEnv("DEFAULT_TARGET_CURRENCY", "USD")),
		AllowedOrigins:        getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil && value > 0 {
		return value
	}
	log.Printf("Invalid size value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value > 0 {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList retrieves a comma-separated list.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
