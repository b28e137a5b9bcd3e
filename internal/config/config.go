package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string
	LogLevel    string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string
	RelayChannel string

	// Assistant configuration
	GeminiAPIKey      string
	GeminiModel       string
	CompletionRate    float64
	CompletionBurst   int
	CompletionTimeout time.Duration

	// how long the editor waits after the last keystroke before asking for a suggestion
	SuggestQuietPeriod time.Duration

	SnippetCacheTTL time.Duration
	WorkerPoolSize  int

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Warn().Err(err).Msg("error loading .env file")
		}
	}

	AppConfig = Config{
		ServerPort:         getEnv("PORT", "5000"),
		Environment:        getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "ai_code_editor"),
		RedisAddress:       getEnv("REDIS_ADDRESS", "localhost:6379"),
		RelayChannel:       getEnv("RELAY_CHANNEL", "codeUpdate"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		CompletionRate:     getEnvFloat("COMPLETION_RATE", 2),
		CompletionBurst:    getEnvInt("COMPLETION_BURST", 4),
		CompletionTimeout:  getEnvDuration("COMPLETION_TIMEOUT", 0),
		SuggestQuietPeriod: getEnvDuration("SUGGEST_QUIET_PERIOD", 2*time.Second),
		SnippetCacheTTL:    getEnvDuration("SNIPPET_CACHE_TTL", 10*time.Minute),
		WorkerPoolSize:     getEnvInt("WORKER_POOL_SIZE", 4),
		FrontendAddress:    getEnv("FRONTEND_ADDRESS", "http://localhost:5173"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go durations ("2s", "150ms") or plain milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
	return defaultValue
}
