package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the verification client
type Config struct {
	API     APIConfig
	Poll    PollConfig
	State   StateConfig
	Redis   RedisConfig
	Profile string
}

// APIConfig holds the backend verification API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PollConfig holds status polling configuration
type PollConfig struct {
	Interval      time.Duration
	FailureBudget int
}

// StateConfig holds durable client state configuration
type StateConfig struct {
	Dir string
}

// RedisConfig holds optional Redis session-store configuration, used on
// shared-terminal deployments where a local state file is not durable
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoadConfig creates a new Config instance with values from environment
// variables, loading a .env file first when present
func LoadConfig() *Config {
	// Try to load .env file for local development
	_ = godotenv.Load()

	return &Config{
		API: APIConfig{
			BaseURL: getEnv("KYC_API_BASE_URL", "http://localhost:8080"),
			Timeout: getEnvDuration("KYC_API_TIMEOUT", 30*time.Second),
		},
		Poll: PollConfig{
			Interval:      getEnvDuration("KYC_POLL_INTERVAL", 5*time.Second),
			FailureBudget: getEnvInt("KYC_POLL_FAILURE_BUDGET", 3),
		},
		State: StateConfig{
			Dir: getEnv("KYC_STATE_DIR", defaultStateDir()),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("KYC_REDIS_ENABLED", "false") == "true",
			Addr:     getEnv("KYC_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("KYC_REDIS_PASSWORD", ""),
			DB:       getEnvInt("KYC_REDIS_DB", 0),
		},
		Profile: getEnv("KYC_PROFILE", "default"),
	}
}

// defaultStateDir returns the per-user directory for persisted flow state
func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ridelink"
	}
	return filepath.Join(dir, "ridelink")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getEnvDuration retrieves an environment variable as a duration or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return d
}
