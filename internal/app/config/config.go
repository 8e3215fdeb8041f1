package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Review      ReviewConfig
	Training    TrainingConfig
	Limits      LimitsConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL     string
	TestURL string
}

type RedisConfig struct {
	URL      string
	PoolSize int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// ReviewConfig tunes the review workflow. ReminderAfter is how long a
// reviewer may sit on a pending assignment before the worker nudges
// them; PollInterval is the worker's scan cadence. Decisions themselves
// never time out.
type ReviewConfig struct {
	ReminderAfter  time.Duration
	PollInterval   time.Duration
	StatusCacheTTL time.Duration
}

type TrainingConfig struct {
	PassThreshold float64
}

type LimitsConfig struct {
	MaxContentBytes int
	DefaultPageSize int
	MaxPageSize     int
}

// Load configuration from environment variables
func Load() (*Config, error) {
	// Load .env file in non-production environments; the file is optional.
	env := os.Getenv("ENVIRONMENT")
	if env != "production" {
		_ = godotenv.Load()
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:           getEnv("HOST", "localhost"),
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:8501"), ","),
		},
		Database: DatabaseConfig{
			URL:     getEnv("DATABASE_URL", ""),
			TestURL: getEnv("DATABASE_URL_TEST", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PoolSize: parseInt(getEnv("REDIS_POOL_SIZE", "10")),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: parseDuration(getEnv("JWT_EXPIRY", "24h")),
		},
		Review: ReviewConfig{
			ReminderAfter:  parseDuration(getEnv("REVIEW_REMINDER_AFTER", "72h")),
			PollInterval:   parseDuration(getEnv("REVIEW_POLL_INTERVAL", "15m")),
			StatusCacheTTL: parseDuration(getEnv("REVIEW_STATUS_CACHE_TTL", "5m")),
		},
		Training: TrainingConfig{
			PassThreshold: parseFloat(getEnv("TRAINING_PASS_THRESHOLD", "80")),
		},
		Limits: LimitsConfig{
			MaxContentBytes: parseInt(getEnv("MAX_CONTENT_BYTES", "1048576")),
			DefaultPageSize: parseInt(getEnv("DEFAULT_PAGE_SIZE", "20")),
			MaxPageSize:     parseInt(getEnv("MAX_PAGE_SIZE", "100")),
		},
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDatabaseURL returns the appropriate database URL based on environment
func (c *Config) GetDatabaseURL() string {
	if c.Environment == "test" && c.Database.TestURL != "" {
		return c.Database.TestURL
	}
	return c.Database.URL
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

func validate(config *Config) error {
	if config.IsProduction() && config.GetDatabaseURL() == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.Training.PassThreshold < 0 || config.Training.PassThreshold > 100 {
		return fmt.Errorf("TRAINING_PASS_THRESHOLD must be between 0 and 100")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(value string) int {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return 0
}

func parseFloat(value string) float64 {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return 0
}

func parseDuration(value string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return 0
}
